// internal/services/services_test.go
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport/internal/config"
	"github.com/javajoker/autoimport/internal/database"
	"github.com/javajoker/autoimport/internal/models"
	"github.com/javajoker/autoimport/internal/source"
)

const testCDN = "https://i.simpalsmedia.com/999.md/BoardImages/900x900/"

var testSourceConfig = config.SourceConfig{
	Name:          "999",
	Lang:          "ru",
	SubcategoryID: "659",
	ImageBaseURL:  testCDN,
	PageSize:      2,
}

// fakeSource serves canned upstream documents.
type fakeSource struct {
	mu        sync.Mutex
	adverts   map[string]*source.Advert
	features  map[string]*source.FeatureSet
	pages     map[string]source.PageResult
	lists     []source.AdvertList
	failures  map[string]error
	listCalls []source.ListParams
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		adverts:  map[string]*source.Advert{},
		features: map[string]*source.FeatureSet{},
		pages:    map[string]source.PageResult{},
		failures: map[string]error{},
	}
}

func (f *fakeSource) ListAdverts(_ context.Context, p source.ListParams) (*source.AdvertList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, p)
	if p.Page-1 < len(f.lists) {
		list := f.lists[p.Page-1]
		return &list, nil
	}
	return &source.AdvertList{}, nil
}

func (f *fakeSource) GetAdvert(_ context.Context, id string) (*source.Advert, error) {
	if err := f.failures["advert:"+id]; err != nil {
		return nil, err
	}
	advert, ok := f.adverts[id]
	if !ok {
		return nil, &source.StatusError{Method: "GET", URL: "/adverts/" + id, StatusCode: 404}
	}
	return advert, nil
}

func (f *fakeSource) GetAdvertFeatures(_ context.Context, id string) (*source.FeatureSet, error) {
	if err := f.failures["features:"+id]; err != nil {
		return nil, err
	}
	if set, ok := f.features[id]; ok {
		return set, nil
	}
	return &source.FeatureSet{}, nil
}

func (f *fakeSource) FetchPage(_ context.Context, id string) source.PageResult {
	if page, ok := f.pages[id]; ok {
		return page
	}
	return source.PageResult{Err: fmt.Errorf("fetch page %s: status 502", id)}
}

// addAdvert registers a Toyota C-HR hybrid listed with a manual gearbox.
func (f *fakeSource) addAdvert(id string, images ...string) {
	f.adverts[id] = &source.Advert{
		ID:            id,
		Title:         "Toyota C-HR Hybrid 2019",
		Body:          "Stare perfectă",
		Price:         source.Price{Value: 18500, Unit: "eur"},
		SubcategoryID: "659",
		Raw:           []byte(fmt.Sprintf(`{"id":%q}`, id)),
	}

	imageJSON := "[]"
	if len(images) > 0 {
		imageJSON = fmt.Sprintf(`[%q`, images[0])
		for _, img := range images[1:] {
			imageJSON += fmt.Sprintf(`,%q`, img)
		}
		imageJSON += "]"
	}
	set := source.ParseFeatures([]byte(`{"features_groups":[{"features":[
		{"id":"20","title":"Марка","value":{"title":"Toyota"}},
		{"id":"21","title":"Модель","value":"C-HR"},
		{"id":"19","title":"Год выпуска","value":"2019"},
		{"id":"104","title":"Пробег","value":"120 000 км"},
		{"id":"151","title":"Тип топлива","value":"Гибрид"},
		{"id":"101","title":"Коробка передач","value":"Механика"},
		{"id":"14","type":"upload_images","value":` + imageJSON + `}
	]}]}`))
	f.features[id] = &set
}

// relist changes the title and the listed fuel of a registered advert.
func (f *fakeSource) relist(id, title, fuel string) {
	f.adverts[id].Title = title
	raw := strings.Replace(string(f.features[id].Raw), `"Гибрид"`, strconv.Quote(fuel), 1)
	set := source.ParseFeatures([]byte(raw))
	f.features[id] = &set
}

func listed(subtotal int, ids ...string) source.AdvertList {
	list := source.AdvertList{Subtotal: subtotal, PageSize: 2}
	for _, id := range ids {
		subcategory := "659"
		if id[0] == 'x' {
			subcategory = "660"
		}
		list.Adverts = append(list.Adverts, source.Advert{ID: id, SubcategoryID: subcategory})
	}
	return list
}

func noSleep(context.Context, time.Duration) error { return nil }

type ServicesTestSuite struct {
	suite.Suite
	db       *gorm.DB
	src      *fakeSource
	importer *ImportService
	syncer   *SyncService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize(config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	t.Cleanup(func() { database.Close(db) })
	return db
}

func (s *ServicesTestSuite) SetupTest() {
	db := newTestDB(s.T())
	s.db = db

	s.src = newFakeSource()
	s.importer = NewImportService(db, s.src, testSourceConfig, nil, nil)
	s.importer.sleep = noSleep
	s.syncer = NewSyncService(db, s.src, s.importer, nil, testSourceConfig)
	s.syncer.sleep = noSleep
}

func (s *ServicesTestSuite) countCars() int64 {
	var n int64
	s.Require().NoError(s.db.Model(&models.Car{}).Count(&n).Error)
	return n
}

func (s *ServicesTestSuite) photosOf(car *models.Car) []models.Photo {
	var photos []models.Photo
	s.Require().NoError(s.db.Where("car_id = ?", car.ID).Order("sort_order").Find(&photos).Error)
	return photos
}

func (s *ServicesTestSuite) TestUpsertCreatesNormalizedCar() {
	s.src.addAdvert("101", "a.jpg", "b.jpg")
	seenAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	car, err := s.importer.Upsert(context.Background(), "101", seenAt)
	s.Require().NoError(err)

	var stored models.Car
	s.Require().NoError(s.db.First(&stored, "id = ?", car.ID).Error)
	s.Equal("999", stored.Source)
	s.Equal("101", stored.ExternalID)
	s.Equal(models.CarStatusPublished, stored.Status)
	s.True(stored.Active)
	s.Nil(stored.SoldAt)
	s.Require().NotNil(stored.LastSeenAt)
	s.True(seenAt.Equal(*stored.LastSeenAt))

	s.Equal("Toyota", stored.Make)
	s.Equal("C-HR", stored.Model)
	s.Require().NotNil(stored.Year)
	s.Equal(2019, *stored.Year)
	s.Equal(120000, stored.MileageKm)
	s.Equal(models.FuelHybrid, stored.FuelTypeCode)
	s.Equal("Гибрид", stored.FuelTypeLabel)
	s.Equal(models.CanonHybridPetrol, stored.FuelTypeCanonical)
	// a hybrid is never stored with a manual gearbox
	s.Equal(models.TransmissionAutomatic, stored.TransmissionCode)
	s.Equal("Механика", stored.TransmissionRaw)
	s.Equal(18500.0, stored.PriceEUR)
	s.Equal("EUR", stored.Currency)
	s.Equal(testCDN+"a.jpg", stored.MainPhotoURL)
	s.Equal(false, stored.RawSpecs["page_available"])

	photos := s.photosOf(car)
	s.Require().Len(photos, 2)
	s.Equal(testCDN+"a.jpg", photos[0].ImageURL)
	s.True(photos[0].IsPrimary)
	s.False(photos[1].IsPrimary)
	s.Equal(1, photos[1].SortOrder)
}

func (s *ServicesTestSuite) loadCar(id uuid.UUID) models.Car {
	var car models.Car
	s.Require().NoError(s.db.First(&car, "id = ?", id).Error)
	return car
}

func (s *ServicesTestSuite) TestUpsertIsIdempotent() {
	s.src.addAdvert("101", "a.jpg", "b.jpg")
	firstSeen := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	secondSeen := firstSeen.Add(24 * time.Hour)

	car, err := s.importer.Upsert(context.Background(), "101", firstSeen)
	s.Require().NoError(err)
	before := s.loadCar(car.ID)
	photosBefore := s.photosOf(car)

	again, err := s.importer.Upsert(context.Background(), "101", secondSeen)
	s.Require().NoError(err)
	s.Equal(car.ID, again.ID)
	s.Equal(int64(1), s.countCars())
	after := s.loadCar(car.ID)

	s.Require().NotNil(after.LastSeenAt)
	s.True(secondSeen.Equal(*after.LastSeenAt))
	s.True(before.CreatedAt.Equal(after.CreatedAt))
	s.False(after.UpdatedAt.Before(before.UpdatedAt))

	// apart from the timestamps the row is unchanged
	after.LastSeenAt, after.UpdatedAt, after.CreatedAt = before.LastSeenAt, before.UpdatedAt, before.CreatedAt
	s.Equal(before, after)
	s.Equal(models.FuelHybrid, after.FuelTypeCode)
	s.Equal(models.TransmissionAutomatic, after.TransmissionCode)
	s.Equal(models.CanonHybridPetrol, after.FuelTypeCanonical)

	photosAfter := s.photosOf(car)
	s.Require().Len(photosAfter, len(photosBefore))
	for i := range photosAfter {
		s.Equal(photosBefore[i].ImageURL, photosAfter[i].ImageURL)
		s.Equal(photosBefore[i].SortOrder, photosAfter[i].SortOrder)
		s.Equal(photosBefore[i].IsPrimary, photosAfter[i].IsPrimary)
	}
}

func (s *ServicesTestSuite) TestUpsertReplacesPhotos() {
	s.src.addAdvert("101", "a.jpg", "b.jpg", "c.jpg")
	first, err := s.importer.Upsert(context.Background(), "101", time.Now())
	s.Require().NoError(err)

	s.src.addAdvert("101", "d.jpg")
	second, err := s.importer.Upsert(context.Background(), "101", time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	photos := s.photosOf(second)
	s.Require().Len(photos, 1)
	s.Equal(testCDN+"d.jpg", photos[0].ImageURL)
	s.True(photos[0].IsPrimary)

	var total int64
	s.Require().NoError(s.db.Model(&models.Photo{}).Count(&total).Error)
	s.Equal(int64(1), total)
}

func (s *ServicesTestSuite) TestUpsertKeepsCanonicalFuel() {
	s.src.addAdvert("101")
	car, err := s.importer.Upsert(context.Background(), "101", time.Now())
	s.Require().NoError(err)
	s.Equal(models.CanonHybridPetrol, s.loadCar(car.ID).FuelTypeCanonical)

	s.src.relist("101", "Toyota C-HR 2019", "Дизель")
	_, err = s.importer.Upsert(context.Background(), "101", time.Now())
	s.Require().NoError(err)

	stored := s.loadCar(car.ID)
	s.Equal(models.FuelDiesel, stored.FuelTypeCode)
	s.Equal("Дизель", stored.FuelTypeLabel)
	s.Equal(models.TransmissionManual, stored.TransmissionCode)
	s.Equal(models.CanonHybridPetrol, stored.FuelTypeCanonical)
}

func (s *ServicesTestSuite) TestUpsertRepublishesArchivedCar() {
	s.src.addAdvert("101")
	car, err := s.importer.Upsert(context.Background(), "101", time.Now())
	s.Require().NoError(err)

	_, err = s.syncer.Archive(context.Background(), nil, time.Now())
	s.Require().NoError(err)

	_, err = s.importer.Upsert(context.Background(), "101", time.Now())
	s.Require().NoError(err)

	var stored models.Car
	s.Require().NoError(s.db.First(&stored, "id = ?", car.ID).Error)
	s.True(stored.Listed())
	s.Nil(stored.SoldAt)
}

func (s *ServicesTestSuite) TestUpsertTrustsPageTable() {
	s.src.addAdvert("101")
	s.src.pages["101"] = source.PageResult{Page: source.Page{
		Pairs: []source.Pair{
			{Label: "Тип топлива", Value: "Бензин"},
			{Label: "Коробка передач", Value: "Автомат"},
			{Label: "Цвет", Value: "Белый"},
		},
		PriceAmount:  "15900",
		Currency:     "EUR",
		MainPhotoURL: "https://999.md/og.jpg",
	}}

	car, err := s.importer.Upsert(context.Background(), "101", time.Now())
	s.Require().NoError(err)

	s.Equal(models.FuelPetrol, car.FuelTypeCode)
	s.Equal(models.TransmissionAutomatic, car.TransmissionCode)
	s.Equal("Белый", car.Color)
	s.Equal(15900.0, car.PriceEUR)
	s.Equal("https://999.md/og.jpg", car.MainPhotoURL)
	s.Equal(true, car.RawSpecs["page_available"])
}

func (s *ServicesTestSuite) TestUpsertAbortsOnFetchError() {
	s.src.addAdvert("101")
	s.src.failures["features:101"] = &source.StatusError{Method: "GET", URL: "/adverts/101/features", StatusCode: 500}

	_, err := s.importer.Upsert(context.Background(), "101", time.Now())
	s.Require().Error(err)
	s.True(source.IsStatus(err, 500))
	s.Zero(s.countCars())

	_, err = s.importer.Upsert(context.Background(), "missing", time.Now())
	s.True(source.IsStatus(err, 404))
}

func (s *ServicesTestSuite) TestUpsertStoresSnapshot() {
	dir := s.T().TempDir()
	snapshots, err := NewSnapshotService(&config.Config{Snapshot: config.SnapshotConfig{Enabled: true, LocalDir: dir}})
	s.Require().NoError(err)
	s.importer.snapshots = snapshots

	s.src.addAdvert("101")
	_, err = s.importer.Upsert(context.Background(), "101", time.Now())
	s.Require().NoError(err)

	// the page was unavailable, so only the two JSON documents are kept
	files, err := filepath.Glob(filepath.Join(dir, "999", "101", "*", "*"))
	s.Require().NoError(err)
	s.Require().Len(files, 2)
	s.Equal("advert.json", filepath.Base(files[0]))
	s.Equal("features.json", filepath.Base(files[1]))
}

func (s *ServicesTestSuite) TestSyncWithArchive() {
	for _, id := range []string{"1", "2", "3"} {
		s.src.addAdvert(id)
	}
	s.src.lists = []source.AdvertList{
		listed(4, "1", "x9"),
		listed(4, "2", "3"),
	}

	old := models.Car{Source: "999", ExternalID: "old"}
	old.Publish(time.Now().Add(-48 * time.Hour))
	s.Require().NoError(s.db.Create(&old).Error)
	foreign := models.Car{Source: "other", ExternalID: "old"}
	foreign.Publish(time.Now())
	s.Require().NoError(s.db.Create(&foreign).Error)

	res, err := s.syncer.SyncWithArchive(context.Background(), SyncOptions{})
	s.Require().NoError(err)
	s.Equal(3, res.Imported)
	s.Equal(3, res.ActiveSeen)
	s.Equal(int64(1), res.Archived)
	s.Len(s.src.listCalls, 2)
	s.Equal(2, s.src.listCalls[0].PageSize)

	var archived models.Car
	s.Require().NoError(s.db.First(&archived, "id = ?", old.ID).Error)
	s.Equal(models.CarStatusArchived, archived.Status)
	s.False(archived.Active)
	s.NotNil(archived.SoldAt)

	var untouched models.Car
	s.Require().NoError(s.db.First(&untouched, "id = ?", foreign.ID).Error)
	s.True(untouched.Listed())

	// every car of the run shares one last_seen_at
	var seen []models.Car
	s.Require().NoError(s.db.Where("source = ? AND active = ?", "999", true).Find(&seen).Error)
	s.Require().Len(seen, 3)
	for _, car := range seen {
		s.True(seen[0].LastSeenAt.Equal(*car.LastSeenAt))
	}
}

func (s *ServicesTestSuite) TestSyncRespectsMaxItems() {
	for _, id := range []string{"1", "2", "3"} {
		s.src.addAdvert(id)
	}
	s.src.lists = []source.AdvertList{
		listed(6, "1", "x9"),
		listed(6, "2", "3"),
		listed(6, "4", "5"),
	}

	imported, err := s.syncer.Sync(context.Background(), SyncOptions{MaxItems: 2})
	s.Require().NoError(err)
	s.Equal(2, imported)
	s.Len(s.src.listCalls, 2)
	s.Equal(int64(2), s.countCars())
}

func (s *ServicesTestSuite) TestSyncStopsOnEmptyPage() {
	s.src.addAdvert("1")
	s.src.lists = []source.AdvertList{listed(100, "1")}

	imported, err := s.syncer.Sync(context.Background(), SyncOptions{PageSize: 1})
	s.Require().NoError(err)
	s.Equal(1, imported)
	s.Len(s.src.listCalls, 2)
	s.Equal(1, s.src.listCalls[1].PageSize)
}

func (s *ServicesTestSuite) TestSyncHaltsOnAdvertError() {
	s.src.addAdvert("1")
	s.src.lists = []source.AdvertList{listed(3, "1", "2", "3")}

	res, err := s.syncer.SyncWithArchive(context.Background(), SyncOptions{})
	s.Require().Error(err)
	s.True(source.IsStatus(err, 404))
	s.Equal(1, res.Imported)
	s.Zero(res.Archived)

	status := s.syncer.Status()
	s.False(status.Running)
	s.Contains(status.LastError, "404")
}

func (s *ServicesTestSuite) TestEmptySeenSetArchivesEverything() {
	for _, id := range []string{"1", "2"} {
		car := models.Car{Source: "999", ExternalID: id}
		car.Publish(time.Now())
		s.Require().NoError(s.db.Create(&car).Error)
	}

	res, err := s.syncer.SyncWithArchive(context.Background(), SyncOptions{})
	s.Require().NoError(err)
	s.Zero(res.Imported)
	s.Equal(int64(2), res.Archived)
}

func (s *ServicesTestSuite) TestArchiveWithLargeSeenSet() {
	kept := models.Car{Source: "999", ExternalID: "17"}
	kept.Publish(time.Now())
	s.Require().NoError(s.db.Create(&kept).Error)
	gone := models.Car{Source: "999", ExternalID: "gone"}
	gone.Publish(time.Now())
	s.Require().NoError(s.db.Create(&gone).Error)

	// more ids than SQLite accepts as bound parameters
	seen := make([]string, 0, 40000)
	for i := 0; i < 40000; i++ {
		seen = append(seen, strconv.Itoa(i))
	}

	archived, err := s.syncer.Archive(context.Background(), seen, time.Now())
	s.Require().NoError(err)
	s.Equal(int64(1), archived)
	keptCar, goneCar := s.loadCar(kept.ID), s.loadCar(gone.ID)
	s.True(keptCar.Listed())
	s.False(goneCar.Listed())

	// the staging table does not outlive the call
	archived, err = s.syncer.Archive(context.Background(), []string{"17"}, time.Now())
	s.Require().NoError(err)
	s.Zero(archived)
}

func (s *ServicesTestSuite) TestSecondRunIsRejected() {
	s.Require().True(s.syncer.begin(SyncOptions{}))

	_, err := s.syncer.Run(context.Background(), SyncOptions{})
	s.ErrorIs(err, ErrSyncInProgress)
	s.ErrorIs(s.syncer.Start(SyncOptions{}), ErrSyncInProgress)
	s.True(s.syncer.Status().Running)

	s.syncer.finish(&SyncResult{Imported: 1}, nil)
	s.False(s.syncer.Status().Running)
	s.Equal(1, s.syncer.Status().Last.Imported)
}

func TestServicesTestSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}
