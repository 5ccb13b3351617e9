// internal/cli/debug.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport/internal/app"
	"github.com/javajoker/autoimport/internal/extract"
	"github.com/javajoker/autoimport/internal/models"
	"github.com/javajoker/autoimport/internal/services"
	"github.com/javajoker/autoimport/internal/utils"
)

// DebugCarCmd returns the debug-car command
func DebugCarCmd() *cobra.Command {
	var advertID string

	cmd := &cobra.Command{
		Use:   "debug-car",
		Short: "Compare a stored car with a fresh fetch of its advert",
		Long: `Fetch one advert live, run extraction and normalization on it and print
the result next to the stored row. Nothing is written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := utils.ValidateVar(advertID, "advert_id"); err != nil {
				return fmt.Errorf("invalid advert id %q", advertID)
			}

			return withApp(func(ctx context.Context, a *app.App) error {
				fetched, err := a.Importer.Fetch(ctx, advertID)
				if err != nil {
					return err
				}

				var stored *models.Car
				var car models.Car
				err = a.DB.WithContext(ctx).
					Where("source = ? AND external_id = ?", a.Config.Source.Name, advertID).
					Take(&car).Error
				switch {
				case err == nil:
					stored = &car
				case errors.Is(err, gorm.ErrRecordNotFound):
					fmt.Println(color.New(color.FgYellow).Sprint("Advert is not in the database yet"))
				default:
					return fmt.Errorf("failed to load car: %w", err)
				}

				fmt.Printf("Page: %s\n", a.Source.PageURL(advertID))
				if !fetched.Page.Available() {
					fmt.Printf("  %s %v\n", color.New(color.FgRed).Sprint("unavailable:"), fetched.Page.Err)
				}
				fmt.Println()

				if err := renderTable(os.Stdout, []string{"FIELD", "STORED", "FRESH", ""}, compareCar(stored, fetched.Draft)); err != nil {
					return err
				}
				fmt.Println()
				return renderTable(os.Stdout, []string{"FIELD", "RAW VALUE", "ORIGIN"}, extractionRows(fetched.Draft))
			})
		},
	}

	cmd.Flags().StringVar(&advertID, "advert-id", "", "Marketplace advert id")
	cmd.MarkFlagRequired("advert-id")

	return cmd
}

// compareCar lines up the stored row with a fresh draft; differing fields
// are flagged in the last column.
func compareCar(stored *models.Car, draft services.Draft) [][]string {
	fresh := draft.Car
	if stored == nil {
		stored = &models.Car{}
	}

	pairs := []struct {
		field         string
		stored, fresh string
	}{
		{"title", stored.Title, fresh.Title},
		{"make", stored.Make, fresh.Make},
		{"model", stored.Model, fresh.Model},
		{"year", intOrDash(stored.Year), intOrDash(fresh.Year)},
		{"mileage_km", strconv.Itoa(stored.MileageKm), strconv.Itoa(fresh.MileageKm)},
		{"fuel_type_raw", stored.FuelTypeRaw, fresh.FuelTypeRaw},
		{"fuel_type_code", string(stored.FuelTypeCode), string(fresh.FuelTypeCode)},
		{"transmission_raw", stored.TransmissionRaw, fresh.TransmissionRaw},
		{"transmission_code", string(stored.TransmissionCode), string(fresh.TransmissionCode)},
		{"body_type", string(stored.BodyType), string(fresh.BodyType)},
		{"engine_cc", intOrDash(stored.EngineCC), intOrDash(fresh.EngineCC)},
		{"power_hp", intOrDash(stored.PowerHP), intOrDash(fresh.PowerHP)},
		{"drive", string(stored.Drive), string(fresh.Drive)},
		{"price_eur", strconv.FormatFloat(stored.PriceEUR, 'f', 0, 64), strconv.FormatFloat(fresh.PriceEUR, 'f', 0, 64)},
		{"currency", stored.Currency, fresh.Currency},
		{"main_photo_url", stored.MainPhotoURL, fresh.MainPhotoURL},
	}

	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		flag := ""
		if p.stored != p.fresh {
			flag = "≠"
		}
		rows = append(rows, []string{p.field, p.stored, p.fresh, flag})
	}
	return rows
}

func extractionRows(draft services.Draft) [][]string {
	var rows [][]string
	for _, f := range extract.Fields() {
		v := draft.Values[f]
		if !v.Found() {
			continue
		}
		rows = append(rows, []string{f.String(), v.Text, string(v.Origin)})
	}
	return rows
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
