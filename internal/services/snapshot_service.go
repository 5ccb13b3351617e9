// internal/services/snapshot_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/javajoker/autoimport/internal/config"
)

// Snapshot is the raw upstream material behind one import.
type Snapshot struct {
	Source     string
	ExternalID string
	Advert     []byte
	Features   []byte
	HTML       string
	TakenAt    time.Time
}

type SnapshotObject struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// SnapshotService stores raw advert payloads for later diagnosis. Objects go
// to S3 when credentials are configured and to a local directory otherwise.
type SnapshotService struct {
	s3Client *s3.S3
	config   *config.Config
}

func NewSnapshotService(config *config.Config) (*SnapshotService, error) {
	if !config.Snapshot.Enabled || config.AWS.AccessKeyID == "" {
		// Local directory, or nothing at all when disabled
		return &SnapshotService{config: config}, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &SnapshotService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

func (s *SnapshotService) Enabled() bool {
	return s != nil && s.config != nil && s.config.Snapshot.Enabled
}

// Save writes the advert JSON, the features JSON and the page HTML under one
// prefix per import. Empty parts are skipped.
func (s *SnapshotService) Save(ctx context.Context, snap Snapshot) ([]SnapshotObject, error) {
	if !s.Enabled() {
		return nil, nil
	}

	prefix := snapshotPrefix(snap)
	parts := []struct {
		name        string
		contentType string
		data        []byte
	}{
		{"advert.json", "application/json", snap.Advert},
		{"features.json", "application/json", snap.Features},
		{"page.html", "text/html; charset=utf-8", []byte(snap.HTML)},
	}

	objects := make([]SnapshotObject, 0, len(parts))
	for _, part := range parts {
		if len(part.data) == 0 {
			continue
		}
		key := path.Join(prefix, part.name)

		var (
			obj *SnapshotObject
			err error
		)
		if s.s3Client != nil {
			obj, err = s.uploadToS3(ctx, part.data, key, part.contentType)
		} else {
			obj, err = s.writeToLocal(part.data, key)
		}
		if err != nil {
			return objects, err
		}
		objects = append(objects, *obj)
	}

	return objects, nil
}

func (s *SnapshotService) uploadToS3(ctx context.Context, data []byte, key, contentType string) (*SnapshotObject, error) {
	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload snapshot %s: %w", key, err)
	}

	return &SnapshotObject{
		Key:  key,
		URL:  fmt.Sprintf("s3://%s/%s", s.config.AWS.S3Bucket, key),
		Size: int64(len(data)),
	}, nil
}

func (s *SnapshotService) writeToLocal(data []byte, key string) (*SnapshotObject, error) {
	target := filepath.Join(s.config.Snapshot.LocalDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot %s: %w", key, err)
	}

	return &SnapshotObject{
		Key:  key,
		URL:  "file://" + filepath.ToSlash(target),
		Size: int64(len(data)),
	}, nil
}

func snapshotPrefix(snap Snapshot) string {
	taken := snap.TakenAt
	if taken.IsZero() {
		taken = time.Now()
	}
	return path.Join(snap.Source, snap.ExternalID, taken.UTC().Format("20060102T150405Z"))
}
