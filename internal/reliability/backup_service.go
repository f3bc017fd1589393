// Package reliability uploads export backups to object storage and keeps
// the SQLite files healthy.
package reliability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/events"
)

const (
	backupPrefix    = "stoxy-backup-"
	backupTimestamp = "2006-01-02-150405"

	// minBackupsToKeep survive rotation regardless of age
	minBackupsToKeep = 3
)

// ObjectStore is the bucket used for backups
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// Exporter writes the export document
type Exporter interface {
	WriteTo(w io.Writer) error
}

// BackupInfo represents a backup stored in the bucket
type BackupInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// BackupService uploads export documents to object storage
type BackupService struct {
	store    ObjectStore
	exporter Exporter
	prefix   string
	events   *events.Manager
	log      zerolog.Logger
	now      func() time.Time
}

// NewBackupService creates a backup service writing under prefix
func NewBackupService(store ObjectStore, exporter Exporter, prefix string, eventManager *events.Manager, log zerolog.Logger) *BackupService {
	return &BackupService{
		store:    store,
		exporter: exporter,
		prefix:   prefix,
		events:   eventManager,
		log:      log.With().Str("service", "backup").Logger(),
		now:      time.Now,
	}
}

// CreateAndUpload exports the local store and uploads it. Returns the object key.
func (s *BackupService) CreateAndUpload(ctx context.Context) (string, error) {
	start := s.now()

	var buf bytes.Buffer
	if err := s.exporter.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("failed to export data: %w", err)
	}

	// the suffix keeps two backups in the same second apart
	key := fmt.Sprintf("%s%s%s-%s.json", s.prefix, backupPrefix, start.UTC().Format(backupTimestamp), uuid.NewString()[:8])
	size := buf.Len()

	if err := s.store.Upload(ctx, key, &buf, "application/json"); err != nil {
		return "", err
	}

	s.log.Info().
		Str("key", key).
		Int("size_bytes", size).
		Dur("duration_ms", time.Since(start)).
		Msg("Backup uploaded")

	if s.events != nil {
		s.events.Emit(events.BackupCreated, "reliability", map[string]interface{}{"key": key, "size_bytes": size})
	}
	return key, nil
}

// ListBackups returns stored backups, newest first
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, s.prefix+backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	now := s.now()
	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		ts, ok := parseBackupTime(strings.TrimPrefix(obj.Key, s.prefix))
		if !ok {
			s.log.Warn().Str("key", obj.Key).Msg("Skipping object with unparseable backup name")
			continue
		}
		backups = append(backups, BackupInfo{
			Key:       obj.Key,
			Timestamp: ts,
			SizeBytes: obj.Size,
			AgeHours:  int64(now.Sub(ts).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// RotateOldBackups deletes backups older than retentionDays, always keeping
// the newest minBackupsToKeep. retentionDays <= 0 keeps everything.
func (s *BackupService) RotateOldBackups(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= minBackupsToKeep {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for _, b := range backups[minBackupsToKeep:] {
		if !b.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, b.Key); err != nil {
			s.log.Error().Err(err).Str("key", b.Key).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	s.log.Info().Int("deleted", deleted).Int("remaining", len(backups)-deleted).Msg("Backup rotation completed")
	return deleted, nil
}

// parseBackupTime reads the timestamp out of stoxy-backup-2006-01-02-150405-abcd1234.json
func parseBackupTime(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, ".json") {
		return time.Time{}, false
	}
	rest := strings.TrimPrefix(name, backupPrefix)
	if len(rest) < len(backupTimestamp) {
		return time.Time{}, false
	}
	ts, err := time.Parse(backupTimestamp, rest[:len(backupTimestamp)])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
