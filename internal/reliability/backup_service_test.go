package reliability

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stoxy/internal/database"
	"github.com/aristath/stoxy/internal/events"
	testingpkg "github.com/aristath/stoxy/internal/testing"
)

type memoryBucket struct {
	objects map[string]string
	deleted []string
	failPut bool
}

func newBucket() *memoryBucket { return &memoryBucket{objects: map[string]string{}} }

func (b *memoryBucket) Upload(_ context.Context, key string, body io.Reader, _ string) error {
	if b.failPut {
		return errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.objects[key] = string(data)
	return nil
}

func (b *memoryBucket) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for k, v := range b.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

func (b *memoryBucket) Delete(_ context.Context, key string) error {
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

type staticExporter string

func (e staticExporter) WriteTo(w io.Writer) error {
	_, err := io.WriteString(w, string(e))
	return err
}

func TestCreateAndUpload(t *testing.T) {
	bucket := newBucket()
	bus := events.NewBus(zerolog.Nop())
	created := 0
	bus.Subscribe(func(*events.Event) { created++ }, events.BackupCreated)

	svc := NewBackupService(bucket, staticExporter(`{"version":"1.0.0"}`), "stoxy/", events.NewManager(bus, zerolog.Nop()), zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC) }

	key, err := svc.CreateAndUpload(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "stoxy/stoxy-backup-2024-02-03-040506-"), key)
	assert.Equal(t, `{"version":"1.0.0"}`, bucket.objects[key])
	assert.Equal(t, 1, created)
}

func TestCreateAndUpload_UploadError(t *testing.T) {
	bucket := newBucket()
	bucket.failPut = true

	_, err := NewBackupService(bucket, staticExporter("{}"), "", nil, zerolog.Nop()).CreateAndUpload(context.Background())
	assert.Error(t, err)
}

func TestListAndRotate(t *testing.T) {
	bucket := newBucket()
	for _, name := range []string{
		"p/stoxy-backup-2024-01-01-000000-aaaaaaaa.json",
		"p/stoxy-backup-2024-01-02-000000-bbbbbbbb.json",
		"p/stoxy-backup-2024-03-01-000000-cccccccc.json",
		"p/stoxy-backup-2024-03-02-000000-dddddddd.json",
		"p/stoxy-backup-2024-03-03-000000-eeeeeeee.json",
		"p/stoxy-backup-garbage.json",
	} {
		bucket.objects[name] = "{}"
	}

	svc := NewBackupService(bucket, staticExporter("{}"), "p/", nil, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC) }

	backups, err := svc.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 5)
	assert.Equal(t, "p/stoxy-backup-2024-03-03-000000-eeeeeeee.json", backups[0].Key)
	assert.Equal(t, int64(24), backups[0].AgeHours)

	deleted, err := svc.RotateOldBackups(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.ElementsMatch(t, []string{
		"p/stoxy-backup-2024-01-01-000000-aaaaaaaa.json",
		"p/stoxy-backup-2024-01-02-000000-bbbbbbbb.json",
	}, bucket.deleted)

	deleted, err = svc.RotateOldBackups(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestBackupJob(t *testing.T) {
	bucket := newBucket()
	job := NewBackupJob(NewBackupService(bucket, staticExporter("{}"), "", nil, zerolog.Nop()), zerolog.Nop())

	assert.Equal(t, "backup", job.Name())
	require.NoError(t, job.Run())
	assert.Len(t, bucket.objects, 1)
}

func TestMaintenanceJob(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "localstore")
	defer cleanup()

	job := NewMaintenanceJob(map[string]*database.DB{"localstore": db}, zerolog.Nop())
	assert.Equal(t, "maintenance", job.Name())
	assert.NoError(t, job.Run())
}
