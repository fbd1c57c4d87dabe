package service

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadgrid/timetable-api/internal/models"
	"github.com/acadgrid/timetable-api/internal/timetable"
	appErrors "github.com/acadgrid/timetable-api/pkg/errors"
	"github.com/acadgrid/timetable-api/pkg/storage"
)

func newTestExportService(t *testing.T, store *mockSnapshotStore) *ExportService {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(store, testCalendar(t), files, signer, ExportConfig{}, nil)
}

func storedGrid(t *testing.T, key models.TimetableKey) *models.TimetableSnapshot {
	t.Helper()
	grid := timetable.NewGrid(testCalendar(t)).Place("Monday", "9:00-9:55",
		timetable.Course{Code: "CS301", Title: "Algorithms", Duration: 1, FacultyID: "f1", FacultyName: "Dr. Rao"},
		timetable.Room{ID: "r1", Name: "LH-1"})
	raw, err := json.Marshal(grid)
	require.NoError(t, err)
	return &models.TimetableSnapshot{Key: key, Grid: raw, SavedAt: time.Now().UTC()}
}

func TestExportServiceGenerateCSV(t *testing.T) {
	store := newMockSnapshotStore()
	key := testKey()
	store.snapshots[key.String()] = storedGrid(t, key)
	svc := newTestExportService(t, store)

	result, err := svc.Generate(context.Background(), key, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.NotEmpty(t, result.Token)
	assert.Contains(t, result.Filename, key.String())

	file, contentType, err := svc.Download(result.Token)
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, "text/csv", contentType)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CS301")
	assert.Contains(t, string(data), "LH-1")
}

func TestExportServiceGeneratePDF(t *testing.T) {
	store := newMockSnapshotStore()
	key := testKey()
	store.snapshots[key.String()] = storedGrid(t, key)
	svc := newTestExportService(t, store)

	result, err := svc.Generate(context.Background(), key, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)

	file, contentType, err := svc.Download(result.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "application/pdf", contentType)
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestExportService(t, store)

	_, err := svc.Generate(context.Background(), testKey(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceMissingTimetable(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestExportService(t, store)

	_, err := svc.Generate(context.Background(), testKey(), "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceDownloadInvalidToken(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestExportService(t, store)

	_, _, err := svc.Download("not.a.real.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
