package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/acadgrid/timetable-api/internal/models"
	"github.com/acadgrid/timetable-api/internal/timetable"
	appErrors "github.com/acadgrid/timetable-api/pkg/errors"
	"github.com/acadgrid/timetable-api/pkg/export"
	"github.com/acadgrid/timetable-api/pkg/storage"
)

type exportSnapshotStore interface {
	Load(ctx context.Context, key models.TimetableKey) (*models.TimetableSnapshot, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type sheetRenderer interface {
	Export(sheet *export.Sheet) ([]byte, error)
	ContentType() string
	FileExtension() string
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	Filename    string    `json:"filename"`
	Token       string    `json:"token"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ExportService renders stored timetables as CSV or PDF sheets and
// hands out signed download tokens for the generated files.
type ExportService struct {
	store     exportSnapshotStore
	calendar  *timetable.Calendar
	files     fileStorage
	signer    *storage.SignedURLSigner
	renderers map[string]sheetRenderer
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(store exportSnapshotStore, calendar *timetable.Calendar, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if calendar == nil {
		calendar = timetable.DefaultCalendar()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		store:    store,
		calendar: calendar,
		files:    files,
		signer:   signer,
		renderers: map[string]sheetRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		logger: logger,
		cfg:    cfg,
	}
}

// Generate renders the stored timetable in the requested format.
func (s *ExportService) Generate(ctx context.Context, key models.TimetableKey, format string) (*ExportResult, error) {
	renderer, ok := s.renderers[strings.ToLower(format)]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	snapshot, err := s.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	grid, err := timetable.DecodeGrid(s.calendar, snapshot.Grid)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored timetable is malformed")
	}

	sheet := s.buildSheet(key, grid)
	data, err := renderer.Export(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	filename := fmt.Sprintf("%s-%d.%s", key.String(), time.Now().UTC().Unix(), renderer.FileExtension())
	if _, err := s.files.Save(filename, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(key.String(), filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	s.logger.Sugar().Infow("timetable exported", "key", key.String(), "format", format, "file", filename)
	return &ExportResult{
		Filename:    filename,
		Token:       token,
		ContentType: renderer.ContentType(),
		ExpiresAt:   expiresAt,
	}, nil
}

// Download resolves a signed token to the stored file.
func (s *ExportService) Download(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}

	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(relPath, ".csv"):
		contentType = "text/csv"
	case strings.HasSuffix(relPath, ".pdf"):
		contentType = "application/pdf"
	}
	return file, contentType, nil
}

// Cleanup removes export files older than the configured TTL.
func (s *ExportService) Cleanup() (int, error) {
	deleted, err := s.files.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		return 0, err
	}
	if len(deleted) > 0 {
		s.logger.Sugar().Infow("cleaned up stale exports", "count", len(deleted))
	}
	return len(deleted), nil
}

func (s *ExportService) buildSheet(key models.TimetableKey, grid timetable.Grid) *export.Sheet {
	cells := make(map[string]map[string]string, len(s.calendar.Days()))
	for _, day := range s.calendar.Days() {
		cells[day] = make(map[string]string, len(s.calendar.Slots()))
	}
	for _, a := range grid.Assignments() {
		label := a.Code
		if a.RoomName != "" {
			label += " / " + a.RoomName
		} else if a.RoomID != "" {
			label += " / " + a.RoomID
		}
		if a.FacultyName != "" {
			label += " (" + a.FacultyName + ")"
		}
		cells[a.Day][a.Slot] = label
	}
	return &export.Sheet{
		Title: "Timetable " + key.String(),
		Days:  s.calendar.Days(),
		Slots: s.calendar.Slots(),
		Cells: cells,
	}
}
