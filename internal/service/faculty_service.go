package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadgrid/timetable-api/internal/models"
	appErrors "github.com/acadgrid/timetable-api/pkg/errors"
)

type facultyRepository interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error)
	ListActive(ctx context.Context) ([]models.Faculty, error)
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, f *models.Faculty) error
	Update(ctx context.Context, f *models.Faculty) error
	Deactivate(ctx context.Context, id string) error
}

// CreateFacultyRequest captures creation payload.
type CreateFacultyRequest struct {
	Name         string                    `json:"name" validate:"required"`
	Department   string                    `json:"department" validate:"required"`
	Email        string                    `json:"email" validate:"required,email"`
	MaxWeekly    int                       `json:"max_weekly" validate:"gte=0"`
	Availability []models.AvailabilitySlot `json:"availability" validate:"dive"`
}

// UpdateFacultyRequest modifies faculty fields.
type UpdateFacultyRequest struct {
	Name         string                    `json:"name" validate:"required"`
	Department   string                    `json:"department" validate:"required"`
	Email        string                    `json:"email" validate:"required,email"`
	MaxWeekly    int                       `json:"max_weekly" validate:"gte=0"`
	Availability []models.AvailabilitySlot `json:"availability" validate:"dive"`
}

// FacultyService coordinates faculty directory operations.
type FacultyService struct {
	repo      facultyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService constructs FacultyService.
func NewFacultyService(repo facultyRepository, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, validator: validate, logger: logger}
}

// List returns faculty with pagination metadata.
func (s *FacultyService) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, *models.Pagination, error) {
	faculty, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return faculty, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a faculty member by ID.
func (s *FacultyService) Get(ctx context.Context, id string) (*models.Faculty, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return f, nil
}

// Create adds a new faculty member.
func (s *FacultyService) Create(ctx context.Context, req CreateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "faculty email already exists")
	}

	availability, err := marshalAvailability(req.Availability)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability")
	}

	f := &models.Faculty{
		Name:         req.Name,
		Department:   req.Department,
		Email:        req.Email,
		MaxWeekly:    req.MaxWeekly,
		Availability: availability,
		Active:       true,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty")
	}
	return f, nil
}

// Update modifies a faculty record.
func (s *FacultyService) Update(ctx context.Context, id string, req UpdateFacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}

	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "faculty email already exists")
	}

	availability, err := marshalAvailability(req.Availability)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability")
	}

	f.Name = req.Name
	f.Department = req.Department
	f.Email = req.Email
	f.MaxWeekly = req.MaxWeekly
	f.Availability = availability

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty")
	}
	return f, nil
}

// Deactivate marks a faculty member inactive.
func (s *FacultyService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate faculty")
	}
	return nil
}

func marshalAvailability(slots []models.AvailabilitySlot) (json.RawMessage, error) {
	if len(slots) == 0 {
		return nil, nil
	}
	return json.Marshal(slots)
}
