package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadgrid/timetable-api/internal/models"
	appErrors "github.com/acadgrid/timetable-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	ListByBatch(ctx context.Context, batchID string) ([]models.CourseDetail, error)
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CreateCourseRequest captures creation payload.
type CreateCourseRequest struct {
	Code               string   `json:"code" validate:"required"`
	Title              string   `json:"title" validate:"required"`
	WeeklyHours        int      `json:"weekly_hours" validate:"gte=1"`
	Duration           int      `json:"duration" validate:"gte=1,lte=4"`
	FacultyID          *string  `json:"faculty_id"`
	BatchID            *string  `json:"batch_id"`
	RequiredFacilities []string `json:"required_facilities"`
}

// UpdateCourseRequest modifies course fields.
type UpdateCourseRequest struct {
	Code               string   `json:"code" validate:"required"`
	Title              string   `json:"title" validate:"required"`
	WeeklyHours        int      `json:"weekly_hours" validate:"gte=1"`
	Duration           int      `json:"duration" validate:"gte=1,lte=4"`
	FacultyID          *string  `json:"faculty_id"`
	BatchID            *string  `json:"batch_id"`
	RequiredFacilities []string `json:"required_facilities"`
}

// CourseService coordinates course directory operations.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns courses with pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a course by ID.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a new course.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := &models.Course{
		Code:               req.Code,
		Title:              req.Title,
		WeeklyHours:        req.WeeklyHours,
		Duration:           req.Duration,
		FacultyID:          req.FacultyID,
		BatchID:            req.BatchID,
		RequiredFacilities: req.RequiredFacilities,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update modifies a course record.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	course := detail.Course
	course.Code = req.Code
	course.Title = req.Title
	course.WeeklyHours = req.WeeklyHours
	course.Duration = req.Duration
	course.FacultyID = req.FacultyID
	course.BatchID = req.BatchID
	course.RequiredFacilities = req.RequiredFacilities

	if err := s.repo.Update(ctx, &course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return &course, nil
}

// Delete removes a course record.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}
