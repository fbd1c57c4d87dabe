package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadgrid/timetable-api/internal/models"
)

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses with joined faculty and batch info.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	base := "FROM courses c LEFT JOIN faculty f ON f.id = c.faculty_id LEFT JOIN batches b ON b.id = c.batch_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("c.faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("c.batch_id = $%d", len(args)+1))
		args = append(args, filter.BatchID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(c.code) LIKE $%d OR LOWER(c.title) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"code":         "c.code",
		"title":        "c.title",
		"weekly_hours": "c.weekly_hours",
		"created_at":   "c.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "c.code"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT c.id, c.code, c.title, c.weekly_hours, c.duration, c.faculty_id, c.batch_id, c.required_facilities, c.created_at, c.updated_at, f.name AS faculty_name, b.name AS batch_name, b.size AS batch_size %s ORDER BY %s %s LIMIT %d OFFSET %d", base, column, order, size, offset)
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// ListByBatch returns all courses for one batch, the working set for a
// timetable session.
func (r *CourseRepository) ListByBatch(ctx context.Context, batchID string) ([]models.CourseDetail, error) {
	const query = `SELECT c.id, c.code, c.title, c.weekly_hours, c.duration, c.faculty_id, c.batch_id, c.required_facilities, c.created_at, c.updated_at, f.name AS faculty_name, b.name AS batch_name, b.size AS batch_size FROM courses c LEFT JOIN faculty f ON f.id = c.faculty_id LEFT JOIN batches b ON b.id = c.batch_id WHERE c.batch_id = $1 ORDER BY c.code ASC`
	var courses []models.CourseDetail
	if err := r.db.SelectContext(ctx, &courses, query, batchID); err != nil {
		return nil, fmt.Errorf("list batch courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course with joined detail by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	const query = `SELECT c.id, c.code, c.title, c.weekly_hours, c.duration, c.faculty_id, c.batch_id, c.required_facilities, c.created_at, c.updated_at, f.name AS faculty_name, b.name AS batch_name, b.size AS batch_size FROM courses c LEFT JOIN faculty f ON f.id = c.faculty_id LEFT JOIN batches b ON b.id = c.batch_id WHERE c.id = $1`
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create persists a course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	if course.Duration < 1 {
		course.Duration = 1
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, code, title, weekly_hours, duration, faculty_id, batch_id, required_facilities, created_at, updated_at) VALUES (:id, :code, :title, :weekly_hours, :duration, :faculty_id, :batch_id, :required_facilities, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies a course record.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET code = :code, title = :title, weekly_hours = :weekly_hours, duration = :duration, faculty_id = :faculty_id, batch_id = :batch_id, required_facilities = :required_facilities, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course record.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
