package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadgrid/timetable-api/internal/models"
)

func courseColumns() []string {
	return []string{"id", "code", "title", "weekly_hours", "duration", "faculty_id", "batch_id", "required_facilities", "created_at", "updated_at", "faculty_name", "batch_name", "batch_size"}
}

func TestCourseRepositoryListByBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	faculty := "f1"
	batch := "b1"
	name := "Dr. Rao"
	rows := sqlmock.NewRows(courseColumns()).
		AddRow("c1", "CS101", "Programming", 4, 1, &faculty, &batch, pq.StringArray{}, time.Now(), time.Now(), &name, ptrString("CSE-A"), ptrInt(62))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.batch_id = $1 ORDER BY c.code ASC")).
		WithArgs("b1").
		WillReturnRows(rows)

	courses, err := repo.ListByBatch(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS101", courses[0].Code)
	require.NotNil(t, courses[0].BatchSize)
	assert.Equal(t, 62, *courses[0].BatchSize)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateDefaultsDuration(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").
		WithArgs(sqlmock.AnyArg(), "CS101", "Programming", 4, 1, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{Code: "CS101", Title: "Programming", WeeklyHours: 4}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, 1, course.Duration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListFiltersBySearch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("LOWER\\(c.code\\) LIKE \\$1 OR LOWER\\(c.title\\) LIKE \\$1").
		WithArgs("%cs1%").
		WillReturnRows(sqlmock.NewRows(courseColumns()))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs("%cs1%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.CourseFilter{Search: "CS1"})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptrString(s string) *string { return &s }
func ptrInt(i int) *int          { return &i }
