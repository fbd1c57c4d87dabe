package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadgrid/timetable-api/internal/dto"
	"github.com/acadgrid/timetable-api/internal/models"
	"github.com/acadgrid/timetable-api/internal/timetable"
	appErrors "github.com/acadgrid/timetable-api/pkg/errors"
)

type mockSnapshotStore struct {
	mu         sync.Mutex
	snapshots  map[string]*models.TimetableSnapshot
	saved      []*models.TimetableSnapshot
	callbacks  map[string]func(*models.TimetableSnapshot)
	subscribed int
}

func newMockSnapshotStore() *mockSnapshotStore {
	return &mockSnapshotStore{
		snapshots: make(map[string]*models.TimetableSnapshot),
		callbacks: make(map[string]func(*models.TimetableSnapshot)),
	}
}

func (m *mockSnapshotStore) Load(ctx context.Context, key models.TimetableKey) (*models.TimetableSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.snapshots[key.String()]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return snapshot, nil
}

func (m *mockSnapshotStore) Save(ctx context.Context, snapshot *models.TimetableSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.Key.String()] = snapshot
	m.saved = append(m.saved, snapshot)
	return nil
}

func (m *mockSnapshotStore) Delete(ctx context.Context, key models.TimetableKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, key.String())
	return nil
}

func (m *mockSnapshotStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for name := range m.snapshots {
		names = append(names, name)
	}
	return names, nil
}

func (m *mockSnapshotStore) Subscribe(ctx context.Context, key models.TimetableKey, fn func(*models.TimetableSnapshot)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks[key.String()] = fn
	m.subscribed++
	return func() {}, nil
}

func (m *mockSnapshotStore) notify(key models.TimetableKey, snapshot *models.TimetableSnapshot) {
	m.mu.Lock()
	fn := m.callbacks[key.String()]
	m.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

func (m *mockSnapshotStore) lastSaved() *models.TimetableSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

type mockRoomDir struct{ rooms []models.Room }

func (m *mockRoomDir) ListActive(ctx context.Context) ([]models.Room, error) {
	return m.rooms, nil
}

type mockFacultyDir struct{ faculty []models.Faculty }

func (m *mockFacultyDir) ListActive(ctx context.Context) ([]models.Faculty, error) {
	return m.faculty, nil
}

type mockBatchCourses struct{ catalog []models.CourseDetail }

func (m *mockBatchCourses) ListByBatch(ctx context.Context, batchID string) ([]models.CourseDetail, error) {
	return m.catalog, nil
}

func testCalendar(t *testing.T) *timetable.Calendar {
	t.Helper()
	cal, err := timetable.NewCalendar(
		[]string{"Monday", "Tuesday"},
		[]string{"9:00-9:55", "10:00-10:55", "11:00-11:55"},
	)
	require.NoError(t, err)
	return cal
}

func testKey() models.TimetableKey {
	return models.TimetableKey{Semester: "3", Branch: "CSE", Batch: "A", Type: models.TimetableTheory}
}

func newTestTimetableService(t *testing.T, store *mockSnapshotStore) *TimetableService {
	t.Helper()
	rooms := &mockRoomDir{rooms: []models.Room{
		{ID: "r1", Name: "LH-1", Capacity: 60, Type: "lecture", Active: true},
		{ID: "r2", Name: "LH-2", Capacity: 40, Type: "lecture", Active: true},
	}}
	faculty := &mockFacultyDir{faculty: []models.Faculty{
		{ID: "f1", Name: "Dr. Rao", Department: "CSE", MaxWeekly: 20, Active: true},
		{ID: "f2", Name: "Dr. Iyer", Department: "CSE", MaxWeekly: 20, Active: true},
	}}
	courses := &mockBatchCourses{}
	return NewTimetableService(store, rooms, faculty, courses, nil, nil, nil, nil, TimetableConfig{
		Calendar: testCalendar(t),
	})
}

func placeReq(code, facultyID, day, slot, roomID string) dto.PlaceRequest {
	return dto.PlaceRequest{
		Course: dto.CoursePayload{Code: code, Title: code, WeeklyHours: "3", Duration: 1, FacultyID: facultyID},
		Day:    day,
		Slot:   slot,
		RoomID: roomID,
	}
}

func TestTimetableServicePlaceCommits(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestTimetableService(t, store)

	res, err := svc.Place(context.Background(), testKey(), "u1", placeReq("CS301", "f1", "Monday", "9:00-9:55", "r1"))
	require.NoError(t, err)
	assert.True(t, res.Result.Committed)
	assert.True(t, res.Session.CanUndo)
	assert.Empty(t, res.Session.Conflicts)
}

func TestTimetableServicePlaceBlockedByRoomConflict(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestTimetableService(t, store)
	key := testKey()

	_, err := svc.Place(context.Background(), key, "u1", placeReq("CS301", "f1", "Monday", "9:00-9:55", "r1"))
	require.NoError(t, err)

	res, err := svc.Place(context.Background(), key, "u1", placeReq("CS302", "f2", "Monday", "9:00-9:55", "r1"))
	require.NoError(t, err)
	assert.False(t, res.Result.Committed)
	assert.False(t, res.Result.Evaluation.CanCommit())
}

func TestTimetableServiceEvaluateDoesNotMutate(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestTimetableService(t, store)
	key := testKey()

	_, err := svc.Place(context.Background(), key, "u1", placeReq("CS301", "f1", "Monday", "9:00-9:55", "r1"))
	require.NoError(t, err)

	course := dto.CoursePayload{Code: "CS302", Duration: 1, FacultyID: "f1"}
	eval, err := svc.Evaluate(context.Background(), key, dto.EvaluateRequest{
		Course: &course, Day: "Monday", Slot: "9:00-9:55", RoomID: "r2",
	})
	require.NoError(t, err)
	assert.False(t, eval.CanCommit())

	view, err := svc.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Empty(t, view.Conflicts)

	var grid map[string]map[string]*timetable.CourseAssignment
	require.NoError(t, json.Unmarshal(view.Grid, &grid))
	assert.Nil(t, grid["Monday"]["10:00-10:55"])
	require.NotNil(t, grid["Monday"]["9:00-9:55"])
	assert.Equal(t, "CS301", grid["Monday"]["9:00-9:55"].Code)
}

func TestTimetableServiceMoveUndoRedo(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestTimetableService(t, store)
	key := testKey()
	ctx := context.Background()

	_, err := svc.Place(ctx, key, "u1", placeReq("CS301", "f1", "Monday", "9:00-9:55", "r1"))
	require.NoError(t, err)

	moved, err := svc.Move(ctx, key, "u1", dto.MoveRequest{
		FromDay: "Monday", FromSlot: "9:00-9:55", ToDay: "Tuesday", ToSlot: "10:00-10:55",
	})
	require.NoError(t, err)
	require.True(t, moved.Result.Committed)

	view, err := svc.Undo(ctx, key, "u1")
	require.NoError(t, err)
	assert.True(t, view.CanRedo)

	view, err = svc.Redo(ctx, key, "u1")
	require.NoError(t, err)
	assert.False(t, view.CanRedo)
}

func TestTimetableServiceUndoExhausted(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestTimetableService(t, store)

	_, err := svc.Undo(context.Background(), testKey(), "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrHistoryExhausted.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceRemoveEmptyCell(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestTimetableService(t, store)

	_, err := svc.Remove(context.Background(), testKey(), "u1", dto.RemoveRequest{Day: "Monday", Slot: "9:00-9:55"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceSuggestWithoutConflict(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestTimetableService(t, store)

	_, err := svc.Suggest(context.Background(), testKey(), dto.SuggestRequest{Day: "Monday", Slot: "9:00-9:55"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceAutoArrange(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestTimetableService(t, store)
	svc.courses = &mockBatchCourses{catalog: []models.CourseDetail{
		{Course: models.Course{Code: "CS301", Title: "Algorithms", WeeklyHours: 2, Duration: 1, FacultyID: ptrString("f1")}},
		{Course: models.Course{Code: "CS302", Title: "Databases", WeeklyHours: 1, Duration: 1, FacultyID: ptrString("f2")}},
	}}

	res, err := svc.AutoArrange(context.Background(), testKey(), "u1", dto.AutoArrangeRequest{BatchID: "b1"})
	require.NoError(t, err)
	assert.Len(t, res.Placed, 3)
	assert.Empty(t, res.Unplaced)
}

func TestTimetableServiceSaveStoresSnapshot(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestTimetableService(t, store)
	key := testKey()
	ctx := context.Background()

	_, err := svc.Place(ctx, key, "u1", placeReq("CS301", "f1", "Monday", "9:00-9:55", "r1"))
	require.NoError(t, err)
	require.NoError(t, svc.Save(ctx, key, "u1"))

	saved := store.lastSaved()
	require.NotNil(t, saved)
	assert.Equal(t, key, saved.Key)
	assert.Equal(t, "u1", saved.SavedBy)
	assert.NotEmpty(t, saved.Origin)
	assert.Zero(t, saved.Conflicts)
}

func TestTimetableServiceStaleSessionReload(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestTimetableService(t, store)
	key := testKey()
	ctx := context.Background()

	view, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, view.Conflicts)
	require.Equal(t, 1, store.subscribed)

	// Simulate another instance committing a placement.
	cal := testCalendar(t)
	remote := timetable.NewGrid(cal).Place("Monday", "9:00-9:55",
		timetable.Course{Code: "CS999", Duration: 1, FacultyID: "f1"},
		timetable.Room{ID: "r1", Name: "LH-1"})
	raw, err := json.Marshal(remote)
	require.NoError(t, err)
	snapshot := &models.TimetableSnapshot{Key: key, Grid: raw, Origin: "other-instance"}
	require.NoError(t, store.Save(ctx, snapshot))
	store.notify(key, snapshot)

	view, err = svc.Get(ctx, key)
	require.NoError(t, err)

	var grid map[string]map[string]*timetable.CourseAssignment
	require.NoError(t, json.Unmarshal(view.Grid, &grid))
	require.NotNil(t, grid["Monday"]["9:00-9:55"])
	assert.Equal(t, "CS999", grid["Monday"]["9:00-9:55"].Code)
	assert.Equal(t, 2, store.subscribed)
}

func TestTimetableServiceDeleteDropsSession(t *testing.T) {
	store := newMockSnapshotStore()
	svc := newTestTimetableService(t, store)
	key := testKey()
	ctx := context.Background()

	_, err := svc.Place(ctx, key, "u1", placeReq("CS301", "f1", "Monday", "9:00-9:55", "r1"))
	require.NoError(t, err)
	require.NoError(t, svc.Save(ctx, key, "u1"))
	require.NoError(t, svc.Delete(ctx, key))

	view, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, view.CanUndo)
}

func ptrString(s string) *string { return &s }
