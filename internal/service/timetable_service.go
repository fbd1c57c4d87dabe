package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acadgrid/timetable-api/internal/dto"
	"github.com/acadgrid/timetable-api/internal/models"
	"github.com/acadgrid/timetable-api/internal/timetable"
	appErrors "github.com/acadgrid/timetable-api/pkg/errors"
)

type timetableStore interface {
	Load(ctx context.Context, key models.TimetableKey) (*models.TimetableSnapshot, error)
	Save(ctx context.Context, snapshot *models.TimetableSnapshot) error
	Delete(ctx context.Context, key models.TimetableKey) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Subscribe(ctx context.Context, key models.TimetableKey, fn func(*models.TimetableSnapshot)) (func(), error)
}

type directoryRoomRepo interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

type directoryFacultyRepo interface {
	ListActive(ctx context.Context) ([]models.Faculty, error)
}

type batchCourseRepo interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.CourseDetail, error)
}

// TimetableConfig tunes the session service.
type TimetableConfig struct {
	Calendar    *timetable.Calendar
	Engine      timetable.EngineConfig
	SaveTimeout time.Duration
}

// timetableSession holds one editing engine plus the catalogs it was
// built from. The engine is not safe for concurrent use, so every
// operation runs under the session mutex.
type timetableSession struct {
	mu          sync.Mutex
	key         models.TimetableKey
	engine      *timetable.Engine
	rooms       []timetable.Room
	faculty     []timetable.Faculty
	savedAt     time.Time
	stale       atomic.Bool
	unsubscribe func()
}

// TimetableService owns the in-memory editing sessions, one per
// timetable key, and coordinates them with the snapshot store, the
// audit queue and metrics.
type TimetableService struct {
	store     timetableStore
	roomRepo  directoryRoomRepo
	facRepo   directoryFacultyRepo
	courses   batchCourseRepo
	audit     *AuditService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableConfig

	// instanceID tags published snapshots so this process can ignore
	// its own pub/sub echoes.
	instanceID string

	mu       sync.Mutex
	sessions map[string]*timetableSession
}

// NewTimetableService constructs the session service.
func NewTimetableService(store timetableStore, roomRepo directoryRoomRepo, facRepo directoryFacultyRepo, courses batchCourseRepo, audit *AuditService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg TimetableConfig) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Calendar == nil {
		cfg.Calendar = timetable.DefaultCalendar()
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 5 * time.Second
	}
	return &TimetableService{
		store:      store,
		roomRepo:   roomRepo,
		facRepo:    facRepo,
		courses:    courses,
		audit:      audit,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		instanceID: uuid.NewString(),
		sessions:   make(map[string]*timetableSession),
	}
}

// Get returns the current editing state, opening a session if needed.
func (s *TimetableService) Get(ctx context.Context, key models.TimetableKey) (*dto.SessionView, error) {
	sess, err := s.session(ctx, key)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	view := s.view(sess)
	return &view, nil
}

// List returns stored timetable names under an optional prefix.
func (s *TimetableService) List(ctx context.Context, prefix string) ([]string, error) {
	names, err := s.store.ListKeys(ctx, prefix)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return names, nil
}

// Place commits a course into a cell. A critical conflict blocks the
// commit and surfaces as ErrPlacementBlocked with the evaluation
// attached to the response.
func (s *TimetableService) Place(ctx context.Context, key models.TimetableKey, actor string, req dto.PlaceRequest) (*dto.MutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}

	sess, err := s.session(ctx, key)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	course := courseFromPayload(req.Course)
	room := s.roomByID(sess, req.RoomID)
	result := sess.engine.Place(req.Day, req.Slot, course, room)

	s.metrics.ObservePlacement(timetable.ActionPlace, result.Committed)
	if result.Committed {
		s.afterMutation(sess, actor, models.AuditActionTimetablePlace, map[string]string{"code": course.Code, "day": req.Day, "slot": req.Slot})
	}
	return &dto.MutationResponse{Result: result, Session: s.view(sess)}, nil
}

// Evaluate previews a candidate cell without mutating the grid.
func (s *TimetableService) Evaluate(ctx context.Context, key models.TimetableKey, req dto.EvaluateRequest) (*timetable.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}

	sess, err := s.session(ctx, key)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	engine := sess.engine
	if req.FromDay != "" && req.FromSlot != "" {
		if err := engine.StartDragFrom(req.FromDay, req.FromSlot); err != nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no assignment at source cell")
		}
	} else {
		if req.Course == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "course payload required")
		}
		if err := engine.StartDrag(courseFromPayload(*req.Course), s.roomByID(sess, req.RoomID)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "drag already in progress")
		}
	}
	defer engine.Cancel()

	eval, err := engine.DragOver(req.Day, req.Slot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "evaluation failed")
	}
	return &eval, nil
}

// Move relocates an existing assignment.
func (s *TimetableService) Move(ctx context.Context, key models.TimetableKey, actor string, req dto.MoveRequest) (*dto.MutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}

	sess, err := s.session(ctx, key)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	result, err := sess.engine.MoveAssignment(req.FromDay, req.FromSlot, req.ToDay, req.ToSlot)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no assignment at source cell")
	}

	s.metrics.ObservePlacement(timetable.ActionMove, result.Committed)
	if result.Committed {
		s.afterMutation(sess, actor, models.AuditActionTimetableMove, map[string]string{
			"from": req.FromDay + " " + req.FromSlot,
			"to":   req.ToDay + " " + req.ToSlot,
		})
	}
	return &dto.MutationResponse{Result: result, Session: s.view(sess)}, nil
}

// Remove clears a cell.
func (s *TimetableService) Remove(ctx context.Context, key models.TimetableKey, actor string, req dto.RemoveRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid remove payload")
	}

	sess, err := s.session(ctx, key)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.engine.RemoveAssignment(req.Day, req.Slot) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "cell is already empty")
	}

	s.metrics.ObservePlacement(timetable.ActionRemove, true)
	s.afterMutation(sess, actor, models.AuditActionTimetableRemove, map[string]string{"day": req.Day, "slot": req.Slot})
	view := s.view(sess)
	return &view, nil
}

// Undo steps the session back one snapshot.
func (s *TimetableService) Undo(ctx context.Context, key models.TimetableKey, actor string) (*dto.SessionView, error) {
	return s.step(ctx, key, actor, true)
}

// Redo steps the session forward one snapshot.
func (s *TimetableService) Redo(ctx context.Context, key models.TimetableKey, actor string) (*dto.SessionView, error) {
	return s.step(ctx, key, actor, false)
}

func (s *TimetableService) step(ctx context.Context, key models.TimetableKey, actor string, back bool) (*dto.SessionView, error) {
	sess, err := s.session(ctx, key)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.metrics.ObserveHistoryDepth(sess.engine.History().Len())

	var ok bool
	action := models.AuditActionTimetableUndo
	if back {
		ok = sess.engine.Undo()
	} else {
		ok = sess.engine.Redo()
		action = models.AuditActionTimetableRedo
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrHistoryExhausted, "nothing to restore")
	}

	s.afterMutation(sess, actor, action, nil)
	view := s.view(sess)
	return &view, nil
}

// Suggest returns resolver suggestions for the running conflict at a
// cell, optionally narrowed by conflict type.
func (s *TimetableService) Suggest(ctx context.Context, key models.TimetableKey, req dto.SuggestRequest) ([]timetable.Suggestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggest payload")
	}

	sess, err := s.session(ctx, key)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	for _, conflict := range sess.engine.Conflicts() {
		if conflict.Day != req.Day || conflict.Slot != req.Slot {
			continue
		}
		if req.Type != "" && string(conflict.Type) != req.Type {
			continue
		}
		return sess.engine.Suggest(conflict, sess.rooms, sess.faculty), nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "no conflict at cell")
}

// ApplySuggestion commits one resolver suggestion.
func (s *TimetableService) ApplySuggestion(ctx context.Context, key models.TimetableKey, actor string, req dto.ApplySuggestionRequest) (*dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion payload")
	}

	sess, err := s.session(ctx, key)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	suggestion := timetable.Suggestion{
		Kind:       timetable.SuggestionKind(req.Kind),
		Day:        req.Day,
		Slot:       req.Slot,
		TargetDay:  req.TargetDay,
		TargetSlot: req.TargetSlot,
	}
	if req.RoomID != "" {
		room := s.roomByID(sess, req.RoomID)
		suggestion.Room = &room
	}
	if req.FacultyID != "" {
		for i := range sess.faculty {
			if sess.faculty[i].ID == req.FacultyID {
				suggestion.Faculty = &sess.faculty[i]
				break
			}
		}
		if suggestion.Faculty == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
	}

	if err := sess.engine.ApplySuggestion(suggestion); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "suggestion could not be applied")
	}

	s.metrics.ObservePlacement(timetable.ActionSuggestion, true)
	s.afterMutation(sess, actor, models.AuditActionApplyFix, map[string]string{"kind": req.Kind, "day": req.Day, "slot": req.Slot})
	view := s.view(sess)
	return &view, nil
}

// AutoArrange greedily places a batch's remaining course sessions.
func (s *TimetableService) AutoArrange(ctx context.Context, key models.TimetableKey, actor string, req dto.AutoArrangeRequest) (*dto.AutoArrangeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid auto-arrange payload")
	}

	catalog, err := s.courses.ListByBatch(ctx, req.BatchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch courses")
	}

	sess, err := s.session(ctx, key)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	pending := pendingSessions(catalog, sess.engine.Grid())
	result := sess.engine.AutoArrange(pending, req.DayOrder)

	s.metrics.ObservePlacement(timetable.ActionAutoArrange, len(result.Placed) > 0)
	if len(result.Placed) > 0 {
		s.afterMutation(sess, actor, models.AuditActionAutoArrange, map[string]string{"batch": req.BatchID})
	}
	return &dto.AutoArrangeResponse{Placed: result.Placed, Unplaced: result.Unplaced, Session: s.view(sess)}, nil
}

// Save persists the session snapshot synchronously.
func (s *TimetableService) Save(ctx context.Context, key models.TimetableKey, actor string) error {
	sess, err := s.session(ctx, key)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	snapshot, err := s.snapshot(sess, actor)
	sess.mu.Unlock()
	if err != nil {
		return err
	}

	started := time.Now()
	if err := s.store.Save(ctx, snapshot); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save timetable")
	}
	s.metrics.ObserveSave(time.Since(started))

	if s.audit != nil {
		s.audit.Record(AuditEvent{
			UserID:     actor,
			Action:     models.AuditActionTimetableSave,
			Resource:   "timetables",
			ResourceID: key.String(),
		})
	}
	return nil
}

// ValidateIndex runs the session index diagnostic, rebuilding on
// divergence.
func (s *TimetableService) ValidateIndex(ctx context.Context, key models.TimetableKey) (*dto.IndexDiagnostics, error) {
	sess, err := s.session(ctx, key)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	discrepancies := sess.engine.ValidateIndex()
	return &dto.IndexDiagnostics{Healthy: len(discrepancies) == 0, Discrepancies: discrepancies}, nil
}

// Delete removes the stored snapshot and drops the live session.
func (s *TimetableService) Delete(ctx context.Context, key models.TimetableKey) error {
	if err := key.Validate(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable key")
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	s.dropSession(key)
	return nil
}

// Shutdown closes pub/sub subscriptions for every open session.
func (s *TimetableService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, sess := range s.sessions {
		if sess.unsubscribe != nil {
			sess.unsubscribe()
		}
		delete(s.sessions, name)
	}
	s.metrics.SetOpenSessions(0)
}

// session returns the live session for key, creating it from the stored
// snapshot on first access or after a remote update marked it stale.
func (s *TimetableService) session(ctx context.Context, key models.TimetableKey) (*timetableSession, error) {
	if err := key.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable key")
	}

	name := key.String()
	s.mu.Lock()
	if sess, ok := s.sessions[name]; ok && !sess.stale.Load() {
		s.mu.Unlock()
		return sess, nil
	}
	if old, ok := s.sessions[name]; ok {
		if old.unsubscribe != nil {
			old.unsubscribe()
		}
		delete(s.sessions, name)
	}
	s.mu.Unlock()

	sess, err := s.openSession(ctx, key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if existing, ok := s.sessions[name]; ok && !existing.stale.Load() {
		// Another request opened it first; discard ours.
		s.mu.Unlock()
		if sess.unsubscribe != nil {
			sess.unsubscribe()
		}
		return existing, nil
	}
	s.sessions[name] = sess
	s.metrics.SetOpenSessions(len(s.sessions))
	s.mu.Unlock()
	return sess, nil
}

func (s *TimetableService) openSession(ctx context.Context, key models.TimetableKey) (*timetableSession, error) {
	grid := timetable.NewGrid(s.cfg.Calendar)
	var savedAt time.Time

	snapshot, err := s.store.Load(ctx, key)
	switch {
	case err == nil:
		decoded, decodeErr := timetable.DecodeGrid(s.cfg.Calendar, snapshot.Grid)
		if decodeErr != nil {
			return nil, appErrors.Wrap(decodeErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored timetable is malformed")
		}
		grid = decoded
		savedAt = snapshot.SavedAt
	case errors.Is(err, appErrors.ErrNotFound):
		// First open; start from an empty grid.
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	rooms, err := s.roomRepo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room directory")
	}
	faculty, err := s.facRepo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty directory")
	}

	engineRooms := make([]timetable.Room, 0, len(rooms))
	for _, r := range rooms {
		engineRooms = append(engineRooms, roomToEngine(r))
	}
	engineFaculty := make([]timetable.Faculty, 0, len(faculty))
	for _, f := range faculty {
		ef, convErr := facultyToEngine(f)
		if convErr != nil {
			s.logger.Sugar().Warnw("skipping faculty with malformed availability", "faculty", f.ID, "error", convErr)
			continue
		}
		engineFaculty = append(engineFaculty, ef)
	}

	sess := &timetableSession{
		key:     key,
		engine:  timetable.NewEngine(grid, timetable.NewDirectory(engineRooms, engineFaculty), s.cfg.Engine),
		rooms:   engineRooms,
		faculty: engineFaculty,
		savedAt: savedAt,
	}

	unsubscribe, err := s.store.Subscribe(context.Background(), key, func(remote *models.TimetableSnapshot) {
		if remote.Origin == s.instanceID {
			return
		}
		sess.stale.Store(true)
		s.logger.Sugar().Infow("timetable updated remotely, session marked stale", "key", key.String())
	})
	if err != nil {
		s.logger.Sugar().Warnw("timetable subscription failed", "key", key.String(), "error", err)
	} else {
		sess.unsubscribe = unsubscribe
	}
	return sess, nil
}

func (s *TimetableService) dropSession(key models.TimetableKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[key.String()]; ok {
		if sess.unsubscribe != nil {
			sess.unsubscribe()
		}
		delete(s.sessions, key.String())
		s.metrics.SetOpenSessions(len(s.sessions))
	}
}

// afterMutation records audit, refreshes the conflict gauge and kicks a
// background save. Callers hold the session lock.
func (s *TimetableService) afterMutation(sess *timetableSession, actor, action string, detail map[string]string) {
	name := sess.key.String()
	s.metrics.SetConflicts(name, len(sess.engine.Conflicts()))

	if s.audit != nil {
		s.audit.Record(AuditEvent{
			UserID:     actor,
			Action:     action,
			Resource:   "timetables",
			ResourceID: name,
			Detail:     detail,
		})
	}

	snapshot, err := s.snapshot(sess, actor)
	if err != nil {
		s.logger.Sugar().Errorw("snapshot for background save failed", "key", name, "error", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SaveTimeout)
		defer cancel()
		started := time.Now()
		if err := s.store.Save(ctx, snapshot); err != nil {
			s.logger.Sugar().Errorw("background timetable save failed", "key", name, "error", err)
			return
		}
		s.metrics.ObserveSave(time.Since(started))
	}()
}

// snapshot marshals the current grid. Callers hold the session lock.
func (s *TimetableService) snapshot(sess *timetableSession, actor string) (*models.TimetableSnapshot, error) {
	raw, err := json.Marshal(sess.engine.Grid())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode grid")
	}
	now := time.Now().UTC()
	sess.savedAt = now
	return &models.TimetableSnapshot{
		Key:       sess.key,
		Grid:      raw,
		SavedBy:   actor,
		Origin:    s.instanceID,
		SavedAt:   now,
		Conflicts: len(sess.engine.Conflicts()),
	}, nil
}

// view renders the session state. Callers hold the session lock.
func (s *TimetableService) view(sess *timetableSession) dto.SessionView {
	raw, err := json.Marshal(sess.engine.Grid())
	if err != nil {
		s.logger.Sugar().Errorw("grid encoding failed", "key", sess.key.String(), "error", err)
		raw = []byte("{}")
	}
	view := dto.SessionView{
		Key:       sess.key.String(),
		Grid:      raw,
		Conflicts: sess.engine.Conflicts(),
		CanUndo:   sess.engine.History().CanUndo(),
		CanRedo:   sess.engine.History().CanRedo(),
		Phase:     sess.engine.Phase(),
	}
	if !sess.savedAt.IsZero() {
		view.SavedAt = sess.savedAt.Format(time.RFC3339)
	}
	return view
}

func (s *TimetableService) roomByID(sess *timetableSession, id string) timetable.Room {
	for _, r := range sess.rooms {
		if r.ID == id {
			return r
		}
	}
	return timetable.Room{ID: id, Name: id}
}

// pendingSessions expands each catalog course into its remaining weekly
// sessions, subtracting what the grid already carries.
func pendingSessions(catalog []models.CourseDetail, grid timetable.Grid) []timetable.Course {
	placed := make(map[string]int)
	for _, a := range grid.Assignments() {
		placed[a.Code]++
	}

	var out []timetable.Course
	for _, detail := range catalog {
		course := courseDetailToEngine(detail)
		duration := course.Duration
		if duration < 1 {
			duration = 1
		}
		sessions := detail.WeeklyHours / duration
		if sessions < 1 {
			sessions = 1
		}
		for i := placed[course.Code]; i < sessions; i++ {
			out = append(out, course)
		}
	}
	return out
}

func courseFromPayload(p dto.CoursePayload) timetable.Course {
	return timetable.Course{
		Code:               p.Code,
		Title:              p.Title,
		WeeklyHours:        p.WeeklyHours,
		Duration:           p.Duration,
		FacultyID:          p.FacultyID,
		FacultyName:        p.FacultyName,
		BatchID:            p.BatchID,
		BatchSize:          p.BatchSize,
		RequiredFacilities: p.RequiredFacilities,
	}
}

func courseDetailToEngine(d models.CourseDetail) timetable.Course {
	course := timetable.Course{
		Code:               d.Code,
		Title:              d.Title,
		WeeklyHours:        strconv.Itoa(d.WeeklyHours),
		Duration:           d.Duration,
		RequiredFacilities: d.RequiredFacilities,
	}
	if d.FacultyID != nil {
		course.FacultyID = *d.FacultyID
	}
	if d.FacultyName != nil {
		course.FacultyName = *d.FacultyName
	}
	if d.BatchID != nil {
		course.BatchID = *d.BatchID
	}
	if d.BatchSize != nil {
		course.BatchSize = *d.BatchSize
	}
	return course
}

func roomToEngine(r models.Room) timetable.Room {
	return timetable.Room{
		ID:         r.ID,
		Name:       r.Name,
		Capacity:   r.Capacity,
		Type:       r.Type,
		Facilities: r.Facilities,
	}
}

func facultyToEngine(f models.Faculty) (timetable.Faculty, error) {
	slots, err := f.AvailabilitySlots()
	if err != nil {
		return timetable.Faculty{}, err
	}
	availability := make([]timetable.CellRef, 0, len(slots))
	for _, slot := range slots {
		availability = append(availability, timetable.CellRef{Day: slot.Day, Slot: slot.Slot})
	}
	return timetable.Faculty{
		ID:           f.ID,
		Name:         f.Name,
		Department:   f.Department,
		Availability: availability,
		MaxWeekly:    f.MaxWeekly,
	}, nil
}
