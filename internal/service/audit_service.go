package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/acadgrid/timetable-api/internal/models"
	"github.com/acadgrid/timetable-api/pkg/jobs"
)

type auditRepository interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error)
}

// AuditEvent is the payload carried through the audit queue.
type AuditEvent struct {
	UserID     string      `json:"user_id,omitempty"`
	Action     string      `json:"action"`
	Resource   string      `json:"resource"`
	ResourceID string      `json:"resource_id,omitempty"`
	Detail     interface{} `json:"detail,omitempty"`
	IPAddress  string      `json:"ip_address,omitempty"`
	UserAgent  string      `json:"user_agent,omitempty"`
}

// AuditService records audit events asynchronously through a worker
// queue so request paths never wait on the audit table.
type AuditService struct {
	repo   auditRepository
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditService constructs the audit service and its backing queue.
func NewAuditService(repo auditRepository, cfg jobs.QueueConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{repo: repo, logger: logger}
	s.queue = jobs.NewQueue("audit", s.handle, cfg)
	return s
}

// Start launches the audit workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// Record enqueues an audit event without blocking the caller.
func (s *AuditService) Record(event AuditEvent) {
	job := jobs.Job{ID: uuid.NewString(), Type: event.Action, Payload: event}
	if !s.queue.TryEnqueue(job) {
		s.logger.Sugar().Warnw("audit event dropped", "action", event.Action, "resource", event.Resource)
	}
}

// List returns stored audit entries with pagination metadata.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return entries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(AuditEvent)
	if !ok {
		s.logger.Sugar().Warnw("unexpected audit payload", "job_id", job.ID)
		return nil
	}

	entry := &models.AuditLog{
		Action:    event.Action,
		Resource:  event.Resource,
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
	}
	if event.UserID != "" {
		entry.UserID = &event.UserID
	}
	if event.ResourceID != "" {
		entry.ResourceID = &event.ResourceID
	}
	if event.Detail != nil {
		detail, err := json.Marshal(event.Detail)
		if err != nil {
			s.logger.Sugar().Warnw("marshal audit detail", "action", event.Action, "error", err)
		} else {
			entry.Detail = detail
		}
	}
	return s.repo.Insert(ctx, entry)
}
