// Package service contains the business rules for the approval workflow.
package service

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"opsdesk/internal/middleware"
	"opsdesk/internal/models"
	"opsdesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Dispatcher is the outbound notification collaborator. Delivery and retry
// semantics are its own concern; the service treats every call as
// fire-and-forget.
type Dispatcher interface {
	PublishApprovalEvent(ctx context.Context, req *models.ApprovalRequest, event models.ApprovalEvent) error
}

// SubmitInput carries a validated-on-entry submission from the HTTP surface.
type SubmitInput struct {
	Action        models.ApprovalAction
	ResourceID    string
	Region        string
	RequestedBy   string
	ReviewerEmail string
	Details       map[string]interface{}
}

// ApprovalService enforces the request lifecycle: the duplicate-pending
// invariant on submit and the pending-only transition rule on resolve.
type ApprovalService struct {
	repo            repository.ApprovalRepository
	dispatcher      Dispatcher
	defaultReviewer string

	// mu guards keys; each (resourceID, action) pair gets its own lock so
	// the check-then-insert in Submit is atomic per target.
	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

// NewApprovalService returns a new ApprovalService. dispatcher may be nil,
// in which case no notifications are published.
func NewApprovalService(repo repository.ApprovalRepository, dispatcher Dispatcher, defaultReviewer string) *ApprovalService {
	return &ApprovalService{
		repo:            repo,
		dispatcher:      dispatcher,
		defaultReviewer: defaultReviewer,
		keys:            make(map[string]*sync.Mutex),
	}
}

func (s *ApprovalService) targetLock(resourceID string, action models.ApprovalAction) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := resourceID + "|" + string(action)
	l, ok := s.keys[key]
	if !ok {
		l = &sync.Mutex{}
		s.keys[key] = l
	}
	return l
}

// Submit validates the input, enforces the one-pending-per-target rule and
// persists a new pending request. A failed submit leaves no record behind.
func (s *ApprovalService) Submit(ctx context.Context, input SubmitInput) (*models.ApprovalRequest, error) {
	if !input.Action.Valid() {
		return nil, models.NewValidationError("Unknown action: " + string(input.Action))
	}
	if strings.TrimSpace(input.ResourceID) == "" {
		return nil, models.NewValidationError("Resource ID is required")
	}
	if strings.TrimSpace(input.Region) == "" {
		return nil, models.NewValidationError("Region is required")
	}
	if strings.TrimSpace(input.RequestedBy) == "" {
		return nil, models.NewValidationError("Requester identifier is required")
	}

	lock := s.targetLock(input.ResourceID, input.Action)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.repo.FindPendingFor(ctx, input.ResourceID, input.Action)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewDuplicatePendingError(input.ResourceID, input.Action)
	}

	reviewer := input.ReviewerEmail
	if reviewer == "" {
		reviewer = s.defaultReviewer
	}

	req := &models.ApprovalRequest{
		ID:            uuid.NewString(),
		Action:        input.Action,
		ResourceID:    input.ResourceID,
		Region:        input.Region,
		RequestedBy:   input.RequestedBy,
		ReviewerEmail: reviewer,
		Details:       datatypes.JSONMap(input.Details),
		Status:        models.ApprovalStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.dispatch(ctx, req, models.EventCreated)
	return req, nil
}

// ListPending returns pending requests, oldest first.
func (s *ApprovalService) ListPending(ctx context.Context) ([]models.ApprovalRequest, error) {
	return s.repo.ListPending(ctx)
}

// Resolve transitions a pending request to approved or rejected. A replayed
// resolution on the same id fails with ALREADY_RESOLVED rather than being
// silently accepted.
func (s *ApprovalService) Resolve(ctx context.Context, id string, outcome models.ApprovalStatus) (*models.ApprovalRequest, error) {
	if outcome != models.ApprovalStatusApproved && outcome != models.ApprovalStatusRejected {
		return nil, models.NewValidationError("Outcome must be approved or rejected")
	}

	affected, err := s.repo.ResolveIfPending(ctx, id, outcome, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Lost the race or the id is unknown; re-read to tell the two apart.
		req, getErr := s.repo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, models.NewAlreadyResolvedError(id, req.Status)
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	event := models.EventApproved
	if outcome == models.ApprovalStatusRejected {
		event = models.EventRejected
	}
	s.dispatch(ctx, req, event)

	return req, nil
}

// ListApproved returns approved requests not yet consumed by the executor,
// in resolution order.
func (s *ApprovalService) ListApproved(ctx context.Context) ([]models.ApprovalRequest, error) {
	return s.repo.ListApproved(ctx)
}

// PopApproved hands an approved request to the action executor exactly once.
// The record stays in the store for audit; only its queue membership ends.
func (s *ApprovalService) PopApproved(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	affected, err := s.repo.MarkConsumed(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		req, getErr := s.repo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if req.Status == models.ApprovalStatusApproved && req.ConsumedAt != nil {
			return nil, models.NewAlreadyConsumedError(id)
		}
		return nil, models.NewValidationError("Request is not in the approved queue")
	}
	return s.repo.GetByID(ctx, id)
}

// dispatch publishes a lifecycle event without blocking the caller. A
// notification failure never fails the submit/resolve that triggered it.
func (s *ApprovalService) dispatch(ctx context.Context, req *models.ApprovalRequest, event models.ApprovalEvent) {
	if s.dispatcher == nil {
		return
	}

	// Detach from the request context so an early client disconnect does not
	// cancel the publish.
	bg := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				middleware.Logger.Error("panic in approval dispatch",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		if err := s.dispatcher.PublishApprovalEvent(bg, req, event); err != nil {
			middleware.Logger.ErrorContext(bg, "approval notification failed",
				slog.String("request_id", req.ID),
				slog.String("event", string(event)),
				slog.String("error", err.Error()),
			)
		}
	}()
}
