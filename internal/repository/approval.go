// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"opsdesk/internal/models"

	"gorm.io/gorm"
)

// ApprovalRepository defines the interface for approval request data
// operations. It is the exclusive owner of the approval_requests table;
// all mutation funnels through it.
type ApprovalRepository interface {
	Create(ctx context.Context, req *models.ApprovalRequest) error
	GetByID(ctx context.Context, id string) (*models.ApprovalRequest, error)
	ListPending(ctx context.Context) ([]models.ApprovalRequest, error)
	FindPendingFor(ctx context.Context, resourceID string, action models.ApprovalAction) (*models.ApprovalRequest, error)
	ResolveIfPending(ctx context.Context, id string, status models.ApprovalStatus, resolvedAt time.Time) (int64, error)
	ListApproved(ctx context.Context) ([]models.ApprovalRequest, error)
	MarkConsumed(ctx context.Context, id string, consumedAt time.Time) (int64, error)
}

// approvalRepository implements ApprovalRepository
type approvalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &approvalRepository{db: db}
}

func (r *approvalRepository) Create(ctx context.Context, req *models.ApprovalRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Ids are UUIDs; a collision means the caller reused one.
			return models.NewInternalError(err)
		}
		return models.NewStoreUnavailableError(err)
	}
	return nil
}

func (r *approvalRepository) GetByID(ctx context.Context, id string) (*models.ApprovalRequest, error) {
	var req models.ApprovalRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Approval request", id)
		}
		return nil, models.NewStoreUnavailableError(err)
	}
	return &req, nil
}

func (r *approvalRepository) ListPending(ctx context.Context) ([]models.ApprovalRequest, error) {
	var reqs []models.ApprovalRequest

	// Deterministic ordering: oldest first, id as tiebreak so concurrent
	// reviewers see the same list across polls.
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.ApprovalStatusPending).
		Order("created_at ASC, id ASC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}

	return reqs, nil
}

func (r *approvalRepository) FindPendingFor(ctx context.Context, resourceID string, action models.ApprovalAction) (*models.ApprovalRequest, error) {
	var req models.ApprovalRequest

	if err := r.db.WithContext(ctx).
		Where("resource_id = ? AND action = ? AND status = ?",
			resourceID, action, models.ApprovalStatusPending).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no pending request for this target
		}
		return nil, models.NewStoreUnavailableError(err)
	}
	return &req, nil
}

// ResolveIfPending transitions the request out of the pending state with a
// conditional update. The status guard makes concurrent resolves of the same
// id yield exactly one winner; callers inspect the affected row count.
func (r *approvalRepository) ResolveIfPending(ctx context.Context, id string, status models.ApprovalStatus, resolvedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ApprovalRequest{}).
		Where("id = ? AND status = ?", id, models.ApprovalStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_at": resolvedAt,
		})
	if res.Error != nil {
		return 0, models.NewStoreUnavailableError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *approvalRepository) ListApproved(ctx context.Context) ([]models.ApprovalRequest, error) {
	var reqs []models.ApprovalRequest

	if err := r.db.WithContext(ctx).
		Where("status = ? AND consumed_at IS NULL", models.ApprovalStatusApproved).
		Order("resolved_at ASC, id ASC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewStoreUnavailableError(err)
	}

	return reqs, nil
}

// MarkConsumed removes an approved request from the executor queue. Same
// conditional-update discipline as ResolveIfPending: a double pop affects
// zero rows.
func (r *approvalRepository) MarkConsumed(ctx context.Context, id string, consumedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ApprovalRequest{}).
		Where("id = ? AND status = ? AND consumed_at IS NULL", id, models.ApprovalStatusApproved).
		Update("consumed_at", consumedAt)
	if res.Error != nil {
		return 0, models.NewStoreUnavailableError(res.Error)
	}
	return res.RowsAffected, nil
}
