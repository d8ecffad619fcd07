package models

import (
	"time"

	"gorm.io/datatypes"
)

// ApprovalAction enumerates the privileged cloud actions that require
// L2 sign-off before the executor may run them.
type ApprovalAction string

const (
	ActionStart     ApprovalAction = "start"
	ActionStop      ApprovalAction = "stop"
	ActionResize    ApprovalAction = "resize"
	ActionTerminate ApprovalAction = "terminate"
	ActionInstall   ApprovalAction = "install"
)

// Valid reports whether the action is one of the recognized values.
func (a ApprovalAction) Valid() bool {
	switch a {
	case ActionStart, ActionStop, ActionResize, ActionTerminate, ActionInstall:
		return true
	}
	return false
}

// ApprovalStatus defines lifecycle states for approval requests.
type ApprovalStatus string

const (
	// ApprovalStatusPending indicates the request is awaiting L2 review.
	ApprovalStatusPending ApprovalStatus = "pending"
	// ApprovalStatusApproved indicates the request was approved. Terminal.
	ApprovalStatusApproved ApprovalStatus = "approved"
	// ApprovalStatusRejected indicates the request was rejected. Terminal.
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// ApprovalEvent names the lifecycle events published to the notification
// dispatcher.
type ApprovalEvent string

const (
	EventCreated  ApprovalEvent = "created"
	EventApproved ApprovalEvent = "approved"
	EventRejected ApprovalEvent = "rejected"
)

// ApprovalRequest is a record authorizing (or denying) a privileged cloud
// action against a single resource. Records are retained for audit and are
// never deleted; an approved record stays in the executor queue until it is
// consumed.
type ApprovalRequest struct {
	ID            string            `gorm:"primaryKey;size:36" json:"request_id"`
	Action        ApprovalAction    `gorm:"type:varchar(20);not null;index:idx_approval_target" json:"action"`
	ResourceID    string            `gorm:"size:120;not null;index:idx_approval_target" json:"resource_id"`
	Region        string            `gorm:"size:40;not null" json:"region"`
	RequestedBy   string            `gorm:"size:120;not null" json:"requested_by"`
	ReviewerEmail string            `gorm:"size:120" json:"reviewer_email,omitempty"`
	Details       datatypes.JSONMap `json:"details"`
	Status        ApprovalStatus    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	ResolvedAt    *time.Time        `json:"resolved_at,omitempty"`
	ConsumedAt    *time.Time        `json:"consumed_at,omitempty"`
}

// TableName overrides the default table name.
func (ApprovalRequest) TableName() string {
	return "approval_requests"
}

// Resolved reports whether the request has left the pending state.
func (r *ApprovalRequest) Resolved() bool {
	return r.Status != ApprovalStatusPending
}
