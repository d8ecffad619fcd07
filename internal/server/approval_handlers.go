package server

import (
	"opsdesk/internal/middleware"
	"opsdesk/internal/models"
	"opsdesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitRequestBody is the payload for POST /api/approvals/request
type SubmitRequestBody struct {
	Action        string                 `json:"action"`
	ResourceID    string                 `json:"resource_id"`
	Region        string                 `json:"region"`
	RequestedBy   string                 `json:"requested_by"`
	ReviewerEmail string                 `json:"reviewer_email"`
	Details       map[string]interface{} `json:"details"`
}

// SubmitApprovalRequest handles POST /api/approvals/request
func (s *Server) SubmitApprovalRequest(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var body SubmitRequestBody
	if err := c.BodyParser(&body); err != nil {
		middleware.ApprovalSubmissions.WithLabelValues("invalid").Inc()
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req, err := s.approvalService.Submit(ctx, service.SubmitInput{
		Action:        models.ApprovalAction(body.Action),
		ResourceID:    body.ResourceID,
		Region:        body.Region,
		RequestedBy:   body.RequestedBy,
		ReviewerEmail: body.ReviewerEmail,
		Details:       body.Details,
	})
	if err != nil {
		middleware.ApprovalSubmissions.WithLabelValues(errorResult(err)).Inc()
		return respondServiceError(c, err)
	}

	middleware.ApprovalSubmissions.WithLabelValues("created").Inc()
	return c.Status(fiber.StatusCreated).JSON(req)
}

// GetPendingApprovals handles GET /api/approvals/pending
func (s *Server) GetPendingApprovals(c *fiber.Ctx) error {
	ctx := c.UserContext()

	requests, err := s.approvalService.ListPending(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"requests": requests})
}

// ApproveRequest handles GET/POST /api/approvals/:id/approve
func (s *Server) ApproveRequest(c *fiber.Ctx) error {
	return s.resolveRequest(c, models.ApprovalStatusApproved)
}

// RejectRequest handles POST /api/approvals/:id/reject
func (s *Server) RejectRequest(c *fiber.Ctx) error {
	return s.resolveRequest(c, models.ApprovalStatusRejected)
}

func (s *Server) resolveRequest(c *fiber.Ctx, outcome models.ApprovalStatus) error {
	ctx := c.UserContext()
	id, err := s.parseRequestID(c)
	if err != nil {
		return nil
	}

	req, err := s.approvalService.Resolve(ctx, id, outcome)
	if err != nil {
		middleware.ApprovalResolutions.WithLabelValues(string(outcome), errorResult(err)).Inc()
		return respondServiceError(c, err)
	}

	middleware.ApprovalResolutions.WithLabelValues(string(outcome), "resolved").Inc()
	return c.JSON(req)
}

// GetApprovedQueue handles GET /api/approvals/approved. The action executor
// polls this to learn which actions it is now permitted to run.
func (s *Server) GetApprovedQueue(c *fiber.Ctx) error {
	ctx := c.UserContext()

	requests, err := s.approvalService.ListApproved(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"requests": requests})
}

// PopApprovedRequest handles DELETE /api/approvals/approved/:id. The record
// is retained for audit; it only leaves the executor queue.
func (s *Server) PopApprovedRequest(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseRequestID(c)
	if err != nil {
		return nil
	}

	req, err := s.approvalService.PopApproved(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Approved request removed from queue",
		"request": req,
	})
}
