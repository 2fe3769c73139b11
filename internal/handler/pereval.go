package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/fstr-project/pereval-api/internal/dto"
	"github.com/fstr-project/pereval-api/internal/middleware"
	"github.com/fstr-project/pereval-api/internal/model"
	"github.com/fstr-project/pereval-api/internal/server"
	"github.com/fstr-project/pereval-api/internal/service"
	"github.com/labstack/echo/v4"
)

// perevalService is the slice of the pereval service the handlers
// need.
type perevalService interface {
	Submit(ctx context.Context, req *dto.SubmitDataRequest) (int, error)
	Get(ctx context.Context, id int) (*model.PerevalDetail, error)
	Update(ctx context.Context, req *dto.UpdatePerevalRequest) error
	ListByEmail(ctx context.Context, email string) ([]model.PerevalDetail, error)
}

// PerevalHandler serves the /submitData endpoints.
//
// These endpoints keep the legacy mobile-client contract: outcomes
// travel inside response envelopes rather than as bare HTTP errors, so
// service failures are converted to envelope payloads here instead of
// being returned up to the global error handler. Validation errors are
// the exception; they still surface as regular 400 responses.
type PerevalHandler struct {
	Handler
	perevals perevalService
}

// NewPerevalHandler constructs a PerevalHandler.
func NewPerevalHandler(s *server.Server, perevals perevalService) *PerevalHandler {
	return &PerevalHandler{
		Handler:  NewHandler(s),
		perevals: perevals,
	}
}

// SubmitData stores a full pereval submission.
//
// The envelope mirrors its status onto the wire: 200 with the new id
// on success, 500 with a diagnostic message and a null id when any
// persistence step fails.
func (h *PerevalHandler) SubmitData(c echo.Context, req *dto.SubmitDataRequest) (dto.SubmitDataResponse, error) {
	id, err := h.perevals.Submit(c.Request().Context(), req)
	if err != nil {
		middleware.GetLogger(c).Error().Err(err).Msg("pereval submission failed")
		return dto.NewSubmitFailure(fmt.Sprintf("Error while executing operation: %v", err)), nil
	}

	return dto.SubmitDataResponse{
		Status:  200,
		Message: "Pereval successfully created",
		ID:      &id,
	}, nil
}

// GetPereval returns one pereval with its user, coordinates, and
// images. Success responds with the bare record; an unknown id or a
// store failure responds with a status envelope and a matching wire
// status.
func (h *PerevalHandler) GetPereval(c echo.Context, req *dto.GetPerevalRequest) (any, error) {
	detail, err := h.perevals.Get(c.Request().Context(), req.ID)
	if err != nil {
		if errors.Is(err, service.ErrPerevalNotFound) {
			return dto.SubmitDataResponse{Status: 404, Message: "Pereval not found"}, nil
		}
		middleware.GetLogger(c).Error().Err(err).Int("pereval_id", req.ID).Msg("pereval lookup failed")
		return dto.NewSubmitFailure(fmt.Sprintf("Error while executing operation: %v", err)), nil
	}

	return detail, nil
}

// UpdatePereval applies a partial edit to a pereval that is still in
// status "new". The response is always HTTP 200; the outcome travels
// in the state flag (1 on success, 0 otherwise) with a human-readable
// message.
func (h *PerevalHandler) UpdatePereval(c echo.Context, req *dto.UpdatePerevalRequest) (dto.UpdateResponse, error) {
	err := h.perevals.Update(c.Request().Context(), req)
	switch {
	case err == nil:
		return dto.UpdateResponse{State: 1, Message: "Pereval successfully updated"}, nil
	case errors.Is(err, service.ErrPerevalNotFound):
		return dto.UpdateResponse{State: 0, Message: "Pereval not found"}, nil
	case errors.Is(err, service.ErrEditNotAllowed):
		return dto.UpdateResponse{State: 0, Message: "Pereval is no longer editable: status is not 'new'"}, nil
	default:
		middleware.GetLogger(c).Error().Err(err).Int("pereval_id", req.ID).Msg("pereval update failed")
		return dto.UpdateResponse{State: 0, Message: fmt.Sprintf("Error while executing operation: %v", err)}, nil
	}
}

// ListByUserEmail returns every pereval submitted by the user
// registered under the email. A known user with zero passes yields an
// empty array, which is distinct from the 404 envelope for an unknown
// email.
func (h *PerevalHandler) ListByUserEmail(c echo.Context, req *dto.ListPerevalsRequest) (any, error) {
	details, err := h.perevals.ListByEmail(c.Request().Context(), req.UserEmail)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return dto.EmailLookupErrorResponse{
				Status:    404,
				Message:   "User with this email not found",
				UserEmail: req.UserEmail,
			}, nil
		}
		middleware.GetLogger(c).Error().Err(err).Str("user_email", req.UserEmail).Msg("pereval listing failed")
		return dto.EmailLookupErrorResponse{
			Status:    500,
			Message:   fmt.Sprintf("Error while executing operation: %v", err),
			UserEmail: req.UserEmail,
		}, nil
	}

	return details, nil
}
