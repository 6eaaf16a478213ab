// Package http exposes the dispatch engine's REST API: order submission and
// cancellation, courier offer responses, courier heartbeats, and the
// outstanding offer poll.
package http

import (
	"errors"
	"net/http"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the JSON error body returned on failures.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SubmitAssignmentRequest is the body of an order submission.
type SubmitAssignmentRequest struct {
	Priority int `json:"priority"`
}

// OfferResponseRequest identifies the courier answering an offer.
type OfferResponseRequest struct {
	CourierID string `json:"courierId"`
}

// HeartbeatRequest is a courier location heartbeat.
type HeartbeatRequest struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	MaxRadiusKm float64 `json:"maxRadiusKm"`
}

// Offer is the JSON view of an outstanding offer.
type Offer struct {
	OrderID   string    `json:"orderId"`
	PickupLat float64   `json:"pickupLat"`
	PickupLng float64   `json:"pickupLng"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	submitHandler commands.SubmitForAssignmentCommandHandler
	acceptHandler commands.AcceptOfferCommandHandler
	rejectHandler commands.RejectOfferCommandHandler
	cancelHandler commands.CancelAssignmentCommandHandler

	// Query handlers
	outstandingOfferHandler queries.GetOutstandingOfferQueryHandler

	// Courier heartbeats go straight to the in-memory registry.
	locations ports.CourierLocationSource
}

// NewServer creates a new HTTP server with the required command and query
// handlers.
func NewServer(
	submitHandler commands.SubmitForAssignmentCommandHandler,
	acceptHandler commands.AcceptOfferCommandHandler,
	rejectHandler commands.RejectOfferCommandHandler,
	cancelHandler commands.CancelAssignmentCommandHandler,
	outstandingOfferHandler queries.GetOutstandingOfferQueryHandler,
	locations ports.CourierLocationSource,
) *Server {
	return &Server{
		submitHandler:           submitHandler,
		acceptHandler:           acceptHandler,
		rejectHandler:           rejectHandler,
		cancelHandler:           cancelHandler,
		outstandingOfferHandler: outstandingOfferHandler,
		locations:               locations,
	}
}

// RegisterRoutes attaches the API to an echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders/:orderId/assignment", s.SubmitForAssignment)
	api.DELETE("/orders/:orderId/assignment", s.CancelAssignment)
	api.POST("/orders/:orderId/offer/accept", s.AcceptOffer)
	api.POST("/orders/:orderId/offer/reject", s.RejectOffer)

	api.GET("/couriers/:courierId/offer", s.GetOutstandingOffer)
	api.POST("/couriers/:courierId/heartbeat", s.Heartbeat)
	api.DELETE("/couriers/:courierId/location", s.SignOff)
}

// SubmitForAssignment handles POST /api/v1/orders/:orderId/assignment.
func (s *Server) SubmitForAssignment(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	var req SubmitAssignmentRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewSubmitForAssignmentCommand(orderID, req.Priority)
	if err != nil {
		return badRequest(ctx, "Invalid submission: "+err.Error())
	}

	err = s.submitHandler.Handle(ctx.Request().Context(), cmd)
	if errors.Is(err, commands.ErrOrderNotAssignable) {
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: "Order is not assignable",
		})
	}
	if err != nil {
		return internalError(ctx, "Failed to submit order")
	}

	return ctx.NoContent(http.StatusAccepted)
}

// CancelAssignment handles DELETE /api/v1/orders/:orderId/assignment.
func (s *Server) CancelAssignment(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID")
	}

	cmd, err := commands.NewCancelAssignmentCommand(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid cancellation: "+err.Error())
	}

	if err = s.cancelHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return internalError(ctx, "Failed to cancel assignment")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AcceptOffer handles POST /api/v1/orders/:orderId/offer/accept.
func (s *Server) AcceptOffer(ctx echo.Context) error {
	orderID, courierID, err := s.bindOfferResponse(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewAcceptOfferCommand(orderID, courierID)
	if err != nil {
		return badRequest(ctx, "Invalid acceptance: "+err.Error())
	}

	err = s.acceptHandler.Handle(ctx.Request().Context(), cmd)
	switch {
	case errors.Is(err, assignment.ErrNoOutstandingOffer):
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: "No outstanding offer for this courier",
		})
	case errors.Is(err, assignment.ErrOfferExpired):
		return ctx.JSON(http.StatusGone, Error{
			Code:    http.StatusGone,
			Message: "Offer has expired",
		})
	case errors.Is(err, commands.ErrAssignmentConflict):
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: "Order was assigned to another courier",
		})
	case err != nil:
		return internalError(ctx, "Failed to accept offer")
	}

	return ctx.NoContent(http.StatusOK)
}

// RejectOffer handles POST /api/v1/orders/:orderId/offer/reject.
func (s *Server) RejectOffer(ctx echo.Context) error {
	orderID, courierID, err := s.bindOfferResponse(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewRejectOfferCommand(orderID, courierID)
	if err != nil {
		return badRequest(ctx, "Invalid rejection: "+err.Error())
	}

	err = s.rejectHandler.Handle(ctx.Request().Context(), cmd)
	if errors.Is(err, assignment.ErrNoOutstandingOffer) {
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: "No outstanding offer for this courier",
		})
	}
	if err != nil {
		return internalError(ctx, "Failed to reject offer")
	}

	return ctx.NoContent(http.StatusOK)
}

// GetOutstandingOffer handles GET /api/v1/couriers/:courierId/offer.
func (s *Server) GetOutstandingOffer(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("courierId"))
	if err != nil {
		return badRequest(ctx, "Invalid courier ID")
	}

	query, err := queries.NewGetOutstandingOfferQuery(courierID)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	offer, err := s.outstandingOfferHandler.Handle(ctx.Request().Context(), query)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: "No outstanding offer",
		})
	}
	if err != nil {
		return internalError(ctx, "Failed to retrieve offer")
	}

	return ctx.JSON(http.StatusOK, Offer{
		OrderID:   offer.OrderID.String(),
		PickupLat: offer.Pickup.Latitude(),
		PickupLng: offer.Pickup.Longitude(),
		ExpiresAt: offer.ExpiresAt,
	})
}

// Heartbeat handles POST /api/v1/couriers/:courierId/heartbeat.
func (s *Server) Heartbeat(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("courierId"))
	if err != nil {
		return badRequest(ctx, "Invalid courier ID")
	}

	var req HeartbeatRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	location, err := kernel.NewGeoPoint(req.Lat, req.Lng)
	if err != nil {
		return badRequest(ctx, "Invalid location: "+err.Error())
	}

	entry, err := courier.NewActiveCourier(courierID, location, req.MaxRadiusKm, time.Now().UTC())
	if err != nil {
		return badRequest(ctx, "Invalid heartbeat: "+err.Error())
	}

	if err = s.locations.UpdateLocation(ctx.Request().Context(), entry); err != nil {
		return internalError(ctx, "Failed to record heartbeat")
	}

	return ctx.NoContent(http.StatusOK)
}

// SignOff handles DELETE /api/v1/couriers/:courierId/location.
func (s *Server) SignOff(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("courierId"))
	if err != nil {
		return badRequest(ctx, "Invalid courier ID")
	}

	if err = s.locations.Remove(ctx.Request().Context(), courierID); err != nil {
		return internalError(ctx, "Failed to remove courier")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// bindOfferResponse extracts the order ID path parameter and courier ID body
// shared by the accept and reject endpoints.
func (s *Server) bindOfferResponse(ctx echo.Context) (kernel.UUID, kernel.UUID, error) {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, errors.New("invalid order ID")
	}

	var req OfferResponseRequest
	if err = ctx.Bind(&req); err != nil {
		return kernel.UUID{}, kernel.UUID{}, errors.New("invalid request body")
	}

	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, errors.New("invalid courier ID")
	}

	return orderID, courierID, nil
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func internalError(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusInternalServerError, Error{
		Code:    http.StatusInternalServerError,
		Message: message,
	})
}
