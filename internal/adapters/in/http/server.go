// Package http exposes the order lifecycle over a REST API. Handlers
// translate between the wire contract and the application's commands and
// queries; all business rules stay behind the handlers.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// sellerIDHeader carries the acting seller's identity. Authentication sits in
// front of this service; the header is the authenticated principal.
const sellerIDHeader = "X-Seller-ID"

// defaultOverdueHours is the lookback applied when the overdue-delivered
// listing is called without an explicit olderThanHours parameter.
const defaultOverdueHours = 24

// Server implements the HTTP handlers of the order lifecycle API.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	changeOrderStatusHandler       commands.ChangeOrderStatusCommandHandler
	getOrderStatusHandler          queries.GetOrderStatusQueryHandler
	getOverdueDeliveredOrdsHandler queries.GetOverdueDeliveredOrdersQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	changeOrderStatusHandler commands.ChangeOrderStatusCommandHandler,
	getOrderStatusHandler queries.GetOrderStatusQueryHandler,
	getOverdueDeliveredOrdsHandler queries.GetOverdueDeliveredOrdersQueryHandler,
) *Server {
	return &Server{
		changeOrderStatusHandler:       changeOrderStatusHandler,
		getOrderStatusHandler:          getOrderStatusHandler,
		getOverdueDeliveredOrdsHandler: getOverdueDeliveredOrdsHandler,
	}
}

// RegisterRoutes binds the API routes on the given echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/orders/:id/status", s.ChangeOrderStatus)
	e.GET("/api/v1/orders/:id/status", s.GetOrderStatus)
	e.GET("/api/v1/orders/overdue-delivered", s.GetOverdueDeliveredOrders)
}

// ChangeOrderStatus handles POST /api/v1/orders/:id/status - transitions an
// order to a new lifecycle status on behalf of the seller identified by the
// X-Seller-ID header.
func (s *Server) ChangeOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	sellerID, err := kernel.UUIDFromString(ctx.Request().Header.Get(sellerIDHeader))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Missing or invalid " + sellerIDHeader + " header",
		})
	}

	var req ChangeOrderStatusRequest
	if err = ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	requested, err := order.StatusFromString(req.Status)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid status value: " + req.Status,
		})
	}

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, sellerID, requested,
		commands.ChangeOrderStatusOptions{
			Note:                  req.Note,
			Reason:                req.Reason,
			NotifyCustomer:        req.NotifyCustomer,
			EstimatedDeliveryDate: req.EstimatedDeliveryDate,
			SourceIP:              ctx.RealIP(),
			UserAgent:             ctx.Request().UserAgent(),
		})
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid status change request: " + err.Error(),
		})
	}

	result, err := s.changeOrderStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.changeOrderStatusError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ChangeOrderStatusResponse{
		OrderID:          result.Order.ID().String(),
		PreviousStatus:   result.PreviousStatus.String(),
		Status:           result.Order.Status().String(),
		Version:          result.Order.Version(),
		Timestamps:       timestampsFromOrder(result.Order),
		Payment:          paymentFromOrder(result.Order),
		Analytics:        analyticsFromOrder(result.Order),
		CustomerNotified: result.CustomerNotified,
		ProcessingTimeMs: result.ProcessingTimeMs,
		History:          historyFromEntries(result.HistoryTail),
	})
}

// GetOrderStatus handles GET /api/v1/orders/:id/status - reads an order's
// lifecycle state.
func (s *Server) GetOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	query, err := queries.NewGetOrderStatusQuery(orderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid status query: " + err.Error(),
		})
	}

	state, err := s.getOrderStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "Order not found",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to read order status",
		})
	}

	history := make([]HistoryEntry, len(state.RecentHistory))
	for i, entry := range state.RecentHistory {
		history[i] = HistoryEntry{
			Status:    entry.Status,
			Timestamp: entry.Timestamp,
			Actor:     entry.Actor,
			Note:      entry.Note,
			Reason:    entry.Reason,
		}
	}

	return ctx.JSON(http.StatusOK, GetOrderStatusResponse{
		OrderID:     state.OrderID.String(),
		Status:      state.Status,
		Version:     state.Version,
		IsTerminal:  state.IsTerminal,
		AllowedNext: state.AllowedNext,
		History:     history,
	})
}

// GetOverdueDeliveredOrders handles GET /api/v1/orders/overdue-delivered -
// lists delivered orders waiting on finalization longer than olderThanHours
// (default 24). Intended for monitoring the auto-complete backlog.
func (s *Server) GetOverdueDeliveredOrders(ctx echo.Context) error {
	hours := defaultOverdueHours
	if raw := ctx.QueryParam("olderThanHours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return ctx.JSON(http.StatusBadRequest, Error{
				Code:    http.StatusBadRequest,
				Message: "olderThanHours must be a non-negative integer",
			})
		}
		hours = parsed
	}

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	query, err := queries.NewGetOverdueDeliveredOrdersQuery(cutoff)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid overdue orders query: " + err.Error(),
		})
	}

	overdue, err := s.getOverdueDeliveredOrdsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to list overdue delivered orders",
		})
	}

	orders := make([]OverdueDeliveredOrder, len(overdue))
	for i, o := range overdue {
		orders[i] = OverdueDeliveredOrder{
			OrderID:     o.OrderID.String(),
			SellerID:    o.SellerID.String(),
			DeliveredAt: o.DeliveredAt,
			Version:     o.Version,
		}
	}

	return ctx.JSON(http.StatusOK, GetOverdueDeliveredOrdersResponse{
		Cutoff: cutoff,
		Orders: orders,
	})
}

// changeOrderStatusError maps the transition error taxonomy onto HTTP codes:
// unknown order 404, malformed input 400, rejected transitions and lost
// version races 409, storage outages 503.
func (s *Server) changeOrderStatusError(ctx echo.Context, err error) error {
	var rejected *commands.RejectedTransitionError
	if errors.As(err, &rejected) {
		code := http.StatusConflict
		if errors.Is(err, order.ErrCancellationReasonRequired) {
			code = http.StatusBadRequest
		}

		version := rejected.CurrentVersion
		resp := Error{
			Code:           code,
			Message:        rejected.Error(),
			CurrentStatus:  rejected.CurrentStatus.String(),
			CurrentVersion: &version,
		}

		var invalid *order.InvalidTransitionError
		if errors.As(err, &invalid) {
			resp.AllowedNext = make([]string, len(invalid.Allowed))
			for i, s := range invalid.Allowed {
				resp.AllowedNext[i] = s.String()
			}
		}

		return ctx.JSON(code, resp)
	}

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: "Order not found",
		})
	case errors.Is(err, errs.ErrStoreUnavailable):
		return ctx.JSON(http.StatusServiceUnavailable, Error{
			Code:    http.StatusServiceUnavailable,
			Message: "Storage temporarily unavailable",
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to change order status",
		})
	}
}

func timestampsFromOrder(o *order.Order) Timestamps {
	milestones := o.Milestones()
	shipping := o.Shipping()
	return Timestamps{
		ConfirmedAt:            milestones.ConfirmedAt,
		ProcessingStartedAt:    milestones.ProcessingStartedAt,
		ManufacturingStartedAt: milestones.ManufacturingStartedAt,
		ReadyToShipAt:          milestones.ReadyToShipAt,
		ShippedAt:              shipping.ShippedAt,
		EstimatedDelivery:      shipping.EstimatedDelivery,
		OutForDeliveryAt:       shipping.OutForDeliveryAt,
		InTransitAt:            shipping.InTransitAt,
		DeliveredAt:            shipping.DeliveredAt,
		ActualDelivery:         shipping.ActualDelivery,
		CompletedAt:            milestones.CompletedAt,
		CancelledAt:            milestones.CancelledAt,
		RefundedAt:             milestones.RefundedAt,
		DisputedAt:             milestones.DisputedAt,
	}
}

func paymentFromOrder(o *order.Order) PaymentInfo {
	payment := o.Payment()
	return PaymentInfo{
		Status:     payment.Status.String(),
		PaidDate:   payment.PaidDate,
		RefundDate: payment.RefundDate,
	}
}

func analyticsFromOrder(o *order.Order) AnalyticsInfo {
	analytics := o.Analytics()
	return AnalyticsInfo{
		DeliveryTimeHours:   analytics.DeliveryTimeHours,
		ProcessingTimeHours: analytics.ProcessingTimeHours,
	}
}

func historyFromEntries(entries []order.HistoryEntry) []HistoryEntry {
	history := make([]HistoryEntry, len(entries))
	for i, entry := range entries {
		history[i] = HistoryEntry{
			Status:    entry.Status.String(),
			Timestamp: entry.Timestamp,
			Actor:     entry.Actor,
			Note:      entry.Note,
			Reason:    entry.Reason,
		}
	}
	return history
}
