package http

import "time"

// ChangeOrderStatusRequest is the body of POST /api/v1/orders/:id/status.
type ChangeOrderStatusRequest struct {
	Status                string     `json:"status"`
	Note                  string     `json:"note,omitempty"`
	Reason                string     `json:"reason,omitempty"`
	NotifyCustomer        bool       `json:"notifyCustomer,omitempty"`
	EstimatedDeliveryDate *time.Time `json:"estimatedDeliveryDate,omitempty"`
}

// HistoryEntry is one status history entry in a response payload.
type HistoryEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// Timestamps groups the derived lifecycle timestamps written as side effects
// of transitions. Only timestamps the order has actually reached are present.
type Timestamps struct {
	ConfirmedAt            *time.Time `json:"confirmedAt,omitempty"`
	ProcessingStartedAt    *time.Time `json:"processingStartedAt,omitempty"`
	ManufacturingStartedAt *time.Time `json:"manufacturingStartedAt,omitempty"`
	ReadyToShipAt          *time.Time `json:"readyToShipAt,omitempty"`
	ShippedAt              *time.Time `json:"shippedAt,omitempty"`
	EstimatedDelivery      *time.Time `json:"estimatedDelivery,omitempty"`
	OutForDeliveryAt       *time.Time `json:"outForDeliveryAt,omitempty"`
	InTransitAt            *time.Time `json:"inTransitAt,omitempty"`
	DeliveredAt            *time.Time `json:"deliveredAt,omitempty"`
	ActualDelivery         *time.Time `json:"actualDelivery,omitempty"`
	CompletedAt            *time.Time `json:"completedAt,omitempty"`
	CancelledAt            *time.Time `json:"cancelledAt,omitempty"`
	RefundedAt             *time.Time `json:"refundedAt,omitempty"`
	DisputedAt             *time.Time `json:"disputedAt,omitempty"`
}

// PaymentInfo is the derived payment state of the order.
type PaymentInfo struct {
	Status     string     `json:"status"`
	PaidDate   *time.Time `json:"paidDate,omitempty"`
	RefundDate *time.Time `json:"refundDate,omitempty"`
}

// AnalyticsInfo holds the timing figures derived from the order's creation
// time, in whole hours.
type AnalyticsInfo struct {
	DeliveryTimeHours   *int64 `json:"deliveryTimeHours,omitempty"`
	ProcessingTimeHours *int64 `json:"processingTimeHours,omitempty"`
}

// ChangeOrderStatusResponse is the success payload of a status change.
type ChangeOrderStatusResponse struct {
	OrderID          string         `json:"orderId"`
	PreviousStatus   string         `json:"previousStatus"`
	Status           string         `json:"status"`
	Version          int            `json:"version"`
	Timestamps       Timestamps     `json:"timestamps"`
	Payment          PaymentInfo    `json:"payment"`
	Analytics        AnalyticsInfo  `json:"analytics"`
	CustomerNotified bool           `json:"customerNotified"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
	History          []HistoryEntry `json:"history"`
}

// GetOrderStatusResponse is the payload of GET /api/v1/orders/:id/status.
type GetOrderStatusResponse struct {
	OrderID     string         `json:"orderId"`
	Status      string         `json:"status"`
	Version     int            `json:"version"`
	IsTerminal  bool           `json:"isTerminal"`
	AllowedNext []string       `json:"allowedNext"`
	History     []HistoryEntry `json:"history"`
}

// OverdueDeliveredOrder is one delivered order waiting past the
// finalization cutoff.
type OverdueDeliveredOrder struct {
	OrderID     string    `json:"orderId"`
	SellerID    string    `json:"sellerId"`
	DeliveredAt time.Time `json:"deliveredAt"`
	Version     int       `json:"version"`
}

// GetOverdueDeliveredOrdersResponse is the payload of
// GET /api/v1/orders/overdue-delivered.
type GetOverdueDeliveredOrdersResponse struct {
	Cutoff time.Time               `json:"cutoff"`
	Orders []OverdueDeliveredOrder `json:"orders"`
}

// Error is the error payload of every non-2xx response. Rejected transitions
// carry the order's authoritative state so a client can reconcile its local
// view without a separate read.
type Error struct {
	Code           int      `json:"code"`
	Message        string   `json:"message"`
	CurrentStatus  string   `json:"currentStatus,omitempty"`
	CurrentVersion *int     `json:"currentVersion,omitempty"`
	AllowedNext    []string `json:"allowedNext,omitempty"`
}
