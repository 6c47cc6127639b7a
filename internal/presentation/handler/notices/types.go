package notices

import "time"

// createNoticeRequest represents a broadcast message from an operator.
type createNoticeRequest struct {
	Message string `json:"message" example:"The server restarts in five minutes." minLength:"1"`
}

// createNoticeResponse confirms the notice was accepted for delivery.
type createNoticeResponse struct {
	EventID    string    `json:"eventId" example:"550e8400-e29b-41d4-a716-446655440000"`
	OccurredAt time.Time `json:"occurredAt" example:"2024-01-01T12:00:00Z"`
}
