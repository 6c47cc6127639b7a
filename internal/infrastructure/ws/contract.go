package ws

import "github.com/hilthontt/embermud/internal/domain"

// ServerFrame is the outbound wire shape. Event frames carry the typed game
// event; its variant tag rides inside the body.
type ServerFrame struct {
	Type   string `json:"type"`
	RoomID *int64 `json:"roomId,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	RoomID   *int64 `json:"roomId,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ClientFrame is the inbound command shape: movement and speech. Everything
// else the game can do arrives through domain services, not this gateway.
type ClientFrame struct {
	Type   string `json:"type"`
	RoomID int64  `json:"roomId,omitempty"`
	Text   string `json:"text,omitempty"`
}

func NewWelcome(clientID, name string, roomID *int64) *ServerFrame {
	return &ServerFrame{
		Type: FrameWelcome,
		Data: WelcomePayload{
			ClientID: clientID,
			Name:     name,
			RoomID:   roomID,
		},
	}
}

func NewEventFrame(ev domain.GameEvent) *ServerFrame {
	return &ServerFrame{
		Type:   FrameEvent,
		RoomID: ev.Meta().RoomID,
		Data:   ev,
	}
}

func NewErrorFrame(code, message string) *ServerFrame {
	return &ServerFrame{
		Type: FrameError,
		Data: ErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}
