package gateway

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hilthontt/embermud/internal/infrastructure/json"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
	"github.com/hilthontt/embermud/internal/infrastructure/validate"
	"github.com/hilthontt/embermud/internal/infrastructure/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	core   *ws.Core
	logger logging.Logger
}

func NewHandler(core *ws.Core, logger logging.Logger) *Handler {
	return &Handler{
		core:   core,
		logger: logger,
	}
}

// ConnectHandler upgrades the request to a websocket session and registers
// the client with the event core. Query parameters: name (required character
// name), room (optional initial room id).
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if err := validate.CharacterName()(name); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	var roomID *int64
	if raw := r.URL.Query().Get("room"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			json.WriteError(w, http.StatusBadRequest, "room must be an integer")
			return
		}
		roomID = &id
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the failure response.
		h.logger.Warn(logging.WebSocket, logging.ExternalService, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(conn, uuid.NewString(), name, roomID)
	h.core.Register() <- client

	go client.WritePump()
	go client.ReadPump(h.core)
}
