package ws

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
)

type Client struct {
	conn *connWrapper
	Send chan *ServerFrame

	ID     string
	Name   string
	RoomID *int64
}

func NewClient(conn *websocket.Conn, id, name string, roomID *int64) *Client {
	return &Client{
		conn:   newConnWrapper(conn),
		Send:   make(chan *ServerFrame, 64), // buffered to absorb slow clients
		ID:     id,
		Name:   name,
		RoomID: roomID,
	}
}

// ReadPump parses client commands and hands them to the core until the
// connection drops.
func (c *Client) ReadPump(core *Core) {
	defer func() {
		core.Unregister() <- c
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				core.logger.Warn(logging.WebSocket, logging.ExternalService, "ws read error", map[logging.ExtraKey]any{
					logging.ClientID:     c.ID,
					logging.ErrorMessage: err.Error(),
				})
			}
			break
		}

		var frame ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.trySend(NewErrorFrame("BAD_FRAME", "malformed command"))
			continue
		}

		core.HandleCommand(c, frame)
	}
}

// WritePump drains Send onto the socket.
func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for frame := range c.Send {
		if err := c.conn.WriteJSON(frame); err != nil {
			break
		}
	}
}

// trySend never blocks the caller: a client that cannot drain its buffer
// loses frames rather than wedging the delivery path.
func (c *Client) trySend(frame *ServerFrame) bool {
	select {
	case c.Send <- frame:
		return true
	default:
		return false
	}
}
