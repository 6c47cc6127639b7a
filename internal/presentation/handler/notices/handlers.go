package notices

import (
	"net/http"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/infrastructure/events"
	"github.com/hilthontt/embermud/internal/infrastructure/json"
	"github.com/hilthontt/embermud/internal/infrastructure/validate"
)

var validateMessage = validate.Field("message",
	validate.Required(),
	validate.MaxLength(512),
)

type Handler struct {
	publisher *events.GameEventPublisher
}

func NewHandler(publisher *events.GameEventPublisher) *Handler {
	return &Handler{
		publisher: publisher,
	}
}

// CreateNoticeHandler broadcasts a system notice to every connected client.
// Notices are global scope, so no room or zone binding is involved.
func (h *Handler) CreateNoticeHandler(w http.ResponseWriter, r *http.Request) {
	var req createNoticeRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if err := validateMessage(req.Message); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	notice := domain.NewSystemNotice(req.Message)
	if err := h.publisher.Publish(r.Context(), notice); err != nil {
		json.WriteError(w, http.StatusInternalServerError, "failed to publish notice")
		return
	}

	_ = json.Write(w, http.StatusAccepted, createNoticeResponse{
		EventID:    notice.EventID,
		OccurredAt: notice.OccurredAt,
	})
}
