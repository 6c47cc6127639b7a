package rooms

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/infrastructure/json"
	"github.com/hilthontt/embermud/internal/world"
)

const (
	defaultEarshotBudget = 4
	maxEarshotBudget     = 16
)

type Handler struct {
	resolver *world.Resolver
}

func NewHandler(resolver *world.Resolver) *Handler {
	return &Handler{
		resolver: resolver,
	}
}

// GetEarshotHandler returns the rooms that a sound originating in the given
// room can reach within a cost budget. Intended for builders diagnosing
// sound propagation through their zones.
func (h *Handler) GetEarshotHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomId"), 10, 64)
	if err != nil {
		json.WriteError(w, http.StatusBadRequest, "roomId must be an integer")
		return
	}

	budget := defaultEarshotBudget
	if raw := r.URL.Query().Get("budget"); raw != "" {
		budget, err = strconv.Atoi(raw)
		if err != nil || budget < 0 {
			json.WriteError(w, http.StatusBadRequest, "budget must be a non-negative integer")
			return
		}
	}
	if budget > maxEarshotBudget {
		budget = maxEarshotBudget
	}

	adjacent, err := h.resolver.AdjacentRooms(r.Context(), roomID, budget)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			json.WriteError(w, http.StatusNotFound, "room not found")
			return
		}

		json.WriteError(w, http.StatusInternalServerError, "failed to resolve adjacent rooms")
		return
	}

	resp := earshotResponse{
		RoomID: roomID,
		Budget: budget,
		Rooms:  make([]earshotEntry, 0, len(adjacent)),
	}
	for _, adj := range adjacent {
		path := make([]string, 0, len(adj.PathDirections))
		for _, dir := range adj.PathDirections {
			path = append(path, string(dir))
		}

		resp.Rooms = append(resp.Rooms, earshotEntry{
			RoomID:                adj.RoomID,
			Distance:              adj.Distance,
			DirectionFromSource:   string(adj.DirectionFromSource),
			DirectionFromListener: string(adj.DirectionFromListener),
			Path:                  path,
		})
	}

	_ = json.Write(w, http.StatusOK, resp)
}
