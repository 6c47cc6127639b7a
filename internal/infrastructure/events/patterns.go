package events

import (
	"strconv"
	"strings"

	"github.com/hilthontt/embermud/internal/domain"
)

// globalPatterns are bound for the lifetime of every subscription and never
// unbound: everything published without a scope, plus system events
// regardless of their scope tag.
func globalPatterns() []string {
	return []string{
		"*.*.global",
		"system.#",
	}
}

// roomPatterns returns one binding per room-scoped category for the given
// room. The set is recomputed on every transition rather than stored, so
// bindings can never drift from the current room.
func roomPatterns(roomID int64) []string {
	return scopedPatterns(strconv.FormatInt(roomID, 10))
}

// zonePatterns is the parallel family for zone-scoped events.
func zonePatterns(zoneID string) []string {
	return scopedPatterns("zone-" + zoneID)
}

func scopedPatterns(scope string) []string {
	cats := domain.RoomScopedCategories()
	patterns := make([]string, 0, len(cats))
	for _, cat := range cats {
		patterns = append(patterns, strings.ToLower(string(cat))+".*."+scope)
	}
	return patterns
}
