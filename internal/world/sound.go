package world

import (
	"context"
	"fmt"
	"strings"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
	"github.com/hilthontt/embermud/internal/infrastructure/metrics"
)

// SoundLevel is the loudness of a propagating sound.
type SoundLevel string

const (
	Silent    SoundLevel = "silent"
	Quiet     SoundLevel = "quiet"
	Normal    SoundLevel = "normal"
	Loud      SoundLevel = "loud"
	VeryLoud  SoundLevel = "veryloud"
	Deafening SoundLevel = "deafening"
)

// soundReach maps loudness to the maximum hop distance still audible.
var soundReach = map[SoundLevel]int{
	Silent:    0,
	Quiet:     1,
	Normal:    1,
	Loud:      2,
	VeryLoud:  3,
	Deafening: 4,
}

// Reach returns the propagation budget in hops for the level. Unknown levels
// propagate like Normal.
func (l SoundLevel) Reach() int {
	reach, ok := soundReach[l]
	if !ok {
		return soundReach[Normal]
	}
	return reach
}

func (l SoundLevel) atLeastLoud() bool {
	return l == Loud || l == VeryLoud || l == Deafening
}

// SoundType categorizes a sound for its default descriptor.
type SoundType string

const (
	SoundSpeech   SoundType = "speech"
	SoundCombat   SoundType = "combat"
	SoundMovement SoundType = "movement"
	SoundMagic    SoundType = "magic"
	SoundAmbient  SoundType = "ambient"
)

var defaultDescriptors = map[SoundType]string{
	SoundSpeech:   "shouting",
	SoundCombat:   "the sounds of fighting",
	SoundMovement: "movement",
	SoundMagic:    "a crackle of magic",
	SoundAmbient:  "a low rumble",
}

// speechVerbs escalate with loudness for the quoted speech special case.
var speechVerbs = map[SoundLevel]string{
	Loud:      "yells",
	VeryLoud:  "shouts",
	Deafening: "bellows",
}

// PropagationRequest describes one sound leaving a source room.
type PropagationRequest struct {
	SourceRoomID int64
	Level        SoundLevel
	Type         SoundType

	// Description overrides the type's default descriptor when set.
	Description string

	// CharacterName and DetailedMessage enable the quoted speech rendering
	// for adjacent rooms when the sound is loud speech.
	CharacterName   string
	DetailedMessage string
}

// BatchPublisher is the slice of the event publisher the propagator needs.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, events []domain.GameEvent)
}

// Propagator synthesizes direction-aware sound notifications for every room
// within earshot of a source and publishes them through the event bus. Sound
// is a flavor feature: nothing here may abort the action that made the noise,
// so every failure is logged and swallowed.
type Propagator struct {
	resolver  *Resolver
	publisher BatchPublisher
	logger    logging.Logger
}

func NewPropagator(resolver *Resolver, publisher BatchPublisher, logger logging.Logger) *Propagator {
	return &Propagator{
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
	}
}

// Propagate computes the rooms in earshot and publishes one room-scoped
// notification per room.
func (p *Propagator) Propagate(ctx context.Context, req PropagationRequest) {
	reach := req.Level.Reach()
	if reach <= 0 {
		return
	}

	adjacent, err := p.resolver.AdjacentRooms(ctx, req.SourceRoomID, reach)
	if err != nil {
		p.logger.Warn(logging.Sound, logging.Propagation, "adjacency walk failed, sound dropped", map[logging.ExtraKey]any{
			logging.RoomID:       req.SourceRoomID,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	batch := make([]domain.GameEvent, 0, len(adjacent))
	for _, adj := range adjacent {
		msg := p.describe(req, adj)
		if msg == "" {
			// room silenced; nothing composable for it
			continue
		}
		batch = append(batch, domain.NewSoundHeard(adj.RoomID, req.SourceRoomID, adj.Distance, adj.DirectionFromListener, msg))
	}

	if len(batch) == 0 {
		return
	}

	p.publisher.PublishBatch(ctx, batch)
	metrics.SoundsPropagated.Add(float64(len(batch)))
}

// describe renders the notification text for one listening room.
func (p *Propagator) describe(req PropagationRequest, adj AdjacentRoom) string {
	phrase := directionPhrase(adj.DirectionFromListener, adj.Distance)

	if req.Type == SoundSpeech && adj.Distance == 1 && req.Level.atLeastLoud() &&
		req.DetailedMessage != "" && req.CharacterName != "" {
		return fmt.Sprintf("%s %s %s: %s",
			req.CharacterName, speechVerbs[req.Level], phrase, quote(req.DetailedMessage))
	}

	desc := req.Description
	if desc == "" {
		desc = defaultDescriptors[req.Type]
	}
	if desc == "" {
		desc = "something"
	}

	return fmt.Sprintf("You hear %s %s.", qualifyDistance(desc, adj.Distance), phrase)
}

// qualifyDistance prefixes the descriptor with a distance qualifier:
// unmodified at 1 hop, "distant" at 2, "very distant" at 3 or more.
// Idempotent over descriptors that already carry the qualifier.
func qualifyDistance(desc string, distance int) string {
	var qualifier string
	switch {
	case distance <= 1:
		return desc
	case distance == 2:
		qualifier = "distant "
	default:
		qualifier = "very distant "
	}

	if strings.HasPrefix(desc, qualifier) {
		return desc
	}
	if qualifier == "very distant " && strings.HasPrefix(desc, "distant ") {
		return "very " + desc
	}

	return qualifier + desc
}

// directionPhrase renders the bearing a listener perceives. Vertical and
// nearby pseudo-directions get their own wording; compass directions read
// "from the X" next door and "to the X" farther out.
func directionPhrase(dir domain.Direction, distance int) string {
	switch dir {
	case domain.Up:
		if distance == 1 {
			return "from above"
		}
		return "somewhere above"
	case domain.Down:
		if distance == 1 {
			return "from below"
		}
		return "somewhere below"
	case domain.Nearby:
		if distance == 1 {
			return "nearby"
		}
		return "somewhere nearby"
	default:
		if distance == 1 {
			return fmt.Sprintf("from the %s", dir)
		}
		return fmt.Sprintf("to the %s", dir)
	}
}

func quote(msg string) string {
	if strings.HasPrefix(msg, `"`) && strings.HasSuffix(msg, `"`) && len(msg) >= 2 {
		return msg
	}
	return `"` + msg + `"`
}
