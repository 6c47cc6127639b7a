package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hilthontt/embermud/internal/domain"
)

var ErrUnknownVariant = errors.New("unknown event variant")

// eventPrototypes maps a wire variant tag to a constructor for its concrete
// type. A variant missing here is simply not decodable by this consumer;
// newer publishers may emit tags older consumers drop.
var eventPrototypes = map[string]func() domain.GameEvent{
	domain.VariantChatMessage:  func() domain.GameEvent { return &domain.ChatMessageEvent{} },
	domain.VariantTell:         func() domain.GameEvent { return &domain.TellEvent{} },
	domain.VariantPlayerMoved:  func() domain.GameEvent { return &domain.PlayerMovedEvent{} },
	domain.VariantCombatBlow:   func() domain.GameEvent { return &domain.CombatBlowEvent{} },
	domain.VariantSkillUsed:    func() domain.GameEvent { return &domain.SkillUsedEvent{} },
	domain.VariantSystemNotice: func() domain.GameEvent { return &domain.SystemNoticeEvent{} },
	domain.VariantSoundHeard:   func() domain.GameEvent { return &domain.SoundHeardEvent{} },
}

// DecodeEvent turns a wire body back into its typed event using the variant
// tag carried in message metadata.
func DecodeEvent(variant string, body []byte) (domain.GameEvent, error) {
	prototype, ok := eventPrototypes[variant]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}

	ev := prototype()
	if err := json.Unmarshal(body, ev); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", variant, err)
	}

	return ev, nil
}
