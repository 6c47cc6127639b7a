package domain

// Variant tags. These are wire-level identifiers: consumers pick a decoder by
// tag, so renaming one is a breaking protocol change.
const (
	VariantChatMessage  = "ChatMessage"
	VariantTell         = "Tell"
	VariantPlayerMoved  = "PlayerMoved"
	VariantCombatBlow   = "CombatBlow"
	VariantSkillUsed    = "SkillUsed"
	VariantSystemNotice = "SystemNotice"
	VariantSoundHeard   = "SoundHeard"
)

// ChatMessageEvent is a room-audible line of speech.
type ChatMessageEvent struct {
	EventMeta

	SpeakerID   string `json:"speakerId"`
	SpeakerName string `json:"speakerName"`
	Text        string `json:"text"`
}

func NewChatMessage(roomID int64, speakerID, speakerName, text string) *ChatMessageEvent {
	ev := &ChatMessageEvent{
		EventMeta:   newMeta(CategoryChat, VariantChatMessage),
		SpeakerID:   speakerID,
		SpeakerName: speakerName,
		Text:        text,
	}
	ev.TagRoom(roomID)
	return ev
}

// TellEvent is a private message delivered only to its recipients. It may
// additionally be tagged with the sender's room for auditing; recipient
// filtering still wins.
type TellEvent struct {
	EventMeta

	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
}

func NewTell(senderID, senderName, text string, recipients ...string) *TellEvent {
	ev := &TellEvent{
		EventMeta:  newMeta(CategoryChat, VariantTell),
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
	}
	ev.Targets = recipients
	return ev
}

// PlayerMovedEvent announces a character entering or leaving a room.
type PlayerMovedEvent struct {
	EventMeta

	CharacterID   string    `json:"characterId"`
	CharacterName string    `json:"characterName"`
	FromRoomID    int64     `json:"fromRoomId"`
	ToRoomID      int64     `json:"toRoomId"`
	Direction     Direction `json:"direction"`
}

func NewPlayerMoved(roomID int64, characterID, characterName string, from, to int64, dir Direction) *PlayerMovedEvent {
	ev := &PlayerMovedEvent{
		EventMeta:     newMeta(CategoryMovement, VariantPlayerMoved),
		CharacterID:   characterID,
		CharacterName: characterName,
		FromRoomID:    from,
		ToRoomID:      to,
		Direction:     dir,
	}
	ev.TagRoom(roomID)
	return ev
}

// CombatBlowEvent is one resolved strike, published to the room it landed in.
type CombatBlowEvent struct {
	EventMeta

	AttackerName string `json:"attackerName"`
	DefenderName string `json:"defenderName"`
	Outcome      string `json:"outcome"`
}

func NewCombatBlow(roomID int64, attacker, defender, outcome string) *CombatBlowEvent {
	ev := &CombatBlowEvent{
		EventMeta:    newMeta(CategoryCombat, VariantCombatBlow),
		AttackerName: attacker,
		DefenderName: defender,
		Outcome:      outcome,
	}
	ev.TagRoom(roomID)
	return ev
}

// SkillUsedEvent announces a skill attempt in a room.
type SkillUsedEvent struct {
	EventMeta

	CharacterName string `json:"characterName"`
	SkillName     string `json:"skillName"`
	Success       bool   `json:"success"`
}

func NewSkillUsed(roomID int64, characterName, skillName string, success bool) *SkillUsedEvent {
	ev := &SkillUsedEvent{
		EventMeta:     newMeta(CategorySkill, VariantSkillUsed),
		CharacterName: characterName,
		SkillName:     skillName,
		Success:       success,
	}
	ev.TagRoom(roomID)
	return ev
}

// SystemNoticeEvent is a global broadcast (maintenance, reboots, announcements).
type SystemNoticeEvent struct {
	EventMeta

	Message string `json:"message"`
}

func NewSystemNotice(message string) *SystemNoticeEvent {
	return &SystemNoticeEvent{
		EventMeta: newMeta(CategorySystem, VariantSystemNotice),
		Message:   message,
	}
}

// SoundHeardEvent is the derived notification the sound propagator publishes
// to each room within earshot.
type SoundHeardEvent struct {
	EventMeta

	SourceRoomID int64     `json:"sourceRoomId"`
	Distance     int       `json:"distance"`
	Direction    Direction `json:"direction"`
	Description  string    `json:"description"`
}

func NewSoundHeard(roomID, sourceRoomID int64, distance int, dir Direction, description string) *SoundHeardEvent {
	ev := &SoundHeardEvent{
		EventMeta:    newMeta(CategoryEnvironment, VariantSoundHeard),
		SourceRoomID: sourceRoomID,
		Distance:     distance,
		Direction:    dir,
		Description:  description,
	}
	ev.TagRoom(roomID)
	return ev
}
