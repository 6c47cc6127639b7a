package domain

import "strings"

// Direction is a compass or vertical exit direction. The pseudo-direction
// "nearby" is used for sounds with no meaningful bearing (same-room sources
// leaking through thin walls, area effects).
type Direction string

const (
	North     Direction = "north"
	South     Direction = "south"
	East      Direction = "east"
	West      Direction = "west"
	Northeast Direction = "northeast"
	Northwest Direction = "northwest"
	Southeast Direction = "southeast"
	Southwest Direction = "southwest"
	Up        Direction = "up"
	Down      Direction = "down"
	Nearby    Direction = "nearby"
)

var opposites = map[Direction]Direction{
	North:     South,
	South:     North,
	East:      West,
	West:      East,
	Northeast: Southwest,
	Southwest: Northeast,
	Northwest: Southeast,
	Southeast: Northwest,
	Up:        Down,
	Down:      Up,
	Nearby:    Nearby,
}

// Opposite returns the direction a listener would face to look back along d.
func (d Direction) Opposite() Direction {
	if opp, ok := opposites[d]; ok {
		return opp
	}
	return d
}

func (d Direction) IsVertical() bool {
	return d == Up || d == Down
}

// ParseDirection normalizes a stored direction string. Unrecognized values
// are returned as-is so world data with custom exits still round-trips.
func ParseDirection(raw string) Direction {
	d := Direction(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := opposites[d]; ok {
		return d
	}
	return Direction(raw)
}
