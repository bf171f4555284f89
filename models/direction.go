package models

import (
	"fmt"
	"math"
	"strings"
)

// Direction is one of the eight compass directions, or DirectionNone for an
// actor that has not faced anywhere yet.
type Direction uint8

const (
	DirectionNone Direction = iota
	North
	South
	West
	East
	Northwest
	Northeast
	Southwest
	Southeast
)

var directionNames = map[Direction]string{
	DirectionNone: "none",
	North:         "north",
	South:         "south",
	West:          "west",
	East:          "east",
	Northwest:     "northwest",
	Northeast:     "northeast",
	Southwest:     "southwest",
	Southeast:     "southeast",
}

// IsCardinal reports whether d is North, South, West or East.
func (d Direction) IsCardinal() bool {
	return d == North || d == South || d == West || d == East
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// ParseDirection accepts the lower-case names used on the wire ("north",
// "southeast", ...). Case and surrounding space are ignored.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range directionNames {
		if name == s {
			return d, nil
		}
	}
	return DirectionNone, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if _, ok := directionNames[d]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Cell is an integer grid coordinate on the stage.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the neighbouring cell in a cardinal direction. North is +Y and
// East is +X. Any other direction returns c unchanged.
func (c Cell) Step(d Direction) Cell {
	switch d {
	case North:
		return Cell{X: c.X, Y: c.Y + 1}
	case South:
		return Cell{X: c.X, Y: c.Y - 1}
	case West:
		return Cell{X: c.X - 1, Y: c.Y}
	case East:
		return Cell{X: c.X + 1, Y: c.Y}
	default:
		return c
	}
}

// Neighbours returns the four cardinal neighbours in North, South, West, East order.
func (c Cell) Neighbours() [4]Cell {
	return [4]Cell{c.Step(North), c.Step(South), c.Step(West), c.Step(East)}
}

// Vec is a sub-cell position used for players.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cell returns the grid cell whose centre is nearest to v (halves round up).
func (v Vec) Cell() Cell {
	return Cell{X: roundHalfUp(v.X), Y: roundHalfUp(v.Y)}
}

func roundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}
