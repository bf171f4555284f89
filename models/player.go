package models

import "math"

// DefaultPlayerSpeed is the distance in cells a player covers per movement command.
const DefaultPlayerSpeed = 0.1

// Player is an actor on the stage. Players are values: every movement
// produces a new Player and two players are equal when speed, position and
// direction all match. There is no HP; elimination happens outside the core.
type Player struct {
	Speed     float64   `json:"speed"`
	Position  Vec       `json:"position"`
	Direction Direction `json:"direction"`
}

// NewPlayer creates a player at its spawn position.
func NewPlayer(position Vec, direction Direction) Player {
	return Player{
		Speed:     DefaultPlayerSpeed,
		Position:  position,
		Direction: direction,
	}
}

// NextPosition is where the player ends up after one step in its current
// direction. Diagonals move speed/sqrt(2) on both axes so the linear speed is
// the same in every direction.
func (p Player) NextPosition() Vec {
	x, y := p.Position.X, p.Position.Y
	diagonal := p.Speed / math.Sqrt2

	switch p.Direction {
	case North:
		return Vec{X: x, Y: y + p.Speed}
	case South:
		return Vec{X: x, Y: y - p.Speed}
	case West:
		return Vec{X: x - p.Speed, Y: y}
	case East:
		return Vec{X: x + p.Speed, Y: y}
	case Northwest:
		return Vec{X: x - diagonal, Y: y + diagonal}
	case Northeast:
		return Vec{X: x + diagonal, Y: y + diagonal}
	case Southwest:
		return Vec{X: x - diagonal, Y: y - diagonal}
	case Southeast:
		return Vec{X: x + diagonal, Y: y - diagonal}
	default:
		return p.Position
	}
}

func (p Player) SetPosition(position Vec) Player {
	p.Position = position
	return p
}

func (p Player) SetNextPosition() Player {
	p.Position = p.NextPosition()
	return p
}

func (p Player) SetDirection(direction Direction) Player {
	p.Direction = direction
	return p
}

// Cell is the grid cell the player currently stands on.
func (p Player) Cell() Cell {
	return p.Position.Cell()
}
