package models

import "errors"

var (
	ErrOutOfBounds      = errors.New("position is out of bounds")
	ErrStageTooLarge    = errors.New("stage exceeds maximum dimensions")
	ErrInvalidStage     = errors.New("invalid stage layout")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrCellOccupied     = errors.New("cell already holds a bomb")
)
