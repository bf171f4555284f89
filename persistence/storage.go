package persistence

import (
	"errors"

	"blast-arena/server/models"
)

// ErrNotFound is returned when a stage or snapshot does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines the interface for data persistence
type Storage interface {
	SaveStage(name string, stage models.Stage) error
	LoadStage(name string) (models.Stage, error)
	SaveSnapshot(matchID string, tick uint64, world models.World) error
	LoadSnapshot(matchID string, tick uint64) (models.World, error)
	LatestSnapshot(matchID string) (uint64, models.World, error)
	Close() error
}
