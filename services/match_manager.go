package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"blast-arena/server/models"
	"blast-arena/server/persistence"
)

// MatchManager manages running matches
type MatchManager struct {
	ctx        context.Context
	cfg        MatchConfig
	stageName  string
	resume     bool
	db         persistence.Storage
	matches    map[string]*MatchService
	onCreate   []func(*MatchService)
	worldMutex sync.RWMutex
}

// NewMatchManager creates a new match manager. Matches it creates run until
// ctx is cancelled.
func NewMatchManager(ctx context.Context, db persistence.Storage, stageName string, resume bool, cfg MatchConfig) *MatchManager {
	return &MatchManager{
		ctx:       ctx,
		cfg:       cfg,
		stageName: stageName,
		resume:    resume,
		db:        db,
		matches:   make(map[string]*MatchService),
	}
}

// OnCreate registers a hook run for every new match before it starts ticking
func (mm *MatchManager) OnCreate(hook func(*MatchService)) {
	mm.worldMutex.Lock()
	defer mm.worldMutex.Unlock()
	mm.onCreate = append(mm.onCreate, hook)
}

// GetMatch retrieves a running match by ID
func (mm *MatchManager) GetMatch(matchID string) (*MatchService, bool) {
	mm.worldMutex.RLock()
	defer mm.worldMutex.RUnlock()
	match, exists := mm.matches[matchID]
	return match, exists
}

// GetOrCreateMatch returns the match with the given ID, starting it if needed
func (mm *MatchManager) GetOrCreateMatch(matchID string) (*MatchService, error) {
	if match, exists := mm.GetMatch(matchID); exists {
		return match, nil
	}
	return mm.createMatch(matchID)
}

// createMatch builds and starts a match with the given ID
func (mm *MatchManager) createMatch(matchID string) (*MatchService, error) {
	mm.worldMutex.Lock()
	defer mm.worldMutex.Unlock()

	// Check again if match was created by another goroutine
	if match, exists := mm.matches[matchID]; exists {
		return match, nil
	}

	world, tick, err := mm.initialWorld(matchID)
	if err != nil {
		return nil, err
	}

	match := NewMatchService(matchID, world, tick, mm.cfg, mm.db)
	for _, hook := range mm.onCreate {
		hook(match)
	}
	mm.matches[matchID] = match

	go match.Run(mm.ctx)
	log.Printf("Match %s started at tick %d", matchID, tick)

	return match, nil
}

// initialWorld resumes the latest snapshot of a match when enabled, or sets
// up the configured stage. Players are never resumed; they join again.
func (mm *MatchManager) initialWorld(matchID string) (models.World, uint64, error) {
	if mm.resume {
		tick, snapshot, err := mm.db.LatestSnapshot(matchID)
		switch {
		case err == nil:
			world, err := models.NewWorld(snapshot.Stage(), nil, snapshot.Bombs(), snapshot.Blasts())
			if err != nil {
				return models.World{}, 0, fmt.Errorf("resume match %s: %w", matchID, err)
			}
			return world, tick, nil
		case !errors.Is(err, persistence.ErrNotFound):
			return models.World{}, 0, fmt.Errorf("resume match %s: %w", matchID, err)
		}
	}

	stage, err := mm.loadStage()
	if err != nil {
		return models.World{}, 0, err
	}
	world, err := models.NewWorld(stage, nil, nil, nil)
	if err != nil {
		return models.World{}, 0, err
	}
	return world, 0, nil
}

// loadStage loads the configured stage, seeding storage with the classic
// arena the first time.
func (mm *MatchManager) loadStage() (models.Stage, error) {
	stage, err := mm.db.LoadStage(mm.stageName)
	if err == nil {
		return stage, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return models.Stage{}, fmt.Errorf("load stage %s: %w", mm.stageName, err)
	}

	stage = DefaultStage()
	if err := mm.db.SaveStage(mm.stageName, stage); err != nil {
		return models.Stage{}, fmt.Errorf("save stage %s: %w", mm.stageName, err)
	}
	log.Printf("Stage %s not found, saved the classic arena", mm.stageName)
	return stage, nil
}
