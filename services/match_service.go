package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"blast-arena/server/models"
	"blast-arena/server/persistence"
)

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerEliminated = errors.New("player has been eliminated")
	ErrMatchFull        = errors.New("match is full")
	ErrBlocked          = errors.New("cannot walk through walls")
)

// MatchConfig holds the rules shared by every match.
type MatchConfig struct {
	MaxPlayers    int
	BombRange     int
	SnapshotEvery int // ticks between persisted snapshots, 0 disables
	TickInterval  time.Duration
}

// Elimination records a player caught in a blast.
type Elimination struct {
	PlayerID string
	Username string
}

// Identity names the member behind a player value.
type Identity struct {
	PlayerID string
	Username string
}

// Roster maps the players of one snapshot to their members. It is taken
// under the match lock together with the world it describes.
type Roster map[models.Player]Identity

// Identify implements messages.Roster.
func (r Roster) Identify(p models.Player) (string, string, bool) {
	id, ok := r[p]
	return id.PlayerID, id.Username, ok
}

// TickListener is called after every Step, outside the match lock.
type TickListener func(tick uint64, world models.World, roster Roster, eliminated []Elimination)

type member struct {
	id       string
	username string
	slot     int
	player   models.Player
	alive    bool
}

// MatchService runs one simulation. The World itself is an immutable value;
// the service serialises commands and ticks against the current snapshot.
type MatchService struct {
	id        string
	cfg       MatchConfig
	db        persistence.Storage
	mutex     sync.RWMutex
	world     models.World
	tick      uint64
	members   map[string]*member
	listeners []TickListener
}

// NewMatchService creates a match starting from world at tick.
func NewMatchService(id string, world models.World, tick uint64, cfg MatchConfig, db persistence.Storage) *MatchService {
	return &MatchService{
		id:      id,
		cfg:     cfg,
		db:      db,
		world:   world,
		tick:    tick,
		members: make(map[string]*member),
	}
}

// ID returns the match identifier
func (ms *MatchService) ID() string {
	return ms.id
}

// OnTick registers a listener for completed steps
func (ms *MatchService) OnTick(listener TickListener) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	ms.listeners = append(ms.listeners, listener)
}

// Snapshot returns the current tick and world
func (ms *MatchService) Snapshot() (uint64, models.World) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	return ms.tick, ms.world
}

// View returns the current tick and world with the roster naming its players
func (ms *MatchService) View() (uint64, models.World, Roster) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	return ms.tick, ms.world, ms.roster()
}

// Join places a new player on the first free spawn corner
func (ms *MatchService) Join(playerID, username string) (models.Player, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	if _, exists := ms.members[playerID]; exists {
		return models.Player{}, fmt.Errorf("player %s already joined", playerID)
	}

	taken := make(map[int]bool, len(ms.members))
	for _, m := range ms.members {
		taken[m.slot] = true
	}

	stage := ms.world.Stage()
	for slot, spawn := range spawnPoints(stage) {
		if slot >= ms.cfg.MaxPlayers {
			break
		}
		if taken[slot] {
			continue
		}

		player := models.NewPlayer(models.Vec{X: float64(spawn.X), Y: float64(spawn.Y)}, models.DirectionNone)
		ms.members[playerID] = &member{
			id:       playerID,
			username: username,
			slot:     slot,
			player:   player,
			alive:    true,
		}
		ms.world = ms.world.AddPlayer(player)
		return player, nil
	}

	return models.Player{}, ErrMatchFull
}

// Leave removes a player from the match
func (ms *MatchService) Leave(playerID string) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	m, exists := ms.members[playerID]
	if !exists {
		return
	}
	if m.alive {
		ms.world = ms.world.RemovePlayer(m.player)
	}
	delete(ms.members, playerID)
}

// MovePlayer processes a player movement request. The destination cell is
// checked against the stage before the world moves the player.
func (ms *MatchService) MovePlayer(playerID string, direction models.Direction) (models.Vec, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	m, err := ms.activeMember(playerID)
	if err != nil {
		return models.Vec{}, err
	}

	moved := m.player.SetDirection(direction).SetNextPosition()
	if ms.world.IsWallOrOOB(moved.Cell()) {
		return models.Vec{}, ErrBlocked
	}

	ms.world = ms.world.MovePlayer(m.player, direction)
	m.player = moved
	return moved.Position, nil
}

// PlantBomb drops a bomb on the cell the player stands on
func (ms *MatchService) PlantBomb(playerID string, piercing bool) (models.Bomb, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	m, err := ms.activeMember(playerID)
	if err != nil {
		return models.Bomb{}, err
	}

	bomb := models.NewBomb(m.player.Cell(), piercing, ms.cfg.BombRange)
	world, err := ms.world.AddBomb(bomb)
	if err != nil {
		return models.Bomb{}, err
	}
	ms.world = world
	return bomb, nil
}

// Step advances the match by dt ticks. Players standing in a blast are
// eliminated after every tick, so the outcome does not depend on how ticks
// are grouped. A snapshot is persisted when due and listeners are notified.
func (ms *MatchService) Step(dt int) []Elimination {
	if dt <= 0 {
		return nil
	}

	ms.mutex.Lock()
	before := ms.tick
	var eliminated []Elimination
	for i := 0; i < dt; i++ {
		ms.world = ms.world.Tick()
		ms.tick++
		eliminated = append(eliminated, ms.eliminateCaught()...)
	}

	tick, world, roster := ms.tick, ms.world, ms.roster()
	listeners := append([]TickListener(nil), ms.listeners...)
	ms.mutex.Unlock()

	for _, e := range eliminated {
		log.Printf("Match %s: player %s eliminated by tick %d", ms.id, e.Username, tick)
	}

	if every := uint64(ms.cfg.SnapshotEvery); every > 0 && ms.db != nil && before/every != tick/every {
		if err := ms.db.SaveSnapshot(ms.id, tick, world); err != nil {
			log.Printf("Match %s: failed to save snapshot at tick %d: %v", ms.id, tick, err)
		}
	}

	for _, listener := range listeners {
		listener(tick, world, roster, eliminated)
	}

	return eliminated
}

// eliminateCaught removes every player standing on a blast cell
func (ms *MatchService) eliminateCaught() []Elimination {
	var eliminated []Elimination
	for _, caught := range ms.world.PlayersInBlast() {
		for _, m := range ms.members {
			if m.alive && m.player == caught {
				m.alive = false
				eliminated = append(eliminated, Elimination{PlayerID: m.id, Username: m.username})
			}
		}
		ms.world = ms.world.RemovePlayer(caught)
	}
	return eliminated
}

func (ms *MatchService) roster() Roster {
	roster := make(Roster, len(ms.members))
	for _, m := range ms.members {
		if m.alive {
			roster[m.player] = Identity{PlayerID: m.id, Username: m.username}
		}
	}
	return roster
}

// Run steps the match on a ticker until ctx is cancelled. Elapsed wall time
// is converted to whole ticks; the remainder carries over.
func (ms *MatchService) Run(ctx context.Context) {
	interval := ms.cfg.TickInterval
	if interval <= 0 {
		interval = time.Second / 60
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	var carry time.Duration

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			elapsed := now.Sub(last) + carry
			last = now
			dt := int(elapsed / interval)
			carry = elapsed - time.Duration(dt)*interval
			ms.Step(dt)
		}
	}
}

func (ms *MatchService) activeMember(playerID string) (*member, error) {
	m, exists := ms.members[playerID]
	if !exists {
		return nil, ErrPlayerNotFound
	}
	if !m.alive {
		return nil, ErrPlayerEliminated
	}
	return m, nil
}
