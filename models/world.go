package models

import (
	"encoding/json"
	"fmt"
)

// World is one immutable snapshot of a match: the stage plus every player,
// bomb and blast on it. Every transition returns a new World; the receiver
// stays valid, so old snapshots can be kept for replay or rollback.
type World struct {
	stage   Stage
	players []Player
	bombs   []Bomb
	blasts  []Blast
}

// NewWorld assembles a snapshot. Bombs and blasts must lie inside the stage.
func NewWorld(stage Stage, players []Player, bombs []Bomb, blasts []Blast) (World, error) {
	for _, b := range bombs {
		if !stage.InBounds(b.Position) {
			return World{}, fmt.Errorf("bomb at (%d,%d): %w", b.Position.X, b.Position.Y, ErrOutOfBounds)
		}
	}
	for _, b := range blasts {
		if !stage.InBounds(b.center) {
			return World{}, fmt.Errorf("blast at (%d,%d): %w", b.center.X, b.center.Y, ErrOutOfBounds)
		}
	}
	return World{
		stage:   stage.Copy(),
		players: append([]Player(nil), players...),
		bombs:   append([]Bomb(nil), bombs...),
		blasts:  cloneBlasts(blasts),
	}, nil
}

func (w World) Stage() Stage { return w.stage.Copy() }

func (w World) Players() []Player { return append([]Player(nil), w.players...) }

func (w World) Bombs() []Bomb { return append([]Bomb(nil), w.bombs...) }

func (w World) Blasts() []Blast { return cloneBlasts(w.blasts) }

// Tick advances the simulation by one tick: bombs age, blasts spread, then
// expired bombs detonate.
func (w World) Tick() World {
	return w.TickBombs().TickBlasts().CheckBombs()
}

// Update applies Tick dt times. A non-positive dt returns an equal snapshot.
func (w World) Update(dt int) World {
	next := w.clone()
	for i := 0; i < dt; i++ {
		next = next.Tick()
	}
	return next
}

// MovePlayer steps every player equal to player one step in direction. The
// stage is not consulted; collision is the caller's concern.
func (w World) MovePlayer(player Player, direction Direction) World {
	next := w.clone()
	for i, p := range next.players {
		if p == player {
			next.players[i] = p.SetDirection(direction).SetNextPosition()
		}
	}
	return next
}

// TickBombs ages every bomb by one tick.
func (w World) TickBombs() World {
	next := w.clone()
	for i, b := range next.bombs {
		next.bombs[i] = b.Tick()
	}
	return next
}

// TickBlasts spreads every blast by one tick. A flame whose look-ahead cell
// is a wall or off the stage freezes; a soft wall it runs into is broken.
// Blasts whose lifetime has run out are dropped.
func (w World) TickBlasts() World {
	next := w.clone()
	blasts := make([]Blast, 0, len(w.blasts))

	for _, blast := range w.blasts {
		positions := blast.NextPositions()
		hitWall := make([]bool, len(positions))
		for i, pos := range positions {
			hitWall[i] = w.IsWallOrOOB(pos)
			if tile, err := w.stage.Tile(pos); err == nil && tile == SoftWall && !blast.flames[i].Frozen() {
				next.stage, _ = next.stage.SetTile(pos, Ground)
			}
		}

		ticked := blast.Tick(hitWall)
		if ticked.Expired() {
			continue
		}
		blasts = append(blasts, ticked)
	}

	next.blasts = blasts
	return next
}

// CheckBombs detonates every bomb whose lifetime has reached zero. Walls next
// to a detonation become Ground and the directions they blocked get no flame.
func (w World) CheckBombs() World {
	next := w.clone()
	bombs := make([]Bomb, 0, len(w.bombs))

	for _, bomb := range w.bombs {
		if !bomb.CanDetonate() {
			bombs = append(bombs, bomb)
			continue
		}

		neighbours := bomb.Position.Neighbours()
		var free [4]bool
		for i, n := range neighbours {
			free[i] = !w.IsWallOrOOB(n)
			if !free[i] && w.stage.InBounds(n) {
				next.stage, _ = next.stage.SetTile(n, Ground)
			}
		}

		next.blasts = append(next.blasts, NewBlast(bomb.Position, bomb.Range, free[0], free[1], free[2], free[3]))
	}

	next.bombs = bombs
	return next
}

// IsWallOrOOB reports whether c blocks flames: a wall tile or a cell off the stage.
func (w World) IsWallOrOOB(c Cell) bool {
	tile, err := w.stage.Tile(c)
	if err != nil {
		return true
	}
	return tile.IsWall()
}

// AddPlayer returns a world with player appended.
func (w World) AddPlayer(player Player) World {
	next := w.clone()
	next.players = append(next.players, player)
	return next
}

// RemovePlayer returns a world without any player equal to player.
func (w World) RemovePlayer(player Player) World {
	next := w.clone()
	players := next.players[:0]
	for _, p := range next.players {
		if p != player {
			players = append(players, p)
		}
	}
	next.players = players
	return next
}

// AddBomb returns a world with bomb planted. The cell must be on the stage
// and free of other bombs.
func (w World) AddBomb(bomb Bomb) (World, error) {
	if !w.stage.InBounds(bomb.Position) {
		return w, fmt.Errorf("bomb at (%d,%d): %w", bomb.Position.X, bomb.Position.Y, ErrOutOfBounds)
	}
	for _, b := range w.bombs {
		if b.Position == bomb.Position {
			return w, fmt.Errorf("bomb at (%d,%d): %w", bomb.Position.X, bomb.Position.Y, ErrCellOccupied)
		}
	}
	next := w.clone()
	next.bombs = append(next.bombs, bomb)
	return next, nil
}

// BlastCells is the set of cells currently covered by any blast.
func (w World) BlastCells() map[Cell]struct{} {
	cells := make(map[Cell]struct{})
	for _, b := range w.blasts {
		for _, c := range b.Cells() {
			cells[c] = struct{}{}
		}
	}
	return cells
}

// PlayersInBlast lists the players standing on a blast cell.
func (w World) PlayersInBlast() []Player {
	cells := w.BlastCells()
	var caught []Player
	for _, p := range w.players {
		if _, ok := cells[p.Cell()]; ok {
			caught = append(caught, p)
		}
	}
	return caught
}

// Equal reports whether two snapshots hold the same state.
func (w World) Equal(other World) bool {
	if !w.stage.Equal(other.stage) ||
		len(w.players) != len(other.players) ||
		len(w.bombs) != len(other.bombs) ||
		len(w.blasts) != len(other.blasts) {
		return false
	}
	for i := range w.players {
		if w.players[i] != other.players[i] {
			return false
		}
	}
	for i := range w.bombs {
		if w.bombs[i] != other.bombs[i] {
			return false
		}
	}
	for i := range w.blasts {
		if !w.blasts[i].Equal(other.blasts[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether two blasts hold the same state.
func (b Blast) Equal(other Blast) bool {
	if b.center != other.center || b.spreadDone != other.spreadDone ||
		b.lifetime != other.lifetime || len(b.flames) != len(other.flames) {
		return false
	}
	for i := range b.flames {
		if b.flames[i] != other.flames[i] {
			return false
		}
	}
	return true
}

func (w World) clone() World {
	return World{
		stage:   w.stage.Copy(),
		players: append([]Player(nil), w.players...),
		bombs:   append([]Bomb(nil), w.bombs...),
		blasts:  cloneBlasts(w.blasts),
	}
}

func cloneBlasts(blasts []Blast) []Blast {
	if blasts == nil {
		return nil
	}
	out := make([]Blast, len(blasts))
	for i, b := range blasts {
		out[i] = Blast{
			center:     b.center,
			flames:     b.Flames(),
			spreadDone: b.spreadDone,
			lifetime:   b.lifetime,
		}
	}
	return out
}

type worldJSON struct {
	Stage   Stage    `json:"stage"`
	Players []Player `json:"players"`
	Bombs   []Bomb   `json:"bombs"`
	Blasts  []Blast  `json:"blasts"`
}

func (w World) MarshalJSON() ([]byte, error) {
	return json.Marshal(worldJSON{
		Stage:   w.stage,
		Players: w.players,
		Bombs:   w.bombs,
		Blasts:  w.blasts,
	})
}

func (w *World) UnmarshalJSON(data []byte) error {
	var raw worldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewWorld(raw.Stage, raw.Players, raw.Bombs, raw.Blasts)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
