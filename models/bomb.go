package models

import "encoding/json"

const (
	// DefaultBombLifetime is the fuse length in ticks.
	DefaultBombLifetime = 300
	// DefaultBlastLifetime is how long a blast lingers once it has finished spreading.
	DefaultBlastLifetime = 60
)

// Bomb is a planted device counting down to detonation. Range is the blast
// length in each cardinal direction. Piercing is carried through to the
// detonation but does not change how the blast spreads.
type Bomb struct {
	Position Cell `json:"position"`
	Lifetime int  `json:"lifetime"`
	Piercing bool `json:"piercing"`
	Range    int  `json:"range"`
}

func NewBomb(position Cell, piercing bool, blastRange int) Bomb {
	return Bomb{
		Position: position,
		Lifetime: DefaultBombLifetime,
		Piercing: piercing,
		Range:    blastRange,
	}
}

// Tick ages the bomb by one tick. There is no floor at zero; callers check
// CanDetonate first.
func (b Bomb) Tick() Bomb {
	b.Lifetime--
	return b
}

func (b Bomb) CanDetonate() bool {
	return b.Lifetime == 0
}

// Flame is one directional ray of a blast, the segment Start..End. It keeps
// spreading one cell per tick until it hits a wall or SpreadRange reaches 0.
type Flame struct {
	Start       Cell      `json:"start"`
	End         Cell      `json:"end"`
	Direction   Direction `json:"direction"`
	SpreadRange int       `json:"spread_range"`
}

// Tick advances the flame. hitWall is the owner's verdict on NextPosition.
func (f Flame) Tick(hitWall bool) Flame {
	if hitWall || f.SpreadRange == 0 {
		f.SpreadRange = 0
		return f
	}
	f.End = f.NextPosition()
	f.SpreadRange--
	return f
}

// NextPosition is the cell one step past End. Flames only travel in cardinal
// directions; anything else yields End.
func (f Flame) NextPosition() Cell {
	if !f.Direction.IsCardinal() {
		return f.End
	}
	return f.End.Step(f.Direction)
}

// Frozen reports whether the flame has stopped spreading for good.
func (f Flame) Frozen() bool {
	return f.SpreadRange == 0
}

// Cells lists every cell from Start to End inclusive.
func (f Flame) Cells() []Cell {
	cells := []Cell{f.Start}
	if !f.Direction.IsCardinal() {
		return cells
	}
	steps := abs(f.End.X-f.Start.X) + abs(f.End.Y-f.Start.Y)
	c := f.Start
	for i := 0; i < steps; i++ {
		c = c.Step(f.Direction)
		cells = append(cells, c)
	}
	return cells
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Blast is the family of flames produced by one detonation. The flames fan
// out together and the blast only starts ageing once every one of them has
// stopped.
type Blast struct {
	center     Cell
	flames     []Flame
	spreadDone bool
	lifetime   int
}

// NewBlast creates a blast at center. Only the directions flagged free get a
// flame, starting one cell away from the center, in North, South, West, East
// order.
func NewBlast(center Cell, blastRange int, upFree, downFree, leftFree, rightFree bool) Blast {
	free := [4]bool{upFree, downFree, leftFree, rightFree}
	dirs := [4]Direction{North, South, West, East}

	flames := make([]Flame, 0, 4)
	for i, d := range dirs {
		if !free[i] {
			continue
		}
		start := center.Step(d)
		flames = append(flames, Flame{Start: start, End: start, Direction: d, SpreadRange: blastRange})
	}

	return Blast{
		center:   center,
		flames:   flames,
		lifetime: DefaultBlastLifetime,
	}
}

func (b Blast) Center() Cell     { return b.center }
func (b Blast) SpreadDone() bool { return b.spreadDone }
func (b Blast) Lifetime() int    { return b.lifetime }

// Flames returns a copy of the blast's flames.
func (b Blast) Flames() []Flame {
	flames := make([]Flame, len(b.flames))
	copy(flames, b.flames)
	return flames
}

// Expired reports whether the blast has burnt out.
func (b Blast) Expired() bool {
	return b.lifetime <= 0
}

// Tick advances the blast by one tick. hitWall is index-aligned with Flames;
// missing entries count as false. The lifetime is decided from the state
// before this tick, so the countdown starts on the tick after the last flame
// stopped; spread completion is read off the advanced flames.
func (b Blast) Tick(hitWall []bool) Blast {
	lifetime := b.lifetime
	if b.spreadDone {
		lifetime--
	}

	flames := make([]Flame, len(b.flames))
	spreadDone := true
	for i, f := range b.flames {
		hit := i < len(hitWall) && hitWall[i]
		flames[i] = f.Tick(hit)
		if !flames[i].Frozen() {
			spreadDone = false
		}
	}

	return Blast{
		center:     b.center,
		flames:     flames,
		spreadDone: b.spreadDone || spreadDone,
		lifetime:   lifetime,
	}
}

// NextPositions returns the look-ahead cell of every flame, in flame order.
func (b Blast) NextPositions() []Cell {
	positions := make([]Cell, len(b.flames))
	for i, f := range b.flames {
		positions[i] = f.NextPosition()
	}
	return positions
}

// Cells lists the center and every cell covered by a flame.
func (b Blast) Cells() []Cell {
	cells := []Cell{b.center}
	for _, f := range b.flames {
		cells = append(cells, f.Cells()...)
	}
	return cells
}

// Covers reports whether c is part of the blast.
func (b Blast) Covers(c Cell) bool {
	for _, covered := range b.Cells() {
		if covered == c {
			return true
		}
	}
	return false
}

type blastJSON struct {
	Center     Cell    `json:"center"`
	Flames     []Flame `json:"flames"`
	SpreadDone bool    `json:"spread_done"`
	Lifetime   int     `json:"lifetime"`
}

func (b Blast) MarshalJSON() ([]byte, error) {
	return json.Marshal(blastJSON{
		Center:     b.center,
		Flames:     b.Flames(),
		SpreadDone: b.spreadDone,
		Lifetime:   b.lifetime,
	})
}

func (b *Blast) UnmarshalJSON(data []byte) error {
	var raw blastJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Blast{
		center:     raw.Center,
		flames:     raw.Flames,
		spreadDone: raw.SpreadDone,
		lifetime:   raw.Lifetime,
	}
	return nil
}
