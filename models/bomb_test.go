package models

import "testing"

func TestBombDetonatesExactlyAtLifetime(t *testing.T) {
	const lifetime = 5
	bomb := Bomb{Position: Cell{X: 1, Y: 1}, Lifetime: lifetime, Range: 1}

	for i := 1; i < lifetime; i++ {
		bomb = bomb.Tick()
		if bomb.CanDetonate() {
			t.Fatalf("bomb detonated early at tick %d", i)
		}
	}
	bomb = bomb.Tick()
	if !bomb.CanDetonate() {
		t.Fatalf("bomb should detonate after %d ticks, lifetime %d", lifetime, bomb.Lifetime)
	}
}

func TestNewBombDefaults(t *testing.T) {
	bomb := NewBomb(Cell{X: 2, Y: 3}, true, 4)
	if bomb.Lifetime != DefaultBombLifetime {
		t.Fatalf("expected lifetime %d, got %d", DefaultBombLifetime, bomb.Lifetime)
	}
	if !bomb.Piercing || bomb.Range != 4 {
		t.Fatalf("unexpected bomb %+v", bomb)
	}
	if ticked := bomb.Tick(); bomb.Lifetime != DefaultBombLifetime || ticked.Lifetime != DefaultBombLifetime-1 {
		t.Fatal("Tick must return a new bomb and leave the receiver alone")
	}
}

func TestFlameTick(t *testing.T) {
	f := Flame{Start: Cell{X: 0, Y: 1}, End: Cell{X: 0, Y: 1}, Direction: North, SpreadRange: 2}

	f = f.Tick(false)
	if f.End != (Cell{X: 0, Y: 2}) || f.SpreadRange != 1 {
		t.Fatalf("first tick: got %+v", f)
	}
	f = f.Tick(false)
	if f.End != (Cell{X: 0, Y: 3}) || f.SpreadRange != 0 {
		t.Fatalf("second tick: got %+v", f)
	}
	frozen := f.Tick(false)
	if frozen != f {
		t.Fatalf("frozen flame moved: %+v", frozen)
	}
	if cells := f.Cells(); len(cells) != 3 {
		t.Fatalf("expected 3 covered cells, got %v", cells)
	}
}

func TestFlameHitWallFreezes(t *testing.T) {
	f := Flame{Start: Cell{X: 3, Y: 3}, End: Cell{X: 4, Y: 3}, Direction: East, SpreadRange: 5}
	hit := f.Tick(true)
	if hit.SpreadRange != 0 || hit.End != f.End || hit.Start != f.Start {
		t.Fatalf("expected frozen flame with unchanged segment, got %+v", hit)
	}
}

func TestFlameNextPosition(t *testing.T) {
	end := Cell{X: 5, Y: 5}
	cases := map[Direction]Cell{
		North:     {X: 5, Y: 6},
		South:     {X: 5, Y: 4},
		West:      {X: 4, Y: 5},
		East:      {X: 6, Y: 5},
		Northeast: end,
		Southwest: end,
	}
	for dir, want := range cases {
		f := Flame{Start: end, End: end, Direction: dir, SpreadRange: 1}
		if got := f.NextPosition(); got != want {
			t.Errorf("%v: expected %v, got %v", dir, want, got)
		}
	}
}

func TestNewBlastShape(t *testing.T) {
	center := Cell{X: 5, Y: 4}
	blast := NewBlast(center, 3, true, false, true, false)

	flames := blast.Flames()
	if len(flames) != 2 {
		t.Fatalf("expected 2 flames, got %d", len(flames))
	}
	if flames[0].Direction != North || flames[0].Start != (Cell{X: 5, Y: 5}) {
		t.Fatalf("unexpected north flame %+v", flames[0])
	}
	if flames[1].Direction != West || flames[1].Start != (Cell{X: 4, Y: 4}) {
		t.Fatalf("unexpected west flame %+v", flames[1])
	}
	for _, f := range flames {
		if f.Start != f.End || f.SpreadRange != 3 {
			t.Fatalf("new flame should be zero length with full range, got %+v", f)
		}
	}
	if blast.Lifetime() != DefaultBlastLifetime || blast.SpreadDone() {
		t.Fatalf("unexpected initial blast state: lifetime %d, spread done %v", blast.Lifetime(), blast.SpreadDone())
	}
}

func TestBlastSpreadsThenExpires(t *testing.T) {
	const blastRange = 3
	blast := NewBlast(Cell{X: 7, Y: 4}, blastRange, true, true, true, true)
	if len(blast.Flames()) != 4 {
		t.Fatalf("expected 4 flames, got %d", len(blast.Flames()))
	}
	noHits := make([]bool, 4)

	for i := 1; i <= blastRange; i++ {
		blast = blast.Tick(noHits)
		if blast.Lifetime() != DefaultBlastLifetime {
			t.Fatalf("lifetime changed during spread at tick %d: %d", i, blast.Lifetime())
		}
	}
	for _, f := range blast.Flames() {
		if f.SpreadRange != 0 {
			t.Fatalf("flame still spreading after %d ticks: %+v", blastRange, f)
		}
	}
	if !blast.SpreadDone() {
		t.Fatal("spread should be done once every flame is frozen")
	}

	for i := 1; i <= DefaultBlastLifetime; i++ {
		blast = blast.Tick(noHits)
		if blast.Lifetime() != DefaultBlastLifetime-i {
			t.Fatalf("tick %d after spread: expected lifetime %d, got %d", i, DefaultBlastLifetime-i, blast.Lifetime())
		}
	}
	if !blast.Expired() {
		t.Fatal("blast should be expired")
	}
}

func TestBlastFlameFreezesOnImmediateWall(t *testing.T) {
	blast := NewBlast(Cell{X: 1, Y: 1}, 6, false, false, false, true)
	if len(blast.NextPositions()) != 1 {
		t.Fatalf("expected one look-ahead cell, got %v", blast.NextPositions())
	}

	blast = blast.Tick([]bool{true})
	flame := blast.Flames()[0]
	if flame.SpreadRange != 0 {
		t.Fatalf("expected frozen flame, got range %d", flame.SpreadRange)
	}
	if flame.End != (Cell{X: 2, Y: 1}) {
		t.Fatalf("frozen flame should not extend, end %v", flame.End)
	}
}

func TestBlastTickDoesNotMutateReceiver(t *testing.T) {
	blast := NewBlast(Cell{X: 3, Y: 3}, 2, true, true, true, true)
	before := blast.Flames()
	_ = blast.Tick(make([]bool, 4))
	after := blast.Flames()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("receiver flame %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestBlastCoversCenterAndFlames(t *testing.T) {
	blast := NewBlast(Cell{X: 4, Y: 4}, 1, true, false, false, true)
	blast = blast.Tick([]bool{false, false})

	for _, c := range []Cell{{X: 4, Y: 4}, {X: 4, Y: 5}, {X: 4, Y: 6}, {X: 5, Y: 4}, {X: 6, Y: 4}} {
		if !blast.Covers(c) {
			t.Errorf("expected blast to cover %v", c)
		}
	}
	if blast.Covers(Cell{X: 3, Y: 4}) {
		t.Error("blocked west side must not be covered")
	}
}
