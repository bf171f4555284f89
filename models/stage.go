package models

import (
	"encoding/json"
	"fmt"
)

// Tile is the content of one stage cell. Tiles are replaced, never edited.
type Tile uint8

const (
	Ground Tile = iota
	SoftWall
	HardWall
)

// Stage dimensions are capped at the classic arena size.
const (
	MaxStageWidth  = 15
	MaxStageHeight = 9
)

// IsWall reports whether the tile blocks flames and movement.
func (t Tile) IsWall() bool {
	return t == SoftWall || t == HardWall
}

// Rune returns the layout character for the tile.
func (t Tile) Rune() rune {
	switch t {
	case SoftWall:
		return '+'
	case HardWall:
		return '#'
	default:
		return '.'
	}
}

func (t Tile) String() string {
	switch t {
	case Ground:
		return "ground"
	case SoftWall:
		return "soft_wall"
	case HardWall:
		return "hard_wall"
	default:
		return fmt.Sprintf("tile(%d)", uint8(t))
	}
}

func tileFromRune(r rune) (Tile, bool) {
	switch r {
	case '.':
		return Ground, true
	case '+':
		return SoftWall, true
	case '#':
		return HardWall, true
	default:
		return Ground, false
	}
}

// Stage is a fixed-size grid of tiles. It is a value: SetTile returns a new
// Stage and never touches the receiver's grid.
type Stage struct {
	width  int
	height int
	tiles  []Tile // row-major, index y*width + x
}

// NewStage returns a width x height stage filled with Ground.
func NewStage(width, height int) (Stage, error) {
	if width <= 0 || height <= 0 {
		return Stage{}, fmt.Errorf("%w: %dx%d", ErrInvalidStage, width, height)
	}
	if width > MaxStageWidth || height > MaxStageHeight {
		return Stage{}, fmt.Errorf("%w: %dx%d", ErrStageTooLarge, width, height)
	}
	return Stage{width: width, height: height, tiles: make([]Tile, width*height)}, nil
}

// ParseStage builds a stage from layout rows using '.' for Ground, '+' for
// SoftWall and '#' for HardWall. rows[0] is y = 0.
func ParseStage(rows []string) (Stage, error) {
	if len(rows) == 0 {
		return Stage{}, fmt.Errorf("%w: no rows", ErrInvalidStage)
	}
	width := len([]rune(rows[0]))
	stage, err := NewStage(width, len(rows))
	if err != nil {
		return Stage{}, err
	}
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return Stage{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidStage, y, len(runes), width)
		}
		for x, r := range runes {
			tile, ok := tileFromRune(r)
			if !ok {
				return Stage{}, fmt.Errorf("%w: unknown tile %q at (%d,%d)", ErrInvalidStage, r, x, y)
			}
			stage.tiles[y*width+x] = tile
		}
	}
	return stage, nil
}

func (s Stage) Width() int  { return s.width }
func (s Stage) Height() int { return s.height }

// InBounds reports whether c lies inside [0,width) x [0,height).
func (s Stage) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < s.width && c.Y >= 0 && c.Y < s.height
}

// Tile returns the tile at c, or ErrOutOfBounds.
func (s Stage) Tile(c Cell) (Tile, error) {
	if !s.InBounds(c) {
		return Ground, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, c.X, c.Y)
	}
	return s.tiles[c.Y*s.width+c.X], nil
}

// SetTile returns a copy of s with the tile at c replaced.
func (s Stage) SetTile(c Cell, t Tile) (Stage, error) {
	if !s.InBounds(c) {
		return s, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, c.X, c.Y)
	}
	next := s.Copy()
	next.tiles[c.Y*s.width+c.X] = t
	return next, nil
}

// Copy returns a stage that shares no storage with s.
func (s Stage) Copy() Stage {
	tiles := make([]Tile, len(s.tiles))
	copy(tiles, s.tiles)
	return Stage{width: s.width, height: s.height, tiles: tiles}
}

// Equal reports whether both stages have the same dimensions and tiles.
func (s Stage) Equal(other Stage) bool {
	if s.width != other.width || s.height != other.height || len(s.tiles) != len(other.tiles) {
		return false
	}
	for i := range s.tiles {
		if s.tiles[i] != other.tiles[i] {
			return false
		}
	}
	return true
}

// Layout renders the stage back into ParseStage rows.
func (s Stage) Layout() []string {
	rows := make([]string, s.height)
	for y := 0; y < s.height; y++ {
		row := make([]rune, s.width)
		for x := 0; x < s.width; x++ {
			row[x] = s.tiles[y*s.width+x].Rune()
		}
		rows[y] = string(row)
	}
	return rows
}

func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Layout())
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	parsed, err := ParseStage(rows)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
