package services

import "blast-arena/server/models"

// classicLayout is the 15x9 arena: hard pillars on odd/odd cells, soft walls
// everywhere else except the L-shaped pockets around the four spawn corners.
var classicLayout = []string{
	"..+++++++++++..",
	".#+#+#+#+#+#+#.",
	"+++++++++++++++",
	"+#+#+#+#+#+#+#+",
	"+++++++++++++++",
	"+#+#+#+#+#+#+#+",
	"+++++++++++++++",
	".#+#+#+#+#+#+#.",
	"..+++++++++++..",
}

// DefaultStage returns the classic arena.
func DefaultStage() models.Stage {
	stage, err := models.ParseStage(classicLayout)
	if err != nil {
		panic(err)
	}
	return stage
}

// spawnPoints are the corner cells players start on, in join order.
func spawnPoints(stage models.Stage) []models.Cell {
	w, h := stage.Width()-1, stage.Height()-1
	return []models.Cell{
		{X: 0, Y: 0},
		{X: w, Y: h},
		{X: w, Y: 0},
		{X: 0, Y: h},
	}
}
