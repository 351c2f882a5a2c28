package service

import (
	"math/rand"
	"strings"
)

// slotSymbols is the 8-symbol alphabet. Every cell of the grid is drawn from
// it independently and uniformly.
var slotSymbols = []string{"🍒", "🍋", "🍊", "🍉", "🔔", "⭐", "💎", "🎰"}

// slotPayouts maps a winning symbol to its payout in doubloons.
// Symbols outside the table pay nothing.
var slotPayouts = map[string]int64{
	"🍒": 3,
	"🍋": 3,
	"🍊": 3,
	"🍉": 3,
	"🔔": 5,
	"⭐": 5,
	"💎": 10,
	"🎰": 15,
}

// SlotGrid is a 3×3 grid of symbols, [row][col]
type SlotGrid [3][3]string

// slotLines are the 8 paylines: rows, then columns, then the two diagonals.
// Evaluation order matters; the first monochrome line wins.
var slotLines = [8][3][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// SpinGrid produces a fresh grid of independently drawn symbols
func SpinGrid(rng *rand.Rand) SlotGrid {
	var grid SlotGrid
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			grid[row][col] = slotSymbols[rng.Intn(len(slotSymbols))]
		}
	}
	return grid
}

// EvaluateGrid checks the 8 paylines in fixed order and returns whether the
// grid won, the winning symbol, and its payout. Simultaneous winning lines
// resolve to the first in line order; payouts are never combined.
func EvaluateGrid(grid SlotGrid) (won bool, symbol string, payout int64) {
	for _, line := range slotLines {
		a := grid[line[0][0]][line[0][1]]
		b := grid[line[1][0]][line[1][1]]
		c := grid[line[2][0]][line[2][1]]
		if a == b && b == c {
			return true, a, slotPayouts[a]
		}
	}
	return false, "", 0
}

// String renders the grid row-major with space-separated symbols, one row per line
func (g SlotGrid) String() string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(g[row][:], " "))
	}
	return sb.String()
}
