package service

import (
	"math/rand"
	"sync"
	"time"
)

// Shared entropy source. Handlers run on multiple goroutines, so access is
// serialized; the pure Pick/Spin functions stay injectable for tests.
var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RollRarity draws a rarity tier from the shared entropy source
func RollRarity() RarityTier {
	rngMu.Lock()
	defer rngMu.Unlock()
	return PickRarity(rng)
}

// RollJoinMessage renders a join announcement using the shared entropy source
func RollJoinMessage(rarity RarityTier, displayName, channelName string) string {
	rngMu.Lock()
	defer rngMu.Unlock()
	return FormatJoinMessage(rng, rarity, displayName, channelName)
}

// rollGrid spins a grid from the shared entropy source
func rollGrid() SlotGrid {
	rngMu.Lock()
	defer rngMu.Unlock()
	return SpinGrid(rng)
}
