package service

import (
	"fmt"
	"math/rand"
)

// RarityTier is the weighted random category attached to a join announcement
type RarityTier string

const (
	RarityCommon   RarityTier = "common"
	RarityUncommon RarityTier = "uncommon"
	RarityRare     RarityTier = "rare"
	RarityMythic   RarityTier = "mythic"
)

// rarityWeights are percentages and must sum to exactly 100. Tier selection
// walks them in this order against a uniform draw over [0,100).
var rarityWeights = []struct {
	tier   RarityTier
	weight float64
}{
	{RarityCommon, 70},
	{RarityUncommon, 20},
	{RarityRare, 8.75},
	{RarityMythic, 1.25},
}

var joinPhrases = map[RarityTier][]string{
	RarityCommon: {
		"joined",
		"appeared in",
		"hopped into",
		"slid into",
	},
	RarityUncommon: {
		"teleported to",
		"waltzed into",
		"materialized in",
		"warped into",
	},
	RarityRare: {
		"yeeted into",
		"flossed into",
		"dabbed into",
		"rickrolled into",
	},
	RarityMythic: {
		"became one with",
		"glitched into",
		"was forcibly summoned to",
		"is now trapped in",
	},
}

// PickRarity draws a rarity tier according to the declared weights.
// The trailing return guards against floating-point drift; it is unreachable
// while the weights sum to 100.
func PickRarity(rng *rand.Rand) RarityTier {
	roll := rng.Float64() * 100
	cum := 0.0
	for _, rw := range rarityWeights {
		cum += rw.weight
		if roll <= cum {
			return rw.tier
		}
	}
	return RarityCommon
}

// FormatJoinMessage renders the announcement line for a join, picking one of
// the tier's phrases uniformly.
func FormatJoinMessage(rng *rand.Rand, rarity RarityTier, displayName, channelName string) string {
	phrases := joinPhrases[rarity]
	if len(phrases) == 0 {
		phrases = joinPhrases[RarityCommon]
	}
	phrase := phrases[rng.Intn(len(phrases))]
	return fmt.Sprintf("%s %s %s", displayName, phrase, channelName)
}
