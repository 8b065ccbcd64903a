package utils

import "math"

// CreateRankList returns 1-based ranks for count already ordered candidates.
// Ranks saturate at math.MaxUint16, the width of the wire field.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := range ranks {
		ranks[i] = uint16(min(i+1, math.MaxUint16))
	}
	return ranks
}
