package agent

import "math"

// FunnelBounds returns how far column heights stay non-increasing walking
// inward from each edge. left is the largest L with h[0] >= ... >= h[L];
// right is the smallest R with h[R] <= ... <= h[len-1].
func FunnelBounds(heights []int) (left, right int) {
	n := len(heights)
	if n == 0 {
		return -1, 0
	}
	left = 0
	for left+1 < n && heights[left+1] <= heights[left] {
		left++
	}
	right = n - 1
	for right-1 >= 0 && heights[right-1] <= heights[right] {
		right--
	}
	return left, right
}

// Cliff is a height step between two adjacent columns that a player-sized
// jump cannot clear.
type Cliff struct {
	Col    int  // Left column of the pair
	Height int  // Absolute height difference
	Funnel bool // Part of a ramp from an edge; otherwise a split
}

// Terrain is the traversability analysis of a height profile.
type Terrain struct {
	Left, Right int // Funnel bounds
	Cliffs      []Cliff
	Funnels     int
	Splits      int
}

// AnalyzeTerrain classifies every cliff of at least cliffHeight rows. A cliff
// whose higher column sits on the outward side of a valid ramp is a funnel;
// any other cliff splits the well.
func AnalyzeTerrain(heights []int, cliffHeight int) Terrain {
	t := Terrain{}
	t.Left, t.Right = FunnelBounds(heights)
	for i := 0; i+1 < len(heights); i++ {
		diff := heights[i] - heights[i+1]
		var funnel bool
		switch {
		case diff >= cliffHeight:
			funnel = i+1 <= t.Left
		case -diff >= cliffHeight:
			funnel = i >= t.Right
		default:
			continue
		}
		if funnel {
			t.Funnels++
		} else {
			t.Splits++
		}
		t.Cliffs = append(t.Cliffs, Cliff{Col: i, Height: absInt(diff), Funnel: funnel})
	}
	return t
}

// Penalty returns the funnel and split penalties. Funnel cliffs grow
// exponentially with the pair's distance from the nearer wall.
func (t Terrain) Penalty(cols int, funnelWeight, growth, splitWeight float64) (funnel, split float64) {
	for _, c := range t.Cliffs {
		if !c.Funnel {
			split += splitWeight
			continue
		}
		d := min(c.Col, cols-2-c.Col)
		funnel += funnelWeight * math.Pow(growth, float64(d))
	}
	return funnel, split
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
