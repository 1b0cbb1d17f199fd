package board

// FullRows returns the indexes of fully occupied rows, top to bottom.
func (g *Grid) FullRows() []int {
	var out []int
	for y := 0; y < g.rows; y++ {
		if n, _ := g.EmptyInRow(y); n == 0 {
			out = append(out, y)
		}
	}
	return out
}

// ClearRows removes the given rows and compacts the grid downward, inserting
// empty rows at the top. Rows not cleared keep their relative order. Returns
// the number of rows removed.
func (g *Grid) ClearRows(rows []int) int {
	if len(rows) == 0 {
		return 0
	}
	remove := make([]bool, g.rows)
	n := 0
	for _, y := range rows {
		if y >= 0 && y < g.rows && !remove[y] {
			remove[y] = true
			n++
		}
	}
	if n == 0 {
		return 0
	}

	dst := g.rows - 1
	for src := g.rows - 1; src >= 0; src-- {
		if remove[src] {
			continue
		}
		if dst != src {
			copy(g.cells[dst*g.cols:(dst+1)*g.cols], g.cells[src*g.cols:(src+1)*g.cols])
		}
		dst--
	}
	clear(g.cells[:(dst+1)*g.cols])
	g.version++
	return n
}

// ClearFullRows clears every full row and returns how many were removed.
func (g *Grid) ClearFullRows() int {
	return g.ClearRows(g.FullRows())
}
