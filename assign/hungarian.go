// Package assign implements the optimal bipartite assignment used by the
// primitive-list (§4.6) and record-list (§4.7) comparators: given an
// n×m similarity matrix, find a matching of size min(n,m) that maximizes
// total similarity. Any O(n^3) routine suffices per §9; this is the
// classic Jonker-style shortest-augmenting-path Hungarian algorithm
// (the "e-maxx" formulation), adapted to rectangular matrices directly
// rather than padding to square with dummy rows/columns — a matching of
// size min(n,m) falls out naturally when the smaller side is iterated as
// "rows".
package assign

import "math"

// Pair is one matched (row, col) index from the similarity matrix, with
// its similarity score carried along so callers don't have to re-index.
type Pair struct {
	Row, Col int
	Score    float64
}

// Solve finds the assignment maximizing total similarity over sim, a
// dense n×m matrix (sim[i][j] in [0,1], any rectangular shape, including
// n or m == 0). The returned pairs are sorted by Row then Col, which
// together with the algorithm's internal tie-breaking (first column with
// minimal reduced cost, scanned in increasing column order; rows
// processed in increasing row order) makes the result fully
// deterministic for a given matrix.
func Solve(sim [][]float64) []Pair {
	n := len(sim)
	if n == 0 {
		return nil
	}
	m := len(sim[0])
	if m == 0 {
		return nil
	}

	transposed := false
	cost := sim
	if n > m {
		cost = transpose(sim)
		n, m = m, n
		transposed = true
	}

	// Build a minimization cost matrix: similarity in [0,1] -> cost
	// 1-similarity, so the shortest-augmenting-path formulation below
	// (which assumes costs, not scores) maximizes total similarity.
	a := make([][]float64, n+1)
	for i := 1; i <= n; i++ {
		a[i] = make([]float64, m+1)
		for j := 1; j <= m; j++ {
			a[i][j] = 1.0 - cost[i-1][j-1]
		}
	}

	const inf = math.MaxFloat64 / 2

	u := make([]float64, n+1)
	v := make([]float64, m+1)
	p := make([]int, m+1)
	way := make([]int, m+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, m+1)
		used := make([]bool, m+1)
		for j := 0; j <= m; j++ {
			minv[j] = inf
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := -1
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				cur := a[i0][j] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
			if j0 == 0 {
				break
			}
		}
	}

	pairs := make([]Pair, 0, n)
	for j := 1; j <= m; j++ {
		if p[j] == 0 {
			continue
		}
		row, col := p[j]-1, j-1
		score := cost[row][col]
		if transposed {
			pairs = append(pairs, Pair{Row: col, Col: row, Score: score})
		} else {
			pairs = append(pairs, Pair{Row: row, Col: col, Score: score})
		}
	}

	sortPairs(pairs)
	return pairs
}

func transpose(m [][]float64) [][]float64 {
	if len(m) == 0 {
		return nil
	}
	rows, cols := len(m), len(m[0])
	out := make([][]float64, cols)
	for j := 0; j < cols; j++ {
		out[j] = make([]float64, rows)
		for i := 0; i < rows; i++ {
			out[j][i] = m[i][j]
		}
	}
	return out
}

func sortPairs(pairs []Pair) {
	// Small n in practice (record/primitive lists); insertion sort keeps
	// this dependency-free and the ordering stable and explicit.
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && less(pairs[j], pairs[j-1]); j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
}

func less(a, b Pair) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}
