package solver

import (
	"sort"

	"github.com/notargets/gocaricature/utils"
)

// adjacency returns, for each row of a square matrix, the columns holding a
// nonzero off-diagonal value
func adjacency(A utils.CSR) (adj [][]int) {
	var (
		n, _ = A.Dims()
	)
	adj = make([][]int, n)
	for i := 0; i < n; i++ {
		cols, vals := A.Row(i)
		for k, j := range cols {
			if j != i && vals[k] != 0 {
				adj[i] = append(adj[i], j)
			}
		}
		sort.Ints(adj[i])
	}
	return
}

// components labels the connected components of the graph. Components are
// numbered in order of their smallest vertex.
func components(adj [][]int) (label []int, count int) {
	label = make([]int, len(adj))
	for i := range label {
		label[i] = -1
	}
	for seed := range adj {
		if label[seed] != -1 {
			continue
		}
		label[seed] = count
		queue := []int{seed}
		for q := 0; q < len(queue); q++ {
			for _, w := range adj[queue[q]] {
				if label[w] == -1 {
					label[w] = count
					queue = append(queue, w)
				}
			}
		}
		count++
	}
	return
}

// reverseCuthillMcKee orders the vertices selected by keep so that the
// nonzeros of the matrix cluster near the diagonal. The result lists original
// vertex indices in their new order.
func reverseCuthillMcKee(adj [][]int, keep []bool) (order []int) {
	var (
		n       = len(adj)
		visited = make([]bool, n)
		degree  = make([]int, n)
		seeds   []int
	)
	for i := 0; i < n; i++ {
		if !keep[i] {
			visited[i] = true
			continue
		}
		for _, j := range adj[i] {
			if keep[j] {
				degree[i]++
			}
		}
		seeds = append(seeds, i)
	}
	// each component starts from its lowest degree vertex
	sort.SliceStable(seeds, func(a, b int) bool { return degree[seeds[a]] < degree[seeds[b]] })
	order = make([]int, 0, len(seeds))
	for _, seed := range seeds {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		start := len(order)
		order = append(order, seed)
		for q := start; q < len(order); q++ {
			var next []int
			for _, w := range adj[order[q]] {
				if !visited[w] {
					visited[w] = true
					next = append(next, w)
				}
			}
			sort.SliceStable(next, func(a, b int) bool { return degree[next[a]] < degree[next[b]] })
			order = append(order, next...)
		}
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return
}

// bandwidth is the largest |pos[i]-pos[j]| over the kept nonzeros
func bandwidth(adj [][]int, pos []int) (k int) {
	for i, nbrs := range adj {
		if pos[i] < 0 {
			continue
		}
		for _, j := range nbrs {
			if pos[j] < 0 {
				continue
			}
			if d := pos[i] - pos[j]; d > k {
				k = d
			}
		}
	}
	return
}
