// Package graph builds adjacency matrices from extracted graph
// structure.
package graph

import (
	"graphpipe/internal/models"
)

// AdjacencyMatrix builds the undirected adjacency matrix for the given
// vertex order. Edges naming unknown vertices are ignored rather than
// rejected — vision models occasionally hallucinate an endpoint, and a
// partial matrix is still useful downstream.
func AdjacencyMatrix(vertices []string, edges []models.Edge) [][]int {
	idx := make(map[string]int, len(vertices))
	for i, v := range vertices {
		idx[v] = i
	}

	mat := make([][]int, len(vertices))
	for i := range mat {
		mat[i] = make([]int, len(vertices))
	}

	for _, e := range edges {
		i, ok1 := idx[e.From]
		j, ok2 := idx[e.To]
		if !ok1 || !ok2 {
			continue
		}
		mat[i][j] = 1
		mat[j][i] = 1
	}
	return mat
}
