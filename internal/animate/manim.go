// Package animate renders manim scene scripts from extracted graphs.
package animate

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"graphpipe/internal/models"
)

// The generated scene draws the graph, highlights each edge, fades in
// the adjacency matrix and highlights the matrix entries edge by edge.
const manimTemplate = `from manim import *

class GraphToAdjacency(Scene):
    def construct(self):
        vertices = {{.Vertices}}
        edges = {{.Edges}}
        g = Graph(vertices, edges, layout="circular")
        self.play(Create(g))
        self.wait(1)

        edge_objs = [g.edges[e] for e in edges]
        for eo in edge_objs:
            self.play(eo.animate.set_color(RED), run_time=0.5)
            self.wait(0.2)
            self.play(eo.animate.set_color(WHITE), run_time=0.2)

        self.wait(0.5)

        matrix_data = self.get_adjacency_matrix(vertices, edges)
        mat = IntegerMatrix(matrix_data)
        mat.next_to(g, RIGHT, buff=1)
        self.play(FadeIn(mat))
        self.wait(1)

        for e in edges:
            i = vertices.index(e[0])
            j = vertices.index(e[1])
            entry1 = mat.get_entries()[i*len(vertices)+j]
            entry2 = mat.get_entries()[j*len(vertices)+i]
            self.play(entry1.animate.set_color(YELLOW), entry2.animate.set_color(YELLOW), run_time=0.5)
            self.wait(0.2)
            self.play(entry1.animate.set_color(WHITE), entry2.animate.set_color(WHITE), run_time=0.2)
        self.wait(2)

    @staticmethod
    def get_adjacency_matrix(vertices, edges):
        n = len(vertices)
        idx = {v: i for i, v in enumerate(vertices)}
        mat = [[0]*n for _ in range(n)]
        for a, b in edges:
            i, j = idx[a], idx[b]
            mat[i][j] = 1
            mat[j][i] = 1
        return mat
`

var sceneTmpl = template.Must(
	template.New("manim").Delims("{{", "}}").Parse(manimTemplate),
)

func pyString(s string) string {
	return fmt.Sprintf("%q", s)
}

func pyVertexList(vertices []string) string {
	parts := make([]string, len(vertices))
	for i, v := range vertices {
		parts[i] = pyString(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func pyEdgeList(edges []models.Edge) string {
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = fmt.Sprintf("(%s, %s)", pyString(e.From), pyString(e.To))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// WriteScript renders the manim scene for the given graph.
func WriteScript(w io.Writer, vertices []string, edges []models.Edge) error {
	data := struct {
		Vertices string
		Edges    string
	}{
		Vertices: pyVertexList(vertices),
		Edges:    pyEdgeList(edges),
	}
	if err := sceneTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render manim script: %w", err)
	}
	return nil
}

// GenerateScript writes the manim scene to a file.
func GenerateScript(path string, vertices []string, edges []models.Edge) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manim script %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteScript(f, vertices, edges); err != nil {
		return err
	}
	return f.Close()
}
