package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"graphpipe/internal/models"
)

// extractionPrompt instructs the vision model to answer with nothing
// but the structural JSON the parser expects.
const extractionPrompt = `You are given an image of an undirected graph drawing.
Identify every vertex label and every edge between labelled vertices.
Respond with a single JSON object and nothing else, in this exact shape:
{"vertices": ["A", "B"], "edges": [["A", "B"]]}`

// jsonBlock pulls the outermost JSON object out of a model reply,
// tolerating markdown fences and prose around it.
func jsonBlock(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// parseGraphContent interprets the model's reply. A reply without the
// expected structural markers is an extraction failure, not something
// to retry.
func parseGraphContent(content string) ([]string, []models.Edge, error) {
	block, ok := jsonBlock(content)
	if !ok {
		return nil, nil, fmt.Errorf("%w: response contains no JSON object", models.ErrExtractionFailed)
	}

	var parsed struct {
		Vertices []string   `json:"vertices"`
		Edges    [][]string `json:"edges"`
	}
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	if len(parsed.Vertices) == 0 {
		return nil, nil, fmt.Errorf("%w: response lists no vertices", models.ErrExtractionFailed)
	}

	edges := make([]models.Edge, 0, len(parsed.Edges))
	for _, pair := range parsed.Edges {
		if len(pair) != 2 {
			return nil, nil, fmt.Errorf("%w: malformed edge %v", models.ErrExtractionFailed, pair)
		}
		edges = append(edges, models.Edge{From: pair[0], To: pair[1]})
	}
	return parsed.Vertices, edges, nil
}
