package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphpipe/internal/models"
)

func TestParseGraphContent(t *testing.T) {
	vertices, edges, err := parseGraphContent(`{"vertices": ["A", "B", "C"], "edges": [["A", "B"], ["B", "C"]]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, vertices)
	assert.Equal(t, []models.Edge{{From: "A", To: "B"}, {From: "B", To: "C"}}, edges)
}

func TestParseGraphContentToleratesFencesAndProse(t *testing.T) {
	content := "Here is the graph I found:\n```json\n" +
		`{"vertices": ["A", "B"], "edges": [["A", "B"]]}` +
		"\n```\nLet me know if you need anything else."
	vertices, edges, err := parseGraphContent(content)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, vertices)
	assert.Len(t, edges, 1)
}

func TestParseGraphContentNoJSON(t *testing.T) {
	_, _, err := parseGraphContent("I cannot see any graph in this image.")
	assert.True(t, errors.Is(err, models.ErrExtractionFailed))
}

func TestParseGraphContentInvalidJSON(t *testing.T) {
	_, _, err := parseGraphContent(`{"vertices": ["A", }`)
	assert.True(t, errors.Is(err, models.ErrExtractionFailed))
}

func TestParseGraphContentNoVertices(t *testing.T) {
	_, _, err := parseGraphContent(`{"vertices": [], "edges": []}`)
	assert.True(t, errors.Is(err, models.ErrExtractionFailed))
}

func TestParseGraphContentMalformedEdge(t *testing.T) {
	_, _, err := parseGraphContent(`{"vertices": ["A"], "edges": [["A"]]}`)
	assert.True(t, errors.Is(err, models.ErrExtractionFailed))
}
