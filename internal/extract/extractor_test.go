package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphpipe/internal/config"
	"graphpipe/internal/ledger"
	"graphpipe/internal/models"
)

type fakeChatClient struct {
	resp  openai.ChatCompletionResponse
	err   error
	calls int
	last  openai.ChatCompletionRequest
}

func (f *fakeChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.last = req
	return f.resp, f.err
}

func graphResponse(content string, promptTokens, completionTokens int) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
		Usage: openai.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}
}

func testImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o644))
	return path
}

func newTestExtractor(t *testing.T, client ChatCompleter, approve bool) (*Extractor, *ledger.Ledger) {
	t.Helper()
	pricing := map[string]config.PricingInfo{
		"default": {InputPer1K: 0.01, OutputPer1K: 0.03},
	}
	lgr := ledger.New(filepath.Join(t.TempDir(), "usage.json"), pricing)
	ext := NewExtractor(client, nil, lgr, func(string) bool { return approve })
	return ext, lgr
}

func TestExtractSuccessWithModelOverride(t *testing.T) {
	client := &fakeChatClient{
		resp: graphResponse(`{"vertices": ["A", "B", "C"], "edges": [["A", "B"], ["B", "C"]]}`, 900, 40),
	}
	ext, lgr := newTestExtractor(t, client, true)

	result, err := ext.Extract(context.Background(), testImage(t), Options{
		ModelID:         "gpt-4o",
		BudgetLimit:     1.0,
		RequireApproval: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", result.ModelID)
	assert.Equal(t, []string{"A", "B", "C"}, result.Vertices)
	assert.Equal(t, [][]int{{0, 1, 0}, {1, 0, 1}, {0, 1, 0}}, result.Adjacency)
	assert.Greater(t, result.CallCost, 0.0)

	// Actual usage from the response is what got recorded.
	stats := lgr.Stats()
	assert.Equal(t, 1, stats.CallCount)
	assert.Equal(t, int64(900), stats.ByModel["gpt-4o"].InputTokens)
	assert.Equal(t, int64(40), stats.ByModel["gpt-4o"].OutputTokens)

	// The request actually carried the image.
	require.Len(t, client.last.Messages, 1)
	require.Len(t, client.last.Messages[0].MultiContent, 2)
	assert.Contains(t, client.last.Messages[0].MultiContent[1].ImageURL.URL, "data:image/png;base64,")
}

func TestExtractUserDeclined(t *testing.T) {
	client := &fakeChatClient{}
	ext, lgr := newTestExtractor(t, client, false)

	_, err := ext.Extract(context.Background(), testImage(t), Options{
		ModelID:         "gpt-4o",
		BudgetLimit:     1.0,
		RequireApproval: true,
	})
	assert.True(t, errors.Is(err, models.ErrUserDeclined))
	assert.Equal(t, 0, client.calls, "declined call must never reach the API")
	assert.Equal(t, 0, lgr.Stats().CallCount)
}

func TestExtractBudgetHardStop(t *testing.T) {
	client := &fakeChatClient{}
	ext, lgr := newTestExtractor(t, client, true)

	_, err := ext.Extract(context.Background(), testImage(t), Options{
		ModelID:     "gpt-4o",
		BudgetLimit: 0.0001,
		HardStop:    true,
	})
	assert.True(t, errors.Is(err, models.ErrBudgetExceeded))
	assert.Equal(t, 0, client.calls)
	assert.Equal(t, 0, lgr.Stats().CallCount)
}

func TestExtractBudgetAdvisoryContinues(t *testing.T) {
	client := &fakeChatClient{
		resp: graphResponse(`{"vertices": ["A"], "edges": []}`, 10, 5),
	}
	ext, _ := newTestExtractor(t, client, true)

	result, err := ext.Extract(context.Background(), testImage(t), Options{
		ModelID:     "gpt-4o",
		BudgetLimit: 0.0001, // would exceed, but HardStop is off
	})
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, []string{"A"}, result.Vertices)
}

func TestExtractTransportFailureIsTyped(t *testing.T) {
	client := &fakeChatClient{err: errors.New("dial tcp: connection refused")}
	ext, lgr := newTestExtractor(t, client, true)

	_, err := ext.Extract(context.Background(), testImage(t), Options{
		ModelID:     "gpt-4o",
		BudgetLimit: 1.0,
	})
	assert.True(t, errors.Is(err, models.ErrExtractionFailed))
	assert.Equal(t, 0, lgr.Stats().CallCount, "failed call must not be billed")
}

func TestExtractMalformedResponse(t *testing.T) {
	client := &fakeChatClient{
		resp: graphResponse("I see a drawing but cannot describe it as JSON.", 10, 5),
	}
	ext, lgr := newTestExtractor(t, client, true)

	_, err := ext.Extract(context.Background(), testImage(t), Options{
		ModelID:     "gpt-4o",
		BudgetLimit: 1.0,
	})
	assert.True(t, errors.Is(err, models.ErrExtractionFailed))
	assert.Equal(t, 0, lgr.Stats().CallCount)
}

func TestExtractMissingUsageFallsBackToEstimates(t *testing.T) {
	resp := graphResponse(`{"vertices": ["A"], "edges": []}`, 0, 0)
	resp.Usage = openai.Usage{}
	client := &fakeChatClient{resp: resp}
	ext, lgr := newTestExtractor(t, client, true)

	_, err := ext.Extract(context.Background(), testImage(t), Options{
		ModelID:     "gpt-4o",
		BudgetLimit: 1.0,
	})
	require.NoError(t, err)

	stats := lgr.Stats()
	assert.Equal(t, int64(estimatedInputTokens), stats.ByModel["gpt-4o"].InputTokens)
	assert.Equal(t, int64(estimatedOutputTokens), stats.ByModel["gpt-4o"].OutputTokens)
}

func TestExtractMissingImage(t *testing.T) {
	ext, _ := newTestExtractor(t, &fakeChatClient{}, true)
	_, err := ext.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.png"), Options{
		ModelID:     "gpt-4o",
		BudgetLimit: 1.0,
	})
	require.Error(t, err)
}
