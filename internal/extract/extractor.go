// Package extract performs the single budget-gated vision call that
// turns a graph drawing into vertices and edges.
package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"graphpipe/internal/catalog"
	"graphpipe/internal/graph"
	"graphpipe/internal/ledger"
	"graphpipe/internal/models"
)

const extractTimeout = 120 * time.Second

// Token estimates used for the pre-flight budget check; actual usage
// from the API response is what gets recorded afterwards.
const (
	estimatedInputTokens  = 1000
	estimatedOutputTokens = 200
)

// Confirmer asks the operator to approve a paid call. A false return is
// a cancellation, not an error.
type Confirmer func(prompt string) bool

// ChatCompleter is the slice of the OpenAI client the extractor needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Options configure one extraction run.
type Options struct {
	ModelID         string // explicit override; skips selection
	BudgetLimit     float64
	HardStop        bool // escalate a budget warning to an abort
	RequireApproval bool
	StrictVision    bool // refuse heuristic-tier models
	ForceRefresh    bool
	CheckVision     bool
}

// Extractor sequences the extraction pipeline as explicit steps:
// resolve model, check budget, confirm, invoke, record usage.
type Extractor struct {
	client  ChatCompleter
	cache   *catalog.Cache
	ledger  *ledger.Ledger
	confirm Confirmer
}

func NewExtractor(client ChatCompleter, cache *catalog.Cache, lgr *ledger.Ledger, confirm Confirmer) *Extractor {
	return &Extractor{client: client, cache: cache, ledger: lgr, confirm: confirm}
}

// resolveModel picks the model to use: the explicit override when
// given, otherwise the cheapest vision-qualified model from a
// refreshed-or-cached catalog.
func (e *Extractor) resolveModel(ctx context.Context, opts Options) (string, error) {
	if opts.ModelID != "" {
		return opts.ModelID, nil
	}

	snap := e.cache.Refresh(ctx, opts.ForceRefresh, opts.CheckVision)
	candidates := catalog.VisionQualified(snap, opts.StrictVision)
	chosen, cost, err := catalog.SelectCheapest(candidates)
	if err != nil {
		return "", err
	}
	if chosen.Heuristic {
		log.Warnf("Selected model %s by name heuristic only; its vision support was never confirmed.", chosen.ID)
	}
	log.Infof("Selected model %s (declared cost %.6f)", chosen.ID, cost)
	return chosen.ID, nil
}

func imageDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", path, err)
	}

	mime := "image/png"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".gif":
		mime = "image/gif"
	case ".webp":
		mime = "image/webp"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Extract runs the full pipeline for one image. Failures of the
// external call come back as models.ErrExtractionFailed wrappers, never
// as raw transport errors; a declined confirmation is
// models.ErrUserDeclined.
func (e *Extractor) Extract(ctx context.Context, imagePath string, opts Options) (*models.GraphResult, error) {
	modelID, err := e.resolveModel(ctx, opts)
	if err != nil {
		return nil, err
	}

	check := e.ledger.CheckBudget(modelID, estimatedInputTokens, estimatedOutputTokens, opts.BudgetLimit)
	if check.WouldExceed && opts.HardStop {
		return nil, fmt.Errorf("%w: projected $%.4f over limit $%.2f",
			models.ErrBudgetExceeded, check.ProjectedCost, check.Limit)
	}

	e.ledger.CostWarning(modelID, estimatedInputTokens+estimatedOutputTokens)

	if opts.RequireApproval {
		if !e.confirm(fmt.Sprintf("Proceed with extraction using model %s?", modelID)) {
			log.Infof("User cancelled API call for %s", modelID)
			return nil, models.ErrUserDeclined
		}
	}

	dataURL, err := imageDataURL(imagePath)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: modelID,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractionPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		log.Errorf("Graph extraction call to %s failed: %v", modelID, err)
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", models.ErrExtractionFailed)
	}

	vertices, edges, err := parseGraphContent(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	tokensIn, tokensOut := resp.Usage.PromptTokens, resp.Usage.CompletionTokens
	if resp.Usage.TotalTokens == 0 {
		// Gateway omitted usage; fall back to the pre-flight estimates.
		tokensIn, tokensOut = estimatedInputTokens, estimatedOutputTokens
	}
	cost := e.ledger.RecordCall(modelID, tokensIn, tokensOut)

	return &models.GraphResult{
		ModelID:   modelID,
		Vertices:  vertices,
		Edges:     edges,
		Adjacency: graph.AdjacencyMatrix(vertices, edges),
		CallCost:  cost,
	}, nil
}
