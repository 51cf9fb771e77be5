package catalog

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

// Minimal image for testing vision capability (1x1 white pixel PNG).
const tinyPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mP8/wcAAwAB/epv2AAAAABJRU5ErkJggg=="

const probeTimeout = 30 * time.Second

// Capability is the outcome of a single vision probe.
type Capability int

const (
	// CapabilityUnknown means the probe could not reach a verdict
	// (transport failure, auth error, server error). The model stays
	// unprobed and a later refresh may try again.
	CapabilityUnknown Capability = iota
	CapabilitySupported
	CapabilityUnsupported
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// VisionProber decides whether a model accepts image input.
type VisionProber interface {
	Probe(ctx context.Context, modelID string) Capability
}

// Prober empirically determines whether a model accepts image input by
// sending one minimal multimodal request. It is stateless and performs
// no retries; throttling across probes is the caller's concern.
type Prober struct {
	client chatClient
}

func NewProber(client chatClient) *Prober {
	return &Prober{client: client}
}

func (p *Prober) Probe(ctx context.Context, modelID string) Capability {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: modelID,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Describe this image."},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/png;base64," + tinyPNGBase64,
						},
					},
				},
			},
		},
		MaxTokens: 10, // Keep the request minimal
	}

	_, err := p.client.CreateChatCompletion(ctx, req)
	if err == nil {
		log.Infof("Model %s successfully processed a vision request.", modelID)
		return CapabilitySupported
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusBadRequest {
		msg := strings.ToLower(apiErr.Message)
		if strings.Contains(msg, "image") || strings.Contains(msg, "vision") || strings.Contains(msg, "input type") {
			log.Infof("Model %s likely does not support vision (API error: %d - %s)", modelID, apiErr.HTTPStatusCode, msg)
			return CapabilityUnsupported
		}
		// A 400 whose message says nothing about image input. Treated as
		// "no vision" rather than inconclusive; a wrongly excluded model
		// can be re-probed with a forced refresh.
		log.Warnf("Model %s returned 400 Bad Request, potentially no vision support: %s", modelID, apiErr.Message)
		return CapabilityUnsupported
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusBadRequest {
		// 400 with a body the client could not even parse.
		log.Warnf("Model %s returned 400 Bad Request, couldn't parse error details.", modelID)
		return CapabilityUnsupported
	}

	log.Warnf("Could not confirm vision capability for %s due to request error: %v", modelID, err)
	return CapabilityUnknown
}
