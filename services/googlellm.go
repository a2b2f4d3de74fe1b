package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// LLMModelName is the Gemini model a call goes to.
type LLMModelName int32

const (
	Flash25 LLMModelName = iota
	Pro25
	FlashLite25
	Flash20
	Flash20Lite
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite"
	case Flash20:
		return "gemini-2.0-flash"
	case Flash20Lite:
		return "gemini-2.0-flash-lite"
	default:
		return "gemini-2.5-flash"
	}
}

// ParseLLMModelName maps a configured model id to the enum, defaulting to Flash25.
func ParseLLMModelName(name string) LLMModelName {
	for _, m := range []LLMModelName{Flash25, Pro25, FlashLite25, Flash20, Flash20Lite} {
		if m.String() == name {
			return m
		}
	}
	return Flash25
}

// ErrContentViolation marks replies the model refused or blocked. Retrying
// the same input will not help.
var ErrContentViolation = errors.New("content violation")

func floatPointer(f float32) *float32 {
	return &f
}

type LLMResponse struct {
	Response           string `json:"response"`
	Model              string `json:"model"`
	InputTokenCount    int32  `json:"input_token_count"`
	ThoughtsTokenCount int32  `json:"thoughts_token_count"`
	OutputTokenCount   int32  `json:"output_token_count"`
	TotalTokenCount    int32  `json:"total_token_count"`
}

func NewGenaiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not set")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

type jsonRequest struct {
	Model             LLMModelName
	Parts             []*genai.Part
	SystemInstruction string
	Schema            *genai.Schema
	Temperature       float32
	MaxOutputTokens   int32
}

// generateJSON runs a single-candidate JSON generation and returns the raw
// reply text together with token usage.
func generateJSON(ctx context.Context, client *genai.Client, req jsonRequest) (*LLMResponse, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
		CandidateCount:   1,
		MaxOutputTokens:  req.MaxOutputTokens,
		Temperature:      floatPointer(req.Temperature),
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}

	result, err := client.Models.GenerateContent(ctx, req.Model.String(), []*genai.Content{{Parts: req.Parts}}, cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content with %s: %w", req.Model, err)
	}

	resp := &LLMResponse{Model: req.Model.String()}
	if result.UsageMetadata != nil {
		resp.InputTokenCount = result.UsageMetadata.PromptTokenCount
		resp.ThoughtsTokenCount = result.UsageMetadata.ThoughtsTokenCount
		resp.OutputTokenCount = result.UsageMetadata.CandidatesTokenCount
		resp.TotalTokenCount = result.UsageMetadata.TotalTokenCount
	}
	log.Ctx(ctx).Debug().
		Str("model", resp.Model).
		Int32("input_tokens", resp.InputTokenCount).
		Int32("output_tokens", resp.OutputTokenCount).
		Int32("total_tokens", resp.TotalTokenCount).
		Msg("gemini usage")

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked: %s %s", ErrContentViolation,
			result.PromptFeedback.BlockReason, result.PromptFeedback.BlockReasonMessage)
	}
	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("%w: blocked by safety setting %s", ErrContentViolation, rating.Category)
			}
		}
	}

	text := result.Text()
	if text == "" {
		return nil, errors.New("model returned no text")
	}
	resp.Response = text
	return resp, nil
}
