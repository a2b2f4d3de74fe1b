package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"myootd/models"

	"google.golang.org/genai"
)

// ErrRankingUnavailable means the ranker could not produce a usable
// selection. Callers decide what to serve instead.
var ErrRankingUnavailable = errors.New("ranking unavailable")

const DefaultStylistNote = "A stylish choice that balances your preferences with the current weather."

type RankingContext struct {
	Temperature    float64
	Formality      models.Formality
	PreferredColor string
	TopK           int
}

type OutfitRanker interface {
	Rank(ctx context.Context, candidates []models.OutfitCandidate, rc RankingContext) ([]models.RankedOutfit, error)
}

type OutfitSelection struct {
	OutfitIndex int    `json:"outfit_index"`
	StylistNote string `json:"stylist_note"`
}

type RankingReply struct {
	TopOutfits []OutfitSelection `json:"top_outfits"`
}

// FirstKFallback returns the first k candidates in discovery order with the
// default stylist note.
func FirstKFallback(candidates []models.OutfitCandidate, k int) []models.RankedOutfit {
	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]models.RankedOutfit, 0, k)
	for _, c := range candidates[:k] {
		out = append(out, models.NewRankedOutfit(c, DefaultStylistNote))
	}
	return out
}

const rankingSystemInstruction = "You are an elite high-fashion stylist for a luxury concierge service. " +
	"Your tone is sophisticated, encouraging and expert. Return only JSON."

func BuildRankingPrompt(candidates []models.OutfitCandidate, rc RankingContext) string {
	color := rc.PreferredColor
	if color == "" {
		color = "None (use your expert judgment)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "### CONTEXT\n")
	fmt.Fprintf(&b, "- Temperature: %.1f°C\n", rc.Temperature)
	fmt.Fprintf(&b, "- Occasion/Formality: %s\n", rc.Formality)
	fmt.Fprintf(&b, "- User Color Preference: %s\n\n", color)
	fmt.Fprintf(&b, "### TASK\n")
	fmt.Fprintf(&b, "From the OUTFITS below, select the %d BEST combinations that balance color harmony, "+
		"appropriate warmth for %.1f°C and the %s dress code.\n\n", rc.TopK, rc.Temperature, rc.Formality)
	b.WriteString("### STYLING RULES\n")
	b.WriteString("1. Color Theory: prioritize complementary colors or sophisticated monochromatic looks.\n")
	fmt.Fprintf(&b, "2. Weather Logic: at %.1f°C the layering must make sense.\n", rc.Temperature)
	b.WriteString("3. Note Quality: each stylist_note explains why the pieces work together in about 15 words, " +
		"mentioning a specific detail such as texture, silhouette or color.\n\n")
	b.WriteString("### OUTPUT FORMAT\n")
	b.WriteString(`{"top_outfits": [{"outfit_index": 1, "stylist_note": "..."}]}` + "\n")
	b.WriteString("outfit_index is the number shown before the outfit.\n\n")
	b.WriteString("### OUTFITS TO EVALUATE\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "#%d: %s (warmth %d)\n", i+1, strings.Join(c.Names(), ", "), c.TotalWarmth)
	}
	return b.String()
}

// ParseRankingReply maps a model reply onto the candidates. Indices are
// 1-based; out of range and repeated selections are skipped. A reply that
// does not parse or selects nothing usable is ErrRankingUnavailable.
func ParseRankingReply(text string, candidates []models.OutfitCandidate, topK int) ([]models.RankedOutfit, error) {
	var reply RankingReply
	if err := json.Unmarshal([]byte(CleanAIResponseText(text)), &reply); err != nil {
		return nil, fmt.Errorf("%w: malformed reply: %v", ErrRankingUnavailable, err)
	}

	picked := map[int]bool{}
	var out []models.RankedOutfit
	for _, sel := range reply.TopOutfits {
		idx := sel.OutfitIndex - 1
		if idx < 0 || idx >= len(candidates) || picked[idx] {
			continue
		}
		picked[idx] = true
		note := strings.TrimSpace(sel.StylistNote)
		if note == "" {
			note = DefaultStylistNote
		}
		out = append(out, models.NewRankedOutfit(candidates[idx], note))
		if topK > 0 && len(out) == topK {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: reply selected no valid outfit", ErrRankingUnavailable)
	}
	return out, nil
}

var rankingSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"top_outfits": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"outfit_index": {Type: genai.TypeInteger},
					"stylist_note": {Type: genai.TypeString},
				},
				Required: []string{"outfit_index", "stylist_note"},
			},
		},
	},
	Required: []string{"top_outfits"},
}

type GeminiOutfitRanker struct {
	client *genai.Client
	Model  LLMModelName
}

func NewGeminiOutfitRanker(client *genai.Client, model LLMModelName) *GeminiOutfitRanker {
	return &GeminiOutfitRanker{client: client, Model: model}
}

func (r *GeminiOutfitRanker) Rank(ctx context.Context, candidates []models.OutfitCandidate, rc RankingContext) ([]models.RankedOutfit, error) {
	if len(candidates) == 0 {
		return []models.RankedOutfit{}, nil
	}
	resp, err := generateJSON(ctx, r.client, jsonRequest{
		Model:             r.Model,
		Parts:             []*genai.Part{{Text: BuildRankingPrompt(candidates, rc)}},
		SystemInstruction: rankingSystemInstruction,
		Schema:            rankingSchema,
		Temperature:       0.7,
		MaxOutputTokens:   4096,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRankingUnavailable, err)
	}
	return ParseRankingReply(resp.Response, candidates, rc.TopK)
}

// UnavailableRanker is used when no model is configured. Every request is
// served by the fallback policy.
type UnavailableRanker struct {
	Reason string
}

func (r UnavailableRanker) Rank(ctx context.Context, candidates []models.OutfitCandidate, rc RankingContext) ([]models.RankedOutfit, error) {
	return nil, fmt.Errorf("%w: %s", ErrRankingUnavailable, r.Reason)
}
