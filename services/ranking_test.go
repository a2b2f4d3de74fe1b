package services

import (
	"context"
	"fmt"
	"testing"

	"myootd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidatesFixture(n int) []models.OutfitCandidate {
	out := make([]models.OutfitCandidate, 0, n)
	for i := 1; i <= n; i++ {
		top := &models.ClothingItem{ID: fmt.Sprintf("top_%d", i), Name: fmt.Sprintf("Top %d", i)}
		bottom := &models.ClothingItem{ID: fmt.Sprintf("bottom_%d", i), Name: fmt.Sprintf("Bottom %d", i)}
		out = append(out, models.OutfitCandidate{Items: []*models.ClothingItem{top, bottom}, TotalWarmth: i})
	}
	return out
}

func TestParseRankingReply(t *testing.T) {
	candidates := candidatesFixture(5)
	reply := "```json\n" + `{"top_outfits": [
		{"outfit_index": 4, "stylist_note": "Crisp contrast."},
		{"outfit_index": 9, "stylist_note": "Out of range."},
		{"outfit_index": 4, "stylist_note": "Repeated."},
		{"outfit_index": 1, "stylist_note": ""},
		{"outfit_index": 2, "stylist_note": "Soft layers."}
	]}` + "\n```"

	ranked, err := ParseRankingReply(reply, candidates, 3)
	require.NoError(t, err)

	require.Len(t, ranked, 3)
	assert.Equal(t, "top_4", ranked[0].Items[0].ID)
	assert.Equal(t, "Crisp contrast.", ranked[0].StylistNote)
	assert.Equal(t, 4, ranked[0].TotalWarmth)
	assert.Equal(t, "top_1", ranked[1].Items[0].ID)
	assert.Equal(t, DefaultStylistNote, ranked[1].StylistNote)
	assert.Equal(t, "top_2", ranked[2].Items[0].ID)
}

func TestParseRankingReplyMalformed(t *testing.T) {
	_, err := ParseRankingReply("I love all of them!", candidatesFixture(3), 3)
	assert.ErrorIs(t, err, ErrRankingUnavailable)
}

func TestParseRankingReplyNothingValid(t *testing.T) {
	_, err := ParseRankingReply(`{"top_outfits": [{"outfit_index": 0, "stylist_note": "zero"}]}`, candidatesFixture(3), 3)
	assert.ErrorIs(t, err, ErrRankingUnavailable)

	_, err = ParseRankingReply(`{"top_outfits": []}`, candidatesFixture(3), 3)
	assert.ErrorIs(t, err, ErrRankingUnavailable)
}

func TestFirstKFallback(t *testing.T) {
	ranked := FirstKFallback(candidatesFixture(5), 3)

	require.Len(t, ranked, 3)
	for i, r := range ranked {
		assert.Equal(t, fmt.Sprintf("top_%d", i+1), r.Items[0].ID)
		assert.Equal(t, DefaultStylistNote, r.StylistNote)
	}

	assert.Len(t, FirstKFallback(candidatesFixture(2), 3), 2)
	assert.Empty(t, FirstKFallback(nil, 3))
}

func TestBuildRankingPrompt(t *testing.T) {
	prompt := BuildRankingPrompt(candidatesFixture(2), RankingContext{
		Temperature: 18.4,
		Formality:   models.FormalityCasual,
		TopK:        3,
	})

	assert.Contains(t, prompt, "18.4°C")
	assert.Contains(t, prompt, "Casual")
	assert.Contains(t, prompt, "None (use your expert judgment)")
	assert.Contains(t, prompt, "select the 3 BEST")
	assert.Contains(t, prompt, "#1: Top 1, Bottom 1 (warmth 1)")
	assert.Contains(t, prompt, "#2: Top 2, Bottom 2 (warmth 2)")

	withColor := BuildRankingPrompt(candidatesFixture(1), RankingContext{PreferredColor: "navy", TopK: 2})
	assert.Contains(t, withColor, "User Color Preference: navy")
}

func TestUnavailableRanker(t *testing.T) {
	_, err := UnavailableRanker{Reason: "no api key"}.Rank(context.Background(), candidatesFixture(1), RankingContext{})
	assert.ErrorIs(t, err, ErrRankingUnavailable)
	assert.ErrorContains(t, err, "no api key")
}

func TestParseLLMModelName(t *testing.T) {
	assert.Equal(t, Flash20Lite, ParseLLMModelName("gemini-2.0-flash-lite"))
	assert.Equal(t, Pro25, ParseLLMModelName("gemini-2.5-pro"))
	assert.Equal(t, Flash25, ParseLLMModelName("something-else"))
}
