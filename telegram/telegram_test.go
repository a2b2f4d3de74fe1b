package telegram

import (
	"context"
	"fmt"
	"testing"

	"myootd/models"
	"myootd/outfits"
	"myootd/services"
	"myootd/test"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func command(text string, length int) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 7,
		Text:      text,
		Chat:      &tgbotapi.Chat{ID: 42},
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestParseOutfitCommand(t *testing.T) {
	cases := []struct {
		args string
		want services.RecommendationRequest
	}{
		{"", services.RecommendationRequest{City: "Algiers", Formality: models.FormalityCasual}},
		{"paris", services.RecommendationRequest{City: "Paris", Formality: models.FormalityCasual}},
		{"new york formal", services.RecommendationRequest{City: "New York", Formality: models.FormalityFormal}},
		{"Oslo semi-formal Navy Blue", services.RecommendationRequest{City: "Oslo", Formality: models.FormalitySemiFormal, Color: "Navy Blue"}},
		{"formal", services.RecommendationRequest{City: "Formal", Formality: models.FormalityCasual}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseOutfitCommand(tc.args, "Algiers", models.FormalityCasual), tc.args)
	}
}

func TestFormatRecommendation(t *testing.T) {
	result := &services.RecommendationResult{
		City:        "Algiers",
		Temperature: 24.24,
		Formality:   models.FormalityCasual,
		WarmthBand:  outfits.Band{Min: 2, Max: 3},
		TopOutfits: []models.RankedOutfit{{
			Items:       []models.ClothingItem{test.FakeItem("item_001", "White_Tee", "Top", 1), test.FakeItem("item_002", "Navy Chinos", "Bottom", 2)},
			TotalWarmth: 2,
			StylistNote: "Easy *and* light.",
		}},
	}

	text := FormatRecommendation(result)
	assert.Contains(t, text, "*Outfits for Algiers* (24.2°C, Casual)")
	assert.Contains(t, text, "Warmth band 2-3")
	assert.Contains(t, text, "1. White\\_Tee + Navy Chinos (warmth 2)")
	assert.Contains(t, text, "_Easy \\*and\\* light._")

	result.TopOutfits = nil
	assert.Contains(t, FormatRecommendation(result), "Nothing in the wardrobe fits")
}

func TestReplyOutfit(t *testing.T) {
	recommender := &test.RecommenderMock{Result: &services.RecommendationResult{City: "Paris", Formality: models.FormalityFormal}}
	bot := &OutfitBot{Recommender: recommender, DefaultCity: "Algiers", DefaultFormality: models.FormalityCasual}

	reply := bot.Reply(context.Background(), command("/outfit paris formal", 7))
	require.NotNil(t, reply)
	assert.Equal(t, int64(42), reply.ChatID)
	assert.Equal(t, 7, reply.ReplyToMessageID)
	assert.Equal(t, tgbotapi.ModeMarkdown, reply.ParseMode)
	assert.Contains(t, reply.Text, "Outfits for Paris")
	assert.Equal(t, services.RecommendationRequest{City: "Paris", Formality: models.FormalityFormal}, recommender.Last())
}

func TestReplyWeatherFailure(t *testing.T) {
	recommender := &test.RecommenderMock{Err: fmt.Errorf("weather: %w", services.ErrWeatherUnavailable)}
	bot := &OutfitBot{Recommender: recommender, DefaultCity: "Algiers", DefaultFormality: models.FormalityCasual}

	reply := bot.Reply(context.Background(), command("/outfit", 7))
	require.NotNil(t, reply)
	assert.Contains(t, reply.Text, "Could not get the weather for Algiers")
}

func TestReplyIgnoresOtherMessages(t *testing.T) {
	bot := &OutfitBot{Recommender: &test.RecommenderMock{}}

	assert.Nil(t, bot.Reply(context.Background(), nil))
	assert.Nil(t, bot.Reply(context.Background(), &tgbotapi.Message{Text: "hello", Chat: &tgbotapi.Chat{ID: 1}}))
	assert.Nil(t, bot.Reply(context.Background(), command("/weather", 8)))

	start := bot.Reply(context.Background(), command("/start", 6))
	require.NotNil(t, start)
	assert.Contains(t, start.Text, "/outfit <city>")
}
