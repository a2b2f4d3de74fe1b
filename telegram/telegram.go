package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"myootd/languageutil"
	"myootd/models"
	"myootd/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const usage = "Send `/outfit <city> [formality] [color]` to get today's outfits.\n" +
	"Formality is one of Casual, Semi-Formal or Formal.\n" +
	"For example: `/outfit Paris formal navy`"

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

// ParseOutfitCommand reads "<city words> [formality] [color words]". The
// first word that names a formality ends the city.
func ParseOutfitCommand(args string, defaultCity string, defaultFormality models.Formality) services.RecommendationRequest {
	words := strings.Fields(args)
	req := services.RecommendationRequest{Formality: defaultFormality}

	split := len(words)
	for i := 1; i < len(words); i++ {
		if formality, ok := models.ParseFormality(words[i]); ok {
			req.Formality = formality
			split = i
			break
		}
	}
	req.City = languageutil.NormalizeCity(strings.Join(words[:split], " "), defaultCity)
	if split < len(words) {
		req.Color = strings.Join(words[split+1:], " ")
	}
	return req
}

func FormatRecommendation(result *services.RecommendationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Outfits for %s* (%.1f°C, %s)\n", EscapeMessage(result.City), result.Temperature, result.Formality)
	fmt.Fprintf(&b, "Warmth band %d-%d\n", result.WarmthBand.Min, result.WarmthBand.Max)

	if len(result.TopOutfits) == 0 {
		b.WriteString("\nNothing in the wardrobe fits this weather and dress code yet.")
		return b.String()
	}
	for i, outfit := range result.TopOutfits {
		names := make([]string, 0, len(outfit.Items))
		for _, item := range outfit.Items {
			names = append(names, EscapeMessage(item.Name))
		}
		fmt.Fprintf(&b, "\n%d. %s (warmth %d)\n", i+1, strings.Join(names, " + "), outfit.TotalWarmth)
		if outfit.StylistNote != "" {
			fmt.Fprintf(&b, "_%s_\n", EscapeMessage(outfit.StylistNote))
		}
	}
	return b.String()
}

type OutfitBot struct {
	Recommender      services.OutfitRecommender
	DefaultCity      string
	DefaultFormality models.Formality
}

// Reply builds the answer to a chat message, or nil when the message is
// not a command the bot knows.
func (bot *OutfitBot) Reply(ctx context.Context, message *tgbotapi.Message) *tgbotapi.MessageConfig {
	if message == nil || message.Chat == nil || !message.IsCommand() {
		return nil
	}

	var text string
	switch message.Command() {
	case "start", "help":
		text = usage
	case "outfit":
		req := ParseOutfitCommand(message.CommandArguments(), bot.DefaultCity, bot.DefaultFormality)
		result, err := bot.Recommender.Recommend(ctx, req)
		switch {
		case errors.Is(err, services.ErrWeatherUnavailable):
			text = fmt.Sprintf("Could not get the weather for %s right now, please try again later.", EscapeMessage(req.City))
		case err != nil:
			log.Ctx(ctx).Error().Err(err).Str("city", req.City).Msg("telegram recommendation failed")
			text = "Something went wrong while picking outfits, please try again."
		default:
			text = FormatRecommendation(result)
		}
	default:
		return nil
	}

	reply := tgbotapi.NewMessage(message.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.ReplyToMessageID = message.MessageID
	return &reply
}

// RunOutfitBot long-polls Telegram until ctx is cancelled.
func RunOutfitBot(ctx context.Context, token string, bot *OutfitBot) error {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	log.Info().Str("account", api.Self.UserName).Msg("telegram bot authorized")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			reply := bot.Reply(ctx, update.Message)
			if reply == nil {
				continue
			}
			if _, err := api.Send(*reply); err != nil {
				log.Warn().Err(err).Int64("chat", reply.ChatID).Msg("telegram reply not sent")
			}
		}
	}
}
