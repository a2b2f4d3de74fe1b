// Command catalog describes a single garment photo with the catalog model and
// prints the resulting wardrobe item as JSON. With --upload the prepared photo
// is also pushed to the bucket under catalog/<id>.jpg.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"myootd/config"
	"myootd/controllers"
	"myootd/logging"
	"myootd/services"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

func main() {
	imageFile := flag.StringP("image", "i", "", "garment photo (jpeg or png)")
	itemID := flag.String("id", "", "item id, generated when empty")
	imagePath := flag.String("image-path", "", "image_path stored on the item, defaults to assets/<id>.jpg")
	whiten := flag.Bool("whiten", false, "replace near-white backgrounds with pure white")
	threshold := flag.Uint8("threshold", 240, "background luminance threshold for --whiten")
	upload := flag.Bool("upload", false, "upload the prepared photo to the R2 bucket")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	if *imageFile == "" {
		flag.Usage()
		os.Exit(2)
	}
	raw, err := os.ReadFile(*imageFile)
	if err != nil {
		log.Fatal().Err(err).Msg("read image")
	}

	id := controllers.SanitizeItemID(*itemID)
	if id == "" {
		id = controllers.NewItemID()
	}
	if *imagePath == "" {
		*imagePath = filepath.ToSlash(filepath.Join("assets", id+".jpg"))
	}

	prepared, mimeType, err := services.PrepareCatalogImage(raw, services.CatalogImageMaxSide)
	if err != nil {
		log.Fatal().Err(err).Msg("prepare image")
	}
	if *whiten {
		img, err := imaging.Decode(bytes.NewReader(prepared))
		if err != nil {
			log.Fatal().Err(err).Msg("decode prepared image")
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, services.WhitenBackground(img, *threshold, 4), imaging.JPEG); err != nil {
			log.Fatal().Err(err).Msg("encode whitened image")
		}
		prepared = buf.Bytes()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := services.NewGenaiClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("genai client")
	}
	analyzer := services.NewGeminiCatalogAnalyzer(client, services.ParseLLMModelName(cfg.Gemini.CatalogModel))
	item, usage, err := analyzer.AnalyzeClothing(ctx, prepared, mimeType, id, *imagePath)
	if err != nil {
		log.Fatal().Err(err).Msg("analyze clothing")
	}
	log.Info().Str("item", item.ID).Int32("tokens", usage.TotalTokenCount).Msg("item cataloged")

	if *upload {
		if !cfg.R2.Enabled() {
			log.Fatal().Msg("--upload needs R2_BUCKET_NAME and R2_ACCOUNT_ID")
		}
		awsService := &services.AWSService{Config: cfg.R2}
		if err := awsService.InitPresignClient(ctx); err != nil {
			log.Fatal().Err(err).Msg("r2 presign client")
		}
		objectKey := controllers.CatalogObjectKey(id, ".jpg")
		url, err := awsService.PresignLink(ctx, cfg.R2.BucketName, objectKey)
		if err != nil {
			log.Fatal().Err(err).Msg("presign upload")
		}
		if _, err := awsService.UploadToPresignedURL(ctx, url, prepared); err != nil {
			log.Fatal().Err(err).Msg("upload image")
		}
		item.ImagePath = objectKey
		log.Info().Str("key", objectKey).Msg("image uploaded")
	}

	out, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("encode item")
	}
	fmt.Println(string(out))
}
