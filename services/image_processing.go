package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"net/http"

	"github.com/disintegration/imaging"
)

// CatalogImageMaxSide bounds the longest side of images sent for cataloging.
const CatalogImageMaxSide = 1024

// PrepareCatalogImage decodes an uploaded photo, applies its EXIF
// orientation, shrinks it to fit maxSide and re-encodes it as JPEG.
func PrepareCatalogImage(imageBytes []byte, maxSide int) ([]byte, string, error) {
	if mimeType := http.DetectContentType(imageBytes); !allowedImageTypes[mimeType] {
		return nil, "", fmt.Errorf("unsupported image type: %s", mimeType)
	}
	img, err := imaging.Decode(bytes.NewReader(imageBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if maxSide > 0 && (bounds.Dx() > maxSide || bounds.Dy() > maxSide) {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(88)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// WhitenBackground replaces near-white studio backgrounds with pure white.
// Pixels at or above threshold luminance form the background mask, which is
// blurred by blurSigma so the subject edge fades instead of stepping.
func WhitenBackground(img image.Image, threshold uint8, blurSigma float64) *image.NRGBA {
	// imaging rebases everything to the origin
	src := imaging.Clone(img)
	bounds := src.Bounds()

	mask := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := src.NRGBAAt(x, y)
			luma := 0.299*float64(px.R) + 0.587*float64(px.G) + 0.114*float64(px.B)
			if luma >= float64(threshold) {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	soft := imaging.Blur(mask, blurSigma)

	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := src.NRGBAAt(x, y)
			keep := 1 - float64(soft.NRGBAAt(x, y).R)/255
			out.SetNRGBA(x, y, color.NRGBA{
				R: blendWhite(px.R, keep),
				G: blendWhite(px.G, keep),
				B: blendWhite(px.B, keep),
				A: px.A,
			})
		}
	}
	return out
}

func blendWhite(v uint8, keep float64) uint8 {
	return uint8(float64(v)*keep + 255*(1-keep) + 0.5)
}
