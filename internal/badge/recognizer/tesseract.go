package recognizer

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is a TextRecognizer backed by the system Tesseract engine.
// A fresh client is created per call; gosseract clients are not safe for
// concurrent use and setup cost is negligible next to recognition itself.
type Tesseract struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewTesseract constructs a Tesseract recognizer. With no languages given
// it defaults to English.
func NewTesseract(languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// Recognize runs OCR over the image bytes and returns the raw text.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	client := t.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
