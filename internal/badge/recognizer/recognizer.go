// Package recognizer extracts raw text from conditioned badge images.
package recognizer

import "context"

// TextRecognizer turns an image into the raw text printed on it.
// Implementations return the text exactly as recognized, line breaks
// included; callers own all cleanup. An error means recognition itself
// failed, which downstream treats the same as an empty read.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}
