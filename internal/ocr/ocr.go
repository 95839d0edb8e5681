// Package ocr acquires raw text from expense documents.
//
// The pipeline treats text acquisition as an opaque capability; this
// package defines that boundary and ships one remote implementation. Empty
// text is a valid, non-error result.
package ocr

import "context"

// TextExtractor extracts raw text from a document image.
type TextExtractor interface {
	ExtractText(ctx context.Context, document []byte, contentType string) (string, error)
}
