package service

import (
	"github.com/paisatrack/statement-engine/client"
	"github.com/paisatrack/statement-engine/dto"
)

// Recognizer hands out scoped recognition workers. One worker serves all
// pages of a single document parse.
type Recognizer interface {
	NewWorker() (RecognitionWorker, error)
}

// RecognitionWorker recognizes words on one page image and must be closed
// on every exit path.
type RecognitionWorker interface {
	RecognizeWords(imagePath string) ([]dto.OCRWord, error)
	Close() error
}

type tesseractRecognizer struct {
	client *client.TesseractClient
}

// NewTesseractRecognizer adapts the Tesseract client to the Recognizer
// surface the service depends on.
func NewTesseractRecognizer(tc *client.TesseractClient) Recognizer {
	return &tesseractRecognizer{client: tc}
}

func (r *tesseractRecognizer) NewWorker() (RecognitionWorker, error) {
	return r.client.NewWorker()
}
