package client

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/paisatrack/statement-engine/dto"
)

// TesseractClient holds the recognition settings shared by all workers.
type TesseractClient struct {
	dataPath string
	language string
}

func NewTesseractClient(dataPath, language string) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
		language: language,
	}
}

// RecognitionWorker is a scoped Tesseract session. One worker serves all
// pages of a single document parse and must be closed on every exit path.
type RecognitionWorker struct {
	client *gosseract.Client
}

// NewWorker initializes a Tesseract session. A failure here (usually
// missing tessdata assets) is fatal for the whole OCR path.
func (tc *TesseractClient) NewWorker() (*RecognitionWorker, error) {
	c := gosseract.NewClient()
	c.SetTessdataPrefix(tc.dataPath)

	if err := c.SetLanguage(tc.language); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to set language %q: %w", tc.language, err)
	}

	return &RecognitionWorker{client: c}, nil
}

// RecognizeWords runs word-level recognition over a page image and returns
// every recognized word with its bounding-box position and confidence.
func (w *RecognitionWorker) RecognizeWords(imagePath string) ([]dto.OCRWord, error) {
	if err := w.client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := w.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("word recognition failed: %w", err)
	}

	words := make([]dto.OCRWord, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, dto.OCRWord{
			Text:       box.Word,
			X:          float64(box.Box.Min.X),
			Y:          float64(box.Box.Min.Y),
			Confidence: box.Confidence,
		})
	}

	return words, nil
}

// Close releases the underlying Tesseract instance.
func (w *RecognitionWorker) Close() error {
	return w.client.Close()
}
