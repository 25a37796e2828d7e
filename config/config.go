package config

import (
	"os"
	"strconv"
)

// Config carries server settings plus the engine tunables that were
// empirically calibrated against Indian bank statement layouts. Every
// tunable can be overridden through the environment so accuracy can be
// adjusted per scanner/document quality without a rebuild.
type Config struct {
	ServerPort        string
	TesseractDataPath string
	OCRLanguage       string
	MaxFileSize       int64

	// Mode detection
	SampleSize      int     // chars of extracted text inspected
	SamplePages     int     // pages inspected at most while sampling
	MinSampleLength int     // below this the text layer is considered absent
	ReadableRatio   float64 // readable-char ratio below which OCR is used

	// Row reconstruction / OCR recognition
	OCRRowTolerance      float64 // px window for clustering word baselines
	OCRMinWordConfidence float64 // recognized words below this are dropped
	OCRMinLineLength     int     // shorter OCR lines are discarded
	RenderDPI            float64 // raster resolution for recognition

	// Line classification
	MinLineLength        int
	MaxDescriptionLength int

	// Batched text extraction
	PageBatchSize int
}

func LoadConfig() *Config {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	tessdataPath := os.Getenv("TESSDATA_PREFIX")
	if tessdataPath == "" {
		tessdataPath = "/usr/share/tesseract-ocr/5/tessdata"
	}

	ocrLanguage := os.Getenv("OCR_LANGUAGE")
	if ocrLanguage == "" {
		ocrLanguage = "eng"
	}

	return &Config{
		ServerPort:        serverPort,
		TesseractDataPath: tessdataPath,
		OCRLanguage:       ocrLanguage,
		MaxFileSize:       envInt64("MAX_FILE_SIZE", 32*1024*1024),

		SampleSize:      envInt("MODE_SAMPLE_SIZE", 1000),
		SamplePages:     envInt("MODE_SAMPLE_PAGES", 3),
		MinSampleLength: envInt("MODE_MIN_SAMPLE", 40),
		ReadableRatio:   envFloat("MODE_READABLE_RATIO", 0.4),

		OCRRowTolerance:      envFloat("OCR_ROW_TOLERANCE", 8),
		OCRMinWordConfidence: envFloat("OCR_MIN_WORD_CONFIDENCE", 40),
		OCRMinLineLength:     envInt("OCR_MIN_LINE_LENGTH", 6),
		RenderDPI:            envFloat("OCR_RENDER_DPI", 216),

		MinLineLength:        envInt("MIN_LINE_LENGTH", 10),
		MaxDescriptionLength: envInt("MAX_DESCRIPTION_LENGTH", 80),

		PageBatchSize: envInt("PAGE_BATCH_SIZE", 5),
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
