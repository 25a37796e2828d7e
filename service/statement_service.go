package service

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/paisatrack/statement-engine/config"
	"github.com/paisatrack/statement-engine/dto"
	"github.com/paisatrack/statement-engine/utils"
)

// ProgressFunc receives a percentage (0-100) as OCR advances through the
// document. It is only invoked on the OCR path.
type ProgressFunc func(percent int)

// StatementService runs the full extraction and classification pipeline
// for one uploaded statement. It is stateless across documents; each parse
// is an independent computation over the document's extracted lines.
type StatementService struct {
	cfg        *config.Config
	recognizer Recognizer
	pdf        PDFProcessor
	log        zerolog.Logger
}

func NewStatementService(cfg *config.Config, recognizer Recognizer, pdf PDFProcessor, log zerolog.Logger) *StatementService {
	return &StatementService{
		cfg:        cfg,
		recognizer: recognizer,
		pdf:        pdf,
		log:        log,
	}
}

// ParseStatement extracts and classifies every qualifying transaction row
// of the document. Page-level failures degrade the result set; only
// failures that prevent any output (unreadable document, recognition
// worker init) are returned as errors.
func (s *StatementService) ParseStatement(ctx context.Context, pdfData []byte, password string, progress ProgressFunc) (*dto.ParseResult, error) {
	pages, err := s.pdf.PageCount(pdfData, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrUnreadableDocument, err)
	}

	mode := s.detectMode(pdfData, pages)
	s.log.Info().Int("pages", pages).Str("mode", string(mode)).Msg("statement parse started")

	var (
		lines       []string
		failedPages int
		confidence  int
	)
	switch mode {
	case dto.ModeText:
		lines, failedPages = s.extractTextLines(pdfData, pages)
		confidence = dto.ConfidenceText
	default:
		lines, failedPages, err = s.extractOCRLines(ctx, pdfData, progress)
		if err != nil {
			return nil, err
		}
		confidence = dto.ConfidenceOCR
	}

	parser := utils.NewLineParser(s.cfg.MinLineLength, s.cfg.MaxDescriptionLength)
	transactions := make([]dto.Transaction, 0)
	for _, line := range lines {
		if tx, ok := parser.ParseLine(line, confidence); ok {
			transactions = append(transactions, tx)
		}
	}

	s.log.Info().
		Int("lines", len(lines)).
		Int("transactions", len(transactions)).
		Int("failed_pages", failedPages).
		Msg("statement parse finished")

	return &dto.ParseResult{
		Mode:         mode,
		Transactions: transactions,
		Pages:        pages,
		FailedPages:  failedPages,
	}, nil
}

// detectMode samples the text layer and decides whether it is trustworthy.
// Scanned documents either have no text layer at all or yield encoding
// garbage from identity-mapped fonts; both show up as a low readable
// ratio. The check runs once per document on a bounded prefix; the page
// cap keeps a fully scanned document from forcing a text-extraction pass
// over every page just to learn the layer is empty.
func (s *StatementService) detectMode(pdfData []byte, pages int) dto.ParseMode {
	samplePages := pages
	if samplePages > s.cfg.SamplePages {
		samplePages = s.cfg.SamplePages
	}

	var sample []rune
	for page := 1; page <= samplePages && len(sample) < s.cfg.SampleSize; page++ {
		tokens, err := s.pdf.ExtractPageTokens(pdfData, page)
		if err != nil {
			continue
		}
		for _, line := range utils.RowsFromTokens(tokens) {
			sample = append(sample, []rune(line)...)
			sample = append(sample, '\n')
		}
	}
	if len(sample) > s.cfg.SampleSize {
		sample = sample[:s.cfg.SampleSize]
	}

	total := 0
	readable := 0
	for _, r := range sample {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if isReadableChar(r) {
			readable++
		}
	}
	if total < s.cfg.MinSampleLength {
		return dto.ModeOCR
	}
	if float64(readable)/float64(total) < s.cfg.ReadableRatio {
		return dto.ModeOCR
	}
	return dto.ModeText
}

// isReadableChar uses a strict ASCII set plus the rupee sign. Broad
// unicode classes match the accented garbage produced by identity-encoded
// fonts and would defeat the check.
func isReadableChar(r rune) bool {
	if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
		return true
	}
	switch r {
	case '.', ',', '-', '/', ':', ';', '(', ')', '\'', '"', '@', '#',
		'%', '&', '*', '+', '=', '₹':
		return true
	}
	return false
}

// extractTextLines pulls the text layer page by page in fixed-size batches:
// pages within a batch extract concurrently, batches run sequentially.
// This bounds peak work on very large statements while overlapping the
// per-page cost. Batch results are re-sorted into page order because
// goroutine completion order is not page order.
func (s *StatementService) extractTextLines(pdfData []byte, pages int) ([]string, int) {
	var (
		lines  []string
		failed int
	)

	batchSize := s.cfg.PageBatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	for start := 1; start <= pages; start += batchSize {
		end := start + batchSize - 1
		if end > pages {
			end = pages
		}

		batch := make([][]string, end-start+1)
		var wg sync.WaitGroup
		var mu sync.Mutex

		for page := start; page <= end; page++ {
			wg.Add(1)
			go func(page int) {
				defer wg.Done()
				tokens, err := s.pdf.ExtractPageTokens(pdfData, page)
				if err != nil {
					s.log.Warn().Err(err).Int("page", page).Msg("page text extraction failed")
					mu.Lock()
					failed++
					mu.Unlock()
					return
				}
				batch[page-start] = utils.RowsFromTokens(tokens)
			}(page)
		}
		wg.Wait()

		for _, pageLines := range batch {
			lines = append(lines, pageLines...)
		}
	}

	return lines, failed
}

// extractOCRLines renders and recognizes pages strictly sequentially: the
// recognition worker is a single scoped resource shared by every page of
// this parse. The worker is released on every exit path, and cancellation
// is honored between pages.
func (s *StatementService) extractOCRLines(ctx context.Context, pdfData []byte, progress ProgressFunc) ([]string, int, error) {
	worker, err := s.recognizer.NewWorker()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", dto.ErrOCRWorkerInit, err)
	}
	defer worker.Close()

	raster, err := s.pdf.OpenRaster(pdfData)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", dto.ErrUnreadableDocument, err)
	}
	defer raster.Close()

	pages := raster.PageCount()
	var (
		lines  []string
		failed int
	)

	for page := 0; page < pages; page++ {
		select {
		case <-ctx.Done():
			return nil, failed, ctx.Err()
		default:
		}

		pageLines, err := s.recognizePage(worker, raster, page)
		if err != nil {
			s.log.Warn().Err(err).Int("page", page+1).Msg("page recognition failed")
			failed++
		} else {
			lines = append(lines, pageLines...)
		}

		if progress != nil {
			progress((page + 1) * 100 / pages)
		}
	}

	return lines, failed, nil
}

func (s *StatementService) recognizePage(worker RecognitionWorker, raster RasterDocument, page int) ([]string, error) {
	img, err := raster.Render(page, s.cfg.RenderDPI)
	if err != nil {
		return nil, err
	}

	imgPath, err := saveImageToTempFile(img)
	if err != nil {
		return nil, err
	}
	defer os.Remove(imgPath)

	words, err := worker.RecognizeWords(imgPath)
	if err != nil {
		return nil, err
	}

	confident := words[:0]
	for _, w := range words {
		if w.Confidence >= s.cfg.OCRMinWordConfidence {
			confident = append(confident, w)
		}
	}

	return utils.RowsFromWords(confident, s.cfg.OCRRowTolerance, s.cfg.OCRMinLineLength), nil
}

// saveImageToTempFile saves a rendered page to a temporary PNG file.
func saveImageToTempFile(img image.Image) (string, error) {
	tempFile, err := os.CreateTemp("", "statement-page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp image file: %w", err)
	}
	defer tempFile.Close()

	if err := png.Encode(tempFile, img); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}

	return tempFile.Name(), nil
}
