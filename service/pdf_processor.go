package service

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/paisatrack/statement-engine/dto"
)

// PDFProcessor provides page-level access to an uploaded statement: the
// embedded text layer as positioned tokens, and rasterized pages for OCR.
type PDFProcessor interface {
	PageCount(pdfData []byte, password string) (int, error)
	ExtractPageTokens(pdfData []byte, pageNum int) ([]dto.TextToken, error)
	OpenRaster(pdfData []byte) (RasterDocument, error)
}

// RasterDocument renders pages of one document to images. It wraps a
// single native document handle and must be closed after use.
type RasterDocument interface {
	PageCount() int
	Render(pageNum int, dpi float64) (image.Image, error)
	Close() error
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// PageCount validates the document and returns its page count. A corrupt
// or wrongly-passworded upload fails here, before any extraction work.
func (p *pdfProcessor) PageCount(pdfData []byte, password string) (int, error) {
	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
	}

	count, err := api.PageCount(bytes.NewReader(pdfData), conf)
	if err != nil {
		return 0, fmt.Errorf("pdf validation failed: %w", err)
	}
	if count == 0 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return count, nil
}

// ExtractPageTokens returns the positioned text-layer tokens of one page
// (1-based). The library can panic on malformed content streams, so the
// call is fenced with a recover.
func (p *pdfProcessor) ExtractPageTokens(pdfData []byte, pageNum int) (tokens []dto.TextToken, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf text extraction crashed on page %d: %v", pageNum, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	if pageNum < 1 || pageNum > r.NumPage() {
		return nil, fmt.Errorf("page %d out of range (1-%d)", pageNum, r.NumPage())
	}

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return nil, nil
	}

	content := page.Content()
	tokens = make([]dto.TextToken, 0, len(content.Text))
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		tokens = append(tokens, dto.TextToken{Text: t.S, X: t.X, Y: t.Y})
	}
	return tokens, nil
}

func (p *pdfProcessor) OpenRaster(pdfData []byte) (RasterDocument, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf for rendering: %w", err)
	}
	return &fitzRaster{doc: doc}, nil
}

type fitzRaster struct {
	doc *fitz.Document
}

func (f *fitzRaster) PageCount() int {
	return f.doc.NumPage()
}

// Render rasterizes one page (0-based) at the given DPI. Upscaling beyond
// the 72dpi base measurably improves recognition on small statement fonts.
func (f *fitzRaster) Render(pageNum int, dpi float64) (image.Image, error) {
	img, err := f.doc.ImageDPI(pageNum, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", pageNum+1, err)
	}
	return img, nil
}

func (f *fitzRaster) Close() error {
	return f.doc.Close()
}
