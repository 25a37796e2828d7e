package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paisatrack/statement-engine/dto"
	"github.com/paisatrack/statement-engine/service"
)

type stubParser struct {
	result   *dto.ParseResult
	err      error
	gotData  []byte
	gotPass  string
	wasCalls int
}

func (s *stubParser) ParseStatement(ctx context.Context, pdfData []byte, password string, progress service.ProgressFunc) (*dto.ParseResult, error) {
	s.wasCalls++
	s.gotData = pdfData
	s.gotPass = password
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func setupRouter(parser *stubParser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewStatementHandler(parser, 10<<20, zerolog.Nop())
	router := gin.New()
	router.POST("/api/v1/statements/parse", h.ParseStatement)
	return router
}

func multipartUpload(t *testing.T, filename string, content []byte, password string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("statement", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if password != "" {
		require.NoError(t, writer.WriteField("password", password))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestParseStatementSuccess(t *testing.T) {
	parser := &stubParser{
		result: &dto.ParseResult{
			Mode: dto.ModeText,
			Transactions: []dto.Transaction{
				{
					ID:          "tx-1",
					Date:        time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC),
					Description: "SALARY ACME CORP",
					Amount:      75000,
					Type:        dto.TypeIncome,
					Category:    dto.CategorySalary,
					Confidence:  dto.ConfidenceText,
					Bank:        "Detected",
				},
				{
					ID:          "tx-2",
					Date:        time.Date(2023, time.March, 20, 0, 0, 0, 0, time.UTC),
					Description: "UPI XYZSTORE",
					Amount:      1250,
					Type:        dto.TypeExpense,
					Category:    dto.CategoryShopping,
					Confidence:  dto.ConfidenceText,
					Bank:        "Detected",
				},
			},
			Pages:       3,
			FailedPages: 1,
		},
	}
	router := setupRouter(parser)

	body, contentType := multipartUpload(t, "statement.pdf", []byte("%PDF-1.4 fake"), "secret")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, parser.wasCalls)
	assert.Equal(t, []byte("%PDF-1.4 fake"), parser.gotData)
	assert.Equal(t, "secret", parser.gotPass)

	var resp dto.ParseStatementResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ModeText, resp.Mode)
	assert.Len(t, resp.Transactions, 2)
	assert.Equal(t, 3, resp.Summary.Pages)
	assert.Equal(t, 1, resp.Summary.FailedPages)
	assert.Equal(t, 1, resp.Summary.IncomeCount)
	assert.Equal(t, 1, resp.Summary.ExpenseCount)
	assert.NotEmpty(t, resp.ProcessedAt)
}

func TestParseStatementMissingFile(t *testing.T) {
	parser := &stubParser{}
	router := setupRouter(parser)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements/parse", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, parser.wasCalls)
}

func TestParseStatementRejectsNonPDF(t *testing.T) {
	parser := &stubParser{}
	router := setupRouter(parser)

	body, contentType := multipartUpload(t, "statement.docx", []byte("not a pdf"), "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, parser.wasCalls)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "STATEMENT_PARSE_FAILED", resp.Error)
}

func TestParseStatementUnreadableDocument(t *testing.T) {
	parser := &stubParser{err: dto.ErrUnreadableDocument}
	router := setupRouter(parser)

	body, contentType := multipartUpload(t, "corrupt.pdf", []byte("garbage"), "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "could not read this file", resp.Message)
}

func TestParseStatementOCRWorkerUnavailable(t *testing.T) {
	parser := &stubParser{err: dto.ErrOCRWorkerInit}
	router := setupRouter(parser)

	body, contentType := multipartUpload(t, "scan.pdf", []byte("%PDF-1.4 scan"), "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/statements/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
