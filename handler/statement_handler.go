package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/paisatrack/statement-engine/dto"
	"github.com/paisatrack/statement-engine/service"
)

// StatementParser is the engine surface the handler depends on.
type StatementParser interface {
	ParseStatement(ctx context.Context, pdfData []byte, password string, progress service.ProgressFunc) (*dto.ParseResult, error)
}

type StatementHandler struct {
	parser      StatementParser
	maxFileSize int64
	log         zerolog.Logger
}

func NewStatementHandler(parser StatementParser, maxFileSize int64, log zerolog.Logger) *StatementHandler {
	return &StatementHandler{
		parser:      parser,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// ParseStatement handles the POST /statements/parse endpoint
func (h *StatementHandler) ParseStatement(c *gin.Context) {
	fileHeader, err := c.FormFile("statement")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "statement file is required", err)
		return
	}

	request := &dto.ParseStatementRequest{
		File:     fileHeader,
		Password: c.PostForm("password"),
	}
	if err := request.Validate(h.maxFileSize); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "failed to open uploaded file", err)
		return
	}
	defer file.Close()

	pdfData, err := io.ReadAll(file)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "failed to read uploaded file", err)
		return
	}

	h.log.Info().Str("filename", fileHeader.Filename).Int64("size", fileHeader.Size).Msg("parsing statement")

	result, err := h.parser.ParseStatement(c.Request.Context(), pdfData, request.Password, nil)
	if err != nil {
		switch {
		case errors.Is(err, dto.ErrUnreadableDocument):
			h.sendError(c, http.StatusUnprocessableEntity, "could not read this file", err)
		case errors.Is(err, dto.ErrOCRWorkerInit):
			h.sendError(c, http.StatusInternalServerError, "recognition engine unavailable", err)
		default:
			h.sendError(c, http.StatusInternalServerError, "failed to parse statement", err)
		}
		return
	}

	summary := dto.ParseSummary{
		Pages:       result.Pages,
		FailedPages: result.FailedPages,
	}
	for _, tx := range result.Transactions {
		if tx.Type == dto.TypeIncome {
			summary.IncomeCount++
		} else {
			summary.ExpenseCount++
		}
	}

	c.JSON(http.StatusOK, dto.ParseStatementResponse{
		Mode:         result.Mode,
		Transactions: result.Transactions,
		Summary:      summary,
		ProcessedAt:  time.Now().Format(time.RFC3339),
	})
}

// sendError sends a structured error response
func (h *StatementHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	if err != nil {
		h.log.Error().Err(err).Msg(message)
	}
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "STATEMENT_PARSE_FAILED",
		Message: message,
		Code:    statusCode,
	})
}
