package dto

import "errors"

// Failures that prevent any output for the whole document. Everything
// below page granularity degrades the result set instead of erroring.
var (
	ErrUnreadableDocument = errors.New("document could not be read")
	ErrOCRWorkerInit      = errors.New("recognition worker failed to initialize")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ParseSummary lets the caller distinguish "no transactions found" from
// "could not read this file" and see how much of the document degraded.
type ParseSummary struct {
	Pages        int `json:"pages"`
	FailedPages  int `json:"failed_pages"`
	IncomeCount  int `json:"income_count"`
	ExpenseCount int `json:"expense_count"`
}

// ParseStatementResponse is the final response structure
type ParseStatementResponse struct {
	Mode         ParseMode     `json:"mode"`
	Transactions []Transaction `json:"transactions"`
	Summary      ParseSummary  `json:"summary"`
	ProcessedAt  string        `json:"processed_at"`
}
