package dto

import (
	"time"

	"github.com/google/uuid"
)

// ParseMode tells which extraction path produced a document's lines.
type ParseMode string

const (
	ModeText ParseMode = "TEXT"
	ModeOCR  ParseMode = "OCR"
)

type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

type Category string

const (
	CategorySalary        Category = "salary"
	CategoryInvestment    Category = "investment"
	CategoryHousing       Category = "housing"
	CategoryUtilities     Category = "utilities"
	CategoryFood          Category = "food"
	CategoryShopping      Category = "shopping"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryTech          Category = "tech"
	// CategoryOther is the no-match bucket; CategoryOthers is the generic
	// income bucket applied when an income row lands on an expense category.
	CategoryOther  Category = "other"
	CategoryOthers Category = "others"
)

// Extraction confidence is fixed per source path: the text layer of a
// digital PDF is far more reliable than recognition over a scan.
const (
	ConfidenceText = 90
	ConfidenceOCR  = 70
)

// Transaction is the durable output of a statement parse. Amount is always
// a non-negative magnitude; direction is carried by Type.
type Transaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    Category        `json:"category"`
	Confidence  int             `json:"confidence"`
	Bank        string          `json:"bank"`
}

func NewTransaction(date time.Time, description string, amount float64, txType TransactionType, category Category, confidence int) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        txType,
		Category:    category,
		Confidence:  confidence,
		Bank:        "Detected",
	}
}

// TextToken is a positioned fragment from a page's embedded text layer.
// PDF coordinates have their origin at the bottom-left of the page.
type TextToken struct {
	Text string
	X    float64
	Y    float64
}

// OCRWord is a recognized word with its bounding-box position (top-left
// origin) and the recognizer's confidence for it.
type OCRWord struct {
	Text       string
	X          float64
	Y          float64
	Confidence float64
}

// ParseResult is what the engine hands back for one document.
type ParseResult struct {
	Mode         ParseMode     `json:"mode"`
	Transactions []Transaction `json:"transactions"`
	Pages        int           `json:"pages"`
	FailedPages  int           `json:"failed_pages"`
}
