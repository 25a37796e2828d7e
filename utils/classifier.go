package utils

import (
	"strings"

	"github.com/paisatrack/statement-engine/dto"
)

// Direction vocabulary, evaluated in priority order. Income wins over
// expense when a line carries both; UPI lines default to expense because
// UPI traffic is dominated by outgoing payments; everything else defaults
// to expense, the safer mislabel for personal-finance tracking.
var (
	incomeKeywords = []string{
		"CREDIT", "CR ", "DEPOSIT", "SALARY", "IMPS INWARD", "NEFT IN",
		"REFUND", "CASHBACK", "RECEIVED",
	}
	expenseKeywords = []string{
		"DEBIT", "DR ", "WITHDRAW", "IMPS OUTWARD", "NEFT OUT",
		"PURCHASE", "SPENT", "PAYMENT", "EMI",
	}
	upiIncomeMarkers = []string{"REC", "FROM"}
)

// ClassifyDirection assigns income/expense from banking vocabulary.
func ClassifyDirection(line string) dto.TransactionType {
	upper := strings.ToUpper(line)

	for _, kw := range incomeKeywords {
		if strings.Contains(upper, kw) {
			return dto.TypeIncome
		}
	}
	for _, kw := range expenseKeywords {
		if strings.Contains(upper, kw) {
			return dto.TypeExpense
		}
	}
	if strings.Contains(upper, "UPI") {
		for _, marker := range upiIncomeMarkers {
			if strings.Contains(upper, marker) {
				return dto.TypeIncome
			}
		}
		return dto.TypeExpense
	}
	return dto.TypeExpense
}

type categoryRule struct {
	category dto.Category
	keywords []string
}

// Ordered by precedence; first match wins.
var categoryRules = []categoryRule{
	{dto.CategoryFood, []string{"swiggy", "zomato", "restaurant", "food", "cafe", "dominos", "pizza", "eatery"}},
	{dto.CategoryTransport, []string{"uber", "ola", "rapido", "fuel", "petrol", "irctc", "metro card", "cab", "transport"}},
	{dto.CategoryShopping, []string{"amazon", "flipkart", "myntra", "store", "mart", "bazaar", "shopping"}},
	{dto.CategoryUtilities, []string{"electricity", "water bill", "gas", "recharge", "broadband", "postpaid", "dth", "bill pay"}},
	{dto.CategoryEntertainment, []string{"netflix", "hotstar", "spotify", "bookmyshow", "movie", "prime video"}},
	{dto.CategoryHealth, []string{"pharmacy", "hospital", "clinic", "apollo", "medplus", "medical"}},
	{dto.CategoryHousing, []string{"rent", "maintenance", "society", "housing"}},
	{dto.CategoryTech, []string{"google", "apple.com", "microsoft", "github", "cloud", "hosting"}},
	{dto.CategorySalary, []string{"salary", "payroll", "wages", "stipend"}},
	{dto.CategoryInvestment, []string{"mutual fund", "sip", "zerodha", "groww", "dividend", "interest", "fixed deposit"}},
}

// ClassifyCategory assigns a spending/income category from the cleaned
// description. An income row that matched a spending category is forced
// into the generic income bucket, and any description mentioning salary is
// categorized salary unconditionally; salary takes precedence over every
// other rule.
func ClassifyCategory(description string, txType dto.TransactionType) dto.Category {
	lower := strings.ToLower(description)

	category := dto.CategoryOther
	for _, rule := range categoryRules {
		if matched(lower, rule.keywords) {
			category = rule.category
			break
		}
	}

	if txType == dto.TypeIncome && category != dto.CategorySalary && category != dto.CategoryInvestment {
		category = dto.CategoryOthers
	}
	if strings.Contains(lower, "salary") {
		category = dto.CategorySalary
	}
	return category
}

func matched(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
