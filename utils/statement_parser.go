package utils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/paisatrack/statement-engine/dto"
)

var (
	// D[./-]M[./-]YY or YYYY, day first as Indian statements print it
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})\b`)
	// D MonYY / DMonYY / D Mon YYYY with abbreviated month names
	textualDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s*(\d{2,4})\b`)

	// Monetary-looking substrings: comma-grouped (Indian lakh grouping
	// included) and/or two-decimal numbers, plain integers, optional Cr/Dr
	// suffix. Alternatives are ordered longest-first.
	amountPattern = regexp.MustCompile(`(?i)\b(?:\d{1,3}(?:,\d{2,3})+(?:\.\d{2})?|\d+\.\d{2}|\d+)(?:\s?(?:cr|dr)\b)?`)

	pageNumberPattern = regexp.MustCompile(`(?i)\bpage\s*(?:no\.?\s*)?(\d+)`)
	// A line that is nothing but a page marker. Lines mixing a page echo
	// with real columns (OCR row merging does this) go through the scorer
	// instead, where the echoed number is penalized.
	pageNumberLinePattern = regexp.MustCompile(`(?i)^page\s*(?:no\.?\s*)?\d+(?:\s*of\s*\d+)?$`)

	protocolTokenPattern = regexp.MustCompile(`(?i)\b(?:imps|neft|upi|rtgs)\b`)
	refTokenPattern      = regexp.MustCompile(`(?i)\bref\s*no\.?\s*:?\s*\S*`)
	unsafeCharPattern    = regexp.MustCompile(`[^\w\s@.-]`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

var monthNumbers = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Statement boilerplate that must never be read as a transaction row.
var noisePhrases = []string{
	"statement period",
	"statement of account",
	"opening balance",
	"closing balance",
	"brought forward",
	"carried forward",
	"credit limit",
	"reward points",
	"account number",
	"customer id",
	"total",
	"ifsc",
}

const fallbackDescription = "Bank transaction"

// amountCandidate is one numeric substring of a line, scored for how
// likely it is to be the transaction amount rather than a date fragment,
// page number or running balance.
type amountCandidate struct {
	raw   string
	value float64
	start int
	end   int
	score int
}

// LineParser turns reconstructed statement lines into transactions.
type LineParser struct {
	MinLineLength  int
	MaxDescription int
}

func NewLineParser(minLineLength, maxDescription int) *LineParser {
	return &LineParser{
		MinLineLength:  minLineLength,
		MaxDescription: maxDescription,
	}
}

// ParseLine classifies one reconstructed line. The boolean reports whether
// the line qualified as a transaction row; rejection is the common case
// (headers, footers, summary rows) and not an error.
func (p *LineParser) ParseLine(line string, confidence int) (dto.Transaction, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < p.MinLineLength {
		return dto.Transaction{}, false
	}
	if IsNoiseLine(trimmed) {
		return dto.Transaction{}, false
	}

	date, dateSpan, ok := findDate(trimmed)
	if !ok {
		return dto.Transaction{}, false
	}

	candidates := findAmountCandidates(trimmed, dateSpan)
	if !hasMonetaryCandidate(candidates) {
		return dto.Transaction{}, false
	}

	survivors := make([]amountCandidate, 0, len(candidates))
	for _, c := range candidates {
		c.score = scoreCandidate(trimmed, c)
		if c.score > 0 {
			survivors = append(survivors, c)
		}
	}
	if len(survivors) == 0 {
		return dto.Transaction{}, false
	}

	// Candidates come back in left-to-right order and the leftmost
	// survivor wins: statements place the transaction amount before the
	// running-balance column. This is a layout assumption tuned against
	// Indian bank statements, not a general rule.
	chosen := survivors[0]
	amount := math.Abs(resolveSign(chosen))

	removals := []amountCandidate{chosen}
	if last := survivors[len(survivors)-1]; last.start != chosen.start {
		removals = append(removals, last)
	}
	description := p.cleanDescription(trimmed, dateSpan, removals)

	txType := ClassifyDirection(trimmed)
	category := ClassifyCategory(description, txType)

	return dto.NewTransaction(date, description, amount, txType, category, confidence), true
}

// IsNoiseLine reports whether a line is statement boilerplate.
func IsNoiseLine(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range noisePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return pageNumberLinePattern.MatchString(strings.TrimSpace(line))
}

// findDate locates the first parseable date on the line and returns it
// with the matched span so amount candidates inside it can be excluded.
func findDate(line string) (time.Time, [2]int, bool) {
	for _, m := range numericDatePattern.FindAllStringSubmatchIndex(line, -1) {
		day, _ := strconv.Atoi(line[m[2]:m[3]])
		month, _ := strconv.Atoi(line[m[4]:m[5]])
		year, _ := strconv.Atoi(line[m[6]:m[7]])
		if date, err := buildDate(day, time.Month(month), year); err == nil {
			return date, [2]int{m[0], m[1]}, true
		}
	}

	for _, m := range textualDatePattern.FindAllStringSubmatchIndex(line, -1) {
		day, _ := strconv.Atoi(line[m[2]:m[3]])
		month := monthNumbers[strings.ToLower(line[m[4]:m[5]])]
		year, _ := strconv.Atoi(line[m[6]:m[7]])
		if date, err := buildDate(day, month, year); err == nil {
			return date, [2]int{m[0], m[1]}, true
		}
	}

	return time.Time{}, [2]int{}, false
}

func buildDate(day int, month time.Month, year int) (time.Time, error) {
	if year < 100 {
		year += 2000
	}
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid date %d-%d-%d", day, month, year)
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. 31 Feb becomes 2/3 Mar)
	if date.Day() != day || date.Month() != month {
		return time.Time{}, fmt.Errorf("impossible date %d-%d-%d", day, month, year)
	}
	return date, nil
}

// findAmountCandidates collects every numeric substring outside the date
// span, in left-to-right order.
func findAmountCandidates(line string, dateSpan [2]int) []amountCandidate {
	var candidates []amountCandidate
	for _, m := range amountPattern.FindAllStringIndex(line, -1) {
		if m[0] < dateSpan[1] && m[1] > dateSpan[0] {
			continue
		}
		raw := line[m[0]:m[1]]
		value, err := parseAmountValue(raw)
		if err != nil {
			continue
		}
		candidates = append(candidates, amountCandidate{
			raw:   raw,
			value: value,
			start: m[0],
			end:   m[1],
		})
	}
	return candidates
}

func hasMonetaryCandidate(candidates []amountCandidate) bool {
	for _, c := range candidates {
		if strings.ContainsAny(c.raw, ".,") {
			return true
		}
	}
	return false
}

// scoreCandidate implements the amount-likelihood point system. Banks
// render amounts with exactly two decimals and thousands separators far
// more reliably than they render unrelated integers that way; small bare
// integers and year-range values are almost always date fragments, serial
// numbers or page indexes. The year and small-integer penalties apply
// only to integer candidates: a two-decimal value like 2,024.00 is a
// plausible amount, not a misread year. Like the leftmost-survivor rule
// this is a calibration decision, tuned against real statements.
func scoreCandidate(line string, c amountCandidate) int {
	score := 0
	hasDecimal := strings.Contains(c.raw, ".")

	if hasDecimal {
		score += 20
	}
	if strings.Contains(c.raw, ",") {
		score += 15
	}

	v := math.Abs(c.value)
	if !hasDecimal && v < 50 {
		score -= 50
	}
	if !hasDecimal && v >= 2020 && v <= 2030 {
		score -= 100
	}
	if m := pageNumberPattern.FindStringSubmatch(line); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && float64(n) == v {
			score -= 100
		}
	}
	return score
}

// resolveSign applies banking suffix vocabulary on the candidate string;
// without a suffix the parsed numeric sign stands.
func resolveSign(c amountCandidate) float64 {
	lower := strings.ToLower(c.raw)
	switch {
	case containsAny(lower, "dr", "debit", "wdl", "out", "withdrawal"):
		return -math.Abs(c.value)
	case containsAny(lower, "cr", "credit", "dep", "in", "deposit"):
		return math.Abs(c.value)
	}
	return c.value
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func parseAmountValue(raw string) (float64, error) {
	cleaned := strings.ToLower(raw)
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "cr")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "dr")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	return strconv.ParseFloat(cleaned, 64)
}

// cleanDescription strips the date token, the chosen amount and trailing
// balance, protocol noise words and unsafe characters, then truncates.
func (p *LineParser) cleanDescription(line string, dateSpan [2]int, removals []amountCandidate) string {
	buf := []byte(line)
	blank(buf, dateSpan[0], dateSpan[1])
	for _, c := range removals {
		blank(buf, c.start, c.end)
	}

	desc := string(buf)
	desc = protocolTokenPattern.ReplaceAllString(desc, " ")
	desc = refTokenPattern.ReplaceAllString(desc, " ")
	desc = unsafeCharPattern.ReplaceAllString(desc, " ")
	desc = whitespacePattern.ReplaceAllString(desc, " ")
	desc = strings.TrimSpace(desc)

	if runes := []rune(desc); len(runes) > p.MaxDescription {
		desc = strings.TrimSpace(string(runes[:p.MaxDescription])) + "…"
	}
	if desc == "" {
		return fallbackDescription
	}
	return desc
}

func blank(buf []byte, start, end int) {
	for i := start; i < end && i < len(buf); i++ {
		buf[i] = ' '
	}
}
