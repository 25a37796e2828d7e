package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paisatrack/statement-engine/dto"
)

func TestRowsFromTokensGroupsByVerticalPosition(t *testing.T) {
	tokens := []dto.TextToken{
		// second visual row, out of order on purpose
		{Text: "500.00", X: 300, Y: 650.1},
		{Text: "01/02/23", X: 50, Y: 649.8},
		{Text: "UPI/SHOP", X: 120, Y: 650.3},
		// first visual row (higher Y = higher on the page)
		{Text: "Date", X: 50, Y: 700},
		{Text: "Description", X: 120, Y: 700},
		{Text: "Amount", X: 300, Y: 700},
	}

	lines := RowsFromTokens(tokens)

	require.Len(t, lines, 2)
	assert.Equal(t, "Date"+RowSeparator+"Description"+RowSeparator+"Amount", lines[0])
	assert.Equal(t, "01/02/23"+RowSeparator+"UPI/SHOP"+RowSeparator+"500.00", lines[1])
}

func TestRowsFromTokensSkipsBlankTokens(t *testing.T) {
	tokens := []dto.TextToken{
		{Text: "  ", X: 10, Y: 100},
		{Text: "only", X: 20, Y: 100},
	}

	lines := RowsFromTokens(tokens)

	require.Len(t, lines, 1)
	assert.Equal(t, "only", lines[0])
}

func TestRowsFromWordsClustersJitteredBaselines(t *testing.T) {
	words := []dto.OCRWord{
		{Text: "02Feb23", X: 10, Y: 100, Confidence: 90},
		{Text: "UPI", X: 80, Y: 104, Confidence: 88},
		{Text: "1,250.00", X: 220, Y: 97, Confidence: 91},
		{Text: "03Feb23", X: 10, Y: 140, Confidence: 90},
		{Text: "SWIGGY", X: 80, Y: 141, Confidence: 85},
		{Text: "430.00", X: 220, Y: 139, Confidence: 87},
	}

	lines := RowsFromWords(words, 8, 6)

	require.Len(t, lines, 2)
	// image origin is top-left: smaller Y comes first
	assert.True(t, strings.HasPrefix(lines[0], "02Feb23"))
	assert.Contains(t, lines[0], "1,250.00")
	assert.True(t, strings.HasPrefix(lines[1], "03Feb23"))
	assert.Contains(t, lines[1], "SWIGGY")
}

func TestRowsFromWordsStartsNewRowOutsideTolerance(t *testing.T) {
	words := []dto.OCRWord{
		{Text: "first row text", X: 10, Y: 100},
		{Text: "second row text", X: 10, Y: 112},
	}

	lines := RowsFromWords(words, 8, 6)

	require.Len(t, lines, 2)
}

func TestRowsFromWordsDropsShortLines(t *testing.T) {
	words := []dto.OCRWord{
		{Text: "ok line over minimum", X: 10, Y: 100},
		{Text: "x", X: 10, Y: 400},
	}

	lines := RowsFromWords(words, 8, 6)

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "ok line")
}

func TestRowsFromWordsOrdersWordsHorizontally(t *testing.T) {
	words := []dto.OCRWord{
		{Text: "900.00", X: 300, Y: 50},
		{Text: "01/02/23", X: 10, Y: 50},
		{Text: "GROCERY", X: 100, Y: 50},
	}

	lines := RowsFromWords(words, 8, 6)

	require.Len(t, lines, 1)
	assert.Equal(t, "01/02/23"+RowSeparator+"GROCERY"+RowSeparator+"900.00", lines[0])
}
