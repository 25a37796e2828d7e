package utils

import (
	"math"
	"sort"
	"strings"

	"github.com/paisatrack/statement-engine/dto"
)

// RowSeparator joins tokens of one visual row. The wide gap approximates
// the column alignment of the source layout, which the amount scorer and
// the description cleanup rely on.
const RowSeparator = "   "

// RowsFromTokens groups text-layer tokens into visual rows by rounding the
// vertical coordinate, orders tokens left-to-right within a row, and emits
// rows top of page first. PDF places the origin at the bottom of the page,
// so top-first means descending Y.
func RowsFromTokens(tokens []dto.TextToken) []string {
	type rowItem struct {
		x    float64
		text string
	}

	rowMap := make(map[int][]rowItem)
	for _, t := range tokens {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		yKey := int(math.Round(t.Y))
		rowMap[yKey] = append(rowMap[yKey], rowItem{x: t.X, text: text})
	}

	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	lines := make([]string, 0, len(yKeys))
	for _, y := range yKeys {
		items := rowMap[y]
		sort.Slice(items, func(a, b int) bool {
			return items[a].x < items[b].x
		})

		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, item.text)
		}
		line := strings.TrimSpace(strings.Join(parts, RowSeparator))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

type wordRow struct {
	y     float64
	words []dto.OCRWord
}

// RowsFromWords clusters recognized words into rows. OCR baselines jitter
// by a few pixels, so a word joins the nearest existing row within the
// tolerance window instead of requiring an exact vertical match; otherwise
// a new row is started. Image coordinates have a top-left origin, so rows
// are emitted in ascending Y. Lines shorter than minLineLength are noise
// from stray recognition and are dropped.
func RowsFromWords(words []dto.OCRWord, tolerance float64, minLineLength int) []string {
	var rows []wordRow
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		w.Text = text

		best := -1
		bestDist := tolerance
		for i := range rows {
			if d := math.Abs(rows[i].y - w.Y); d <= bestDist {
				best = i
				bestDist = d
			}
		}
		if best >= 0 {
			rows[best].words = append(rows[best].words, w)
		} else {
			rows = append(rows, wordRow{y: w.Y, words: []dto.OCRWord{w}})
		}
	}

	sort.Slice(rows, func(a, b int) bool {
		return rows[a].y < rows[b].y
	})

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		sort.Slice(row.words, func(a, b int) bool {
			return row.words[a].X < row.words[b].X
		})

		parts := make([]string, 0, len(row.words))
		for _, w := range row.words {
			parts = append(parts, w.Text)
		}
		line := strings.TrimSpace(strings.Join(parts, RowSeparator))
		if len(line) >= minLineLength {
			lines = append(lines, line)
		}
	}
	return lines
}
