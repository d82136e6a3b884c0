// Package compare turns a free-text "compare these documents" answer into a
// structured result. The parsing is a line-based keyword heuristic, best
// effort by contract: it tolerates arbitrary text and always produces
// well-formed output, capped lists and all. The trigger keywords, the 5-item
// cap, and the placeholder-on-empty behavior are load-bearing for downstream
// rendering; change them and saved comparisons stop matching.
package compare

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"ragdesk/internal/models"
)

// Extraction categories.
const (
	Similarities = "similarities"
	Differences  = "differences"
	Insights     = "insights"
)

const (
	maxItemsPerSection = 5
	defaultOverlap     = 65

	// Placeholder substituted when a category yields nothing, so views never
	// receive an empty list.
	emptySectionPlaceholder = "Analysis completed - see full response"
)

var sectionKeywords = map[string][]string{
	Similarities: {"similar", "common", "shared", "overlap"},
	Differences:  {"differ", "unique", "distinct", "contrast"},
	Insights:     {"insight", "recommend", "conclusion", "takeaway", "notable"},
}

var (
	bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
	emphasis     = strings.NewReplacer("**", "", "*", "")
	scorePattern = regexp.MustCompile(`(?i)(\d{1,3})\s*%|score\D{0,12}(\d{1,3})|overlap\D{0,12}(\d{1,3})`)
)

// ExtractSection collects up to 5 bullet lines following a line that mentions
// one of the category's trigger keywords. The keyword line itself is treated
// as a header and skipped.
func ExtractSection(text, category string) []string {
	keywords, ok := sectionKeywords[category]
	if !ok {
		return nil
	}

	var items []string
	inSection := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if containsAny(lower, keywords) {
			inSection = true
			continue
		}

		if !inSection || !isBulletLine(line) {
			continue
		}
		if item := cleanItem(line); item != "" {
			items = append(items, item)
			if len(items) == maxItemsPerSection {
				break
			}
		}
	}
	return items
}

// OverlapScore finds the first percentage-like figure in the text: a number
// with a trailing %, or a number following "score" or "overlap". Defaults to
// 65 when nothing matches.
func OverlapScore(text string) int {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return defaultOverlap
	}
	for _, group := range m[1:] {
		if group == "" {
			continue
		}
		n, err := strconv.Atoi(group)
		if err != nil {
			return defaultOverlap
		}
		if n < 0 {
			return 0
		}
		if n > 100 {
			return 100
		}
		return n
	}
	return defaultOverlap
}

// Analyze derives a full comparison result from one answer text.
func Analyze(answer string) *models.ComparisonResult {
	return &models.ComparisonResult{
		Similarities:        orPlaceholder(ExtractSection(answer, Similarities)),
		Differences:         orPlaceholder(ExtractSection(answer, Differences)),
		Insights:            orPlaceholder(ExtractSection(answer, Insights)),
		OverlapScorePercent: OverlapScore(answer),
		RawResponse:         answer,
	}
}

// BuildPrompt phrases the comparison question sent through the query endpoint.
func BuildPrompt(filenames []string) string {
	return fmt.Sprintf(
		"Compare these %d documents: %s. List their key similarities, key differences, "+
			"and notable insights as bullet points, and estimate an overall content overlap percentage.",
		len(filenames), strings.Join(filenames, ", "))
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func isBulletLine(line string) bool {
	r, _ := utf8.DecodeRuneInString(line)
	return r == '-' || r == '*' || r == '•' || (r >= '0' && r <= '9')
}

func cleanItem(line string) string {
	line = bulletPrefix.ReplaceAllString(line, "")
	line = emphasis.Replace(line)
	return strings.TrimSpace(line)
}

func orPlaceholder(items []string) []string {
	if len(items) == 0 {
		return []string{emptySectionPlaceholder}
	}
	return items
}
