package card

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// OverviewLimit is the number of characters of overview shown on a card.
const OverviewLimit = 400

var (
	slugStrip  = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugSpaces = regexp.MustCompile(`\s+`)
	slugDashes = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a URL slug from a title: lowercase, punctuation removed,
// whitespace runs replaced by single hyphens, no leading or trailing hyphens.
func Slugify(title string) string {
	s := strings.ToLower(norm.NFC.String(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Truncate shortens s to at most limit characters, appending "..." when
// anything was cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Capitalize upper-cases the first letter of a status word and lower-cases
// the rest ("continuing" -> "Continuing", "inCinemas" -> "Incinemas").
func Capitalize(s string) string {
	// Casers are stateful and not safe for concurrent use.
	return cases.Title(language.English).String(s)
}

// FormatBytes renders a size with binary multiples: whole bytes below 1 KB,
// two decimals from KB upward.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < 0 {
		return "N/A"
	}
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	units := []string{"KB", "MB", "GB", "TB"}
	value := float64(n) / unit
	i := 0
	for value >= unit && i < len(units)-1 {
		value /= unit
		i++
	}
	return fmt.Sprintf("%.2f %s", value, units[i])
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
