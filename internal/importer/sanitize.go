package importer

import (
	"regexp"
	"strings"
	"time"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	isoDate       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Date layouts accepted for date_of_birth style columns. Anything else is
// dropped to NULL rather than rejecting the row.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// CleanText trims the value and collapses empty strings to nil.
func CleanText(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// CleanEmail is CleanText plus lowercasing, so lookups by email are
// case-insensitive.
func CleanEmail(v *string) *string {
	cleaned := CleanText(v)
	if cleaned == nil {
		return nil
	}
	lowered := strings.ToLower(*cleaned)
	return &lowered
}

// CleanCompanyName normalizes the match key for companies: trimmed, with any
// run of whitespace collapsed to a single space. Matching stays
// case-sensitive.
func CleanCompanyName(v *string) *string {
	cleaned := CleanText(v)
	if cleaned == nil {
		return nil
	}
	collapsed := whitespaceRun.ReplaceAllString(*cleaned, " ")
	return &collapsed
}

// NormalizeDate returns the value as YYYY-MM-DD, parsing common formats.
// Unparsable input becomes nil silently.
func NormalizeDate(v *string) *string {
	cleaned := CleanText(v)
	if cleaned == nil {
		return nil
	}
	if isoDate.MatchString(*cleaned) {
		return cleaned
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, *cleaned); err == nil {
			formatted := parsed.Format("2006-01-02")
			return &formatted
		}
	}
	return nil
}
