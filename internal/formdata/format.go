// Package formdata turns raw form submissions into attendee attributes and
// rewrites stored profile answers using the remote form definition.
package formdata

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

var epochMillisPattern = regexp.MustCompile(`^\d{13}$`)

// StripHTML removes markup and decodes entities, returning the trimmed text.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// FormatDate renders epoch milliseconds as M/D/YY in UTC.
func FormatDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("1/2/06")
}

// FormatAnswer sanitizes a raw answer for display: markup is stripped,
// true/false become Yes/No and 13 digit epoch milliseconds become dates.
func FormatAnswer(raw string) string {
	s := StripHTML(raw)
	switch strings.ToLower(s) {
	case "true":
		return "Yes"
	case "false":
		return "No"
	}
	if epochMillisPattern.MatchString(s) {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return FormatDate(ms)
		}
	}
	return s
}
