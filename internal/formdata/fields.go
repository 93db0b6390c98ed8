package formdata

import (
	"strings"

	"forumregistrations/internal/domain"
)

// Fields is a submission collapsed by field name. Names keep the order of
// their first appearance; repeated names keep every value in submission order.
type Fields struct {
	order  []string
	values map[string][]string
}

// Collapse groups submission values by name.
func Collapse(values []domain.SubmissionValue) Fields {
	f := Fields{values: make(map[string][]string, len(values))}
	for _, v := range values {
		if _, ok := f.values[v.Name]; !ok {
			f.order = append(f.order, v.Name)
		}
		f.values[v.Name] = append(f.values[v.Name], v.Value)
	}
	return f
}

// Names returns the field names in first-appearance order.
func (f Fields) Names() []string {
	return append([]string(nil), f.order...)
}

// Answer returns the value of name: scalar for a single occurrence, list otherwise.
func (f Fields) Answer(name string) (domain.Answer, bool) {
	vals, ok := f.values[name]
	if !ok {
		return domain.Answer{}, false
	}
	if len(vals) == 1 {
		return domain.TextAnswer(vals[0]), true
	}
	return domain.ListAnswer(append([]string(nil), vals...)), true
}

// Raw returns the first non-empty value among names, list values joined with sep.
func (f Fields) Raw(sep string, names ...string) string {
	for _, n := range names {
		vals := f.values[n]
		if len(vals) == 0 {
			continue
		}
		joined := strings.Join(vals, sep)
		if strings.TrimSpace(joined) != "" {
			return joined
		}
	}
	return ""
}

// Get returns the first non-empty value among names formatted for display.
func (f Fields) Get(names ...string) string {
	for _, n := range names {
		var parts []string
		for _, v := range f.values[n] {
			if s := FormatAnswer(v); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	return ""
}

// Email returns the first non-empty value of email, Email or EMAIL. Repeated
// fields are checked value by value, never joined.
func (f Fields) Email() (string, error) {
	for _, n := range []string{"email", "Email", "EMAIL"} {
		for _, v := range f.values[n] {
			if email := strings.TrimSpace(v); email != "" {
				return email, nil
			}
		}
	}
	return "", domain.ErrMissingEmailField
}

// ProfileData returns every field as an ordered question/answer list. Answers
// keep their source codes so enrichment can resolve option labels later; only
// markup is stripped.
func (f Fields) ProfileData() []domain.ProfileAnswer {
	out := make([]domain.ProfileAnswer, 0, len(f.order))
	for _, name := range f.order {
		vals := f.values[name]
		var ans domain.Answer
		if len(vals) == 1 {
			ans = domain.TextAnswer(StripHTML(vals[0]))
		} else {
			stripped := make([]string, len(vals))
			for i, v := range vals {
				stripped[i] = StripHTML(v)
			}
			ans = domain.ListAnswer(stripped)
		}
		out = append(out, domain.ProfileAnswer{Question: name, Answer: ans})
	}
	return out
}
