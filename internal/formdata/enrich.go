package formdata

import (
	"strings"

	"forumregistrations/internal/domain"
)

var checkboxFieldTypes = map[string]bool{
	"booleancheckbox":     true,
	"checkbox":            true,
	"multiple_checkboxes": true,
}

// FieldIndex resolves stored question names to form fields.
type FieldIndex struct {
	exact   map[string]*domain.FormField
	lower   map[string]*domain.FormField
	ordered []*domain.FormField
}

// NewFieldIndex flattens every field of def, dependent fields included.
func NewFieldIndex(def *domain.FormDefinition) *FieldIndex {
	ix := &FieldIndex{
		exact: make(map[string]*domain.FormField),
		lower: make(map[string]*domain.FormField),
	}
	if def == nil {
		return ix
	}
	for gi := range def.FieldGroups {
		for fi := range def.FieldGroups[gi].Fields {
			ix.add(&def.FieldGroups[gi].Fields[fi])
		}
	}
	return ix
}

func (ix *FieldIndex) add(f *domain.FormField) {
	ix.exact[f.Name] = f
	lower := strings.ToLower(f.Name)
	if _, seen := ix.lower[lower]; !seen {
		ix.ordered = append(ix.ordered, f)
	}
	ix.lower[lower] = f
	for i := range f.DependentFields {
		ix.add(&f.DependentFields[i].DependentField)
	}
}

// Len returns the number of distinct indexed field names.
func (ix *FieldIndex) Len() int { return len(ix.ordered) }

// Resolve finds the field for a stored question. The part before the first ';'
// is matched exactly, then case-insensitively, then ignoring '_' and '-'.
func (ix *FieldIndex) Resolve(question string) (*domain.FormField, bool) {
	base, _, _ := strings.Cut(question, ";")
	if f, ok := ix.exact[base]; ok {
		return f, true
	}
	lower := strings.ToLower(base)
	if f, ok := ix.lower[lower]; ok {
		return f, true
	}
	want := stripSeparators(lower)
	for _, f := range ix.ordered {
		if stripSeparators(strings.ToLower(f.Name)) == want {
			return ix.lower[strings.ToLower(f.Name)], true
		}
	}
	return nil, false
}

func stripSeparators(s string) string {
	return strings.NewReplacer("_", "", "-", "").Replace(s)
}

// Enrich rewrites questions to field labels and answers to option labels or
// formatted values. Unresolved pairs are returned unchanged. The input is not modified.
func Enrich(data []domain.ProfileAnswer, ix *FieldIndex) []domain.ProfileAnswer {
	out := make([]domain.ProfileAnswer, 0, len(data))
	for _, item := range data {
		field, ok := ix.Resolve(item.Question)
		if !ok {
			out = append(out, item)
			continue
		}
		question := StripHTML(field.Label)
		if question == "" {
			question = item.Question
		}
		out = append(out, domain.ProfileAnswer{
			Question: question,
			Answer:   enrichAnswer(field, item.Answer),
		})
	}
	return out
}

func enrichAnswer(field *domain.FormField, ans domain.Answer) domain.Answer {
	if ans.IsList() {
		return domain.ListAnswer(labelAll(field, ans.List))
	}
	if checkboxFieldTypes[field.FieldType] && strings.Contains(ans.Text, ";") {
		var parts []string
		for _, p := range strings.Split(ans.Text, ";") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return domain.ListAnswer(labelAll(field, parts))
	}
	return domain.TextAnswer(label(field, ans.Text))
}

func labelAll(field *domain.FormField, raw []string) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = label(field, v)
	}
	return out
}

// label matches the raw value against option values, not the formatted one.
func label(field *domain.FormField, raw string) string {
	for _, opt := range field.Options {
		if opt.Value == raw {
			return StripHTML(opt.Label)
		}
	}
	return FormatAnswer(raw)
}
