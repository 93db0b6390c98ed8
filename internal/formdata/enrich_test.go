package formdata

import (
	"testing"

	"forumregistrations/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefinition() *domain.FormDefinition {
	return &domain.FormDefinition{
		ID: "form-1",
		FieldGroups: []domain.FieldGroup{
			{Fields: []domain.FormField{
				{Name: "industry___exec_profile", Label: "Industry", FieldType: "select", Options: []domain.FieldOption{
					{Label: "Technology &amp; Software", Value: "tech"},
				}},
				{Name: "Hotel_Required", Label: "<b>Hotel</b> needed?", FieldType: "booleancheckbox"},
				{Name: "topics", Label: "Topics", FieldType: "multiple_checkboxes", Options: []domain.FieldOption{
					{Label: "Cloud", Value: "cloud"},
					{Label: "Security", Value: "sec"},
				}, DependentFields: []domain.DependentField{
					{DependentField: domain.FormField{Name: "topic_other", Label: "Other topic", FieldType: "text"}},
				}},
				{Name: "arrival_date", Label: "Arrival", FieldType: "date"},
			}},
		},
	}
}

func TestFieldIndex_Resolve(t *testing.T) {
	ix := NewFieldIndex(testDefinition())
	assert.Equal(t, 5, ix.Len())

	tests := []struct {
		name     string
		question string
		want     string
		found    bool
	}{
		{"exact", "topics", "topics", true},
		{"base name before semicolon", "topics;0", "topics", true},
		{"case-insensitive", "hotel_required", "Hotel_Required", true},
		{"separators ignored", "industry-exec-profile", "industry___exec_profile", true},
		{"dependent field", "topic_other", "topic_other", true},
		{"unknown", "favorite_color", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := ix.Resolve(tt.question)
			require.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.want, f.Name)
			}
		})
	}
}

func TestEnrich(t *testing.T) {
	ix := NewFieldIndex(testDefinition())
	data := []domain.ProfileAnswer{
		{Question: "industry___exec_profile", Answer: domain.TextAnswer("tech")},
		{Question: "hotel_required", Answer: domain.TextAnswer("true")},
		{Question: "topics", Answer: domain.TextAnswer("cloud; sec;;")},
		{Question: "topics;1", Answer: domain.ListAnswer([]string{"sec", "other"})},
		{Question: "arrival_date", Answer: domain.TextAnswer("1700000000000")},
		{Question: "favorite_color", Answer: domain.TextAnswer("true")},
	}

	got := Enrich(data, ix)

	require.Len(t, got, 6)
	assert.Equal(t, domain.ProfileAnswer{Question: "Industry", Answer: domain.TextAnswer("Technology & Software")}, got[0])
	assert.Equal(t, domain.ProfileAnswer{Question: "Hotel needed?", Answer: domain.TextAnswer("Yes")}, got[1])
	assert.Equal(t, []string{"Cloud", "Security"}, got[2].Answer.List)
	assert.Equal(t, []string{"Security", "other"}, got[3].Answer.List)
	assert.Equal(t, "11/14/23", got[4].Answer.Text)
	assert.Equal(t, data[5], got[5], "unresolved pair passes through unchanged")

	// Deterministic and does not mutate its input.
	assert.Equal(t, got, Enrich(data, ix))
	assert.Equal(t, "tech", data[0].Answer.Text)
}

func TestEnrich_EmptyDefinition(t *testing.T) {
	data := []domain.ProfileAnswer{{Question: "q", Answer: domain.TextAnswer("a")}}
	assert.Equal(t, data, Enrich(data, NewFieldIndex(nil)))
}
