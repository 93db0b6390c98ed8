package domain

import "context"

// SubmissionValue is one field value of a form submission. Repeated names are allowed.
type SubmissionValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RawSubmission is a form submission as returned by the form provider.
// swagger:model RawSubmission
type RawSubmission struct {
	SubmittedAt int64             `json:"submittedAt"`
	Values      []SubmissionValue `json:"values"`
	PageURL     string            `json:"pageUrl"`
	PageName    string            `json:"pageName"`
}

// PageInfo is debug information about one fetched page of submissions.
type PageInfo struct {
	Page         int    `json:"page"`
	ResultsCount int    `json:"resultsCount"`
	TotalSoFar   int    `json:"totalSoFar"`
	HasNext      bool   `json:"hasNext"`
	NextAfter    string `json:"nextAfter,omitempty"`
}

// FieldOption is a selectable option of a form field.
type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DependentField is a field shown conditionally under another field.
type DependentField struct {
	DependentField FormField `json:"dependentField"`
}

// FormField describes one field of a form definition.
type FormField struct {
	Name            string           `json:"name"`
	Label           string           `json:"label"`
	FieldType       string           `json:"fieldType"`
	Options         []FieldOption    `json:"options"`
	DependentFields []DependentField `json:"dependentFields"`
}

// FieldGroup is a group of fields as laid out on the form.
type FieldGroup struct {
	Fields []FormField `json:"fields"`
}

// FormDefinition is the remote metadata of a form.
type FormDefinition struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	FieldGroups []FieldGroup `json:"fieldGroups"`
}

// ProviderCredentials authenticate calls to the form provider. An empty APIKey
// means the configured default key is used.
type ProviderCredentials struct {
	APIKey string `json:"api_key"`
}

// FormSource fetches submissions and form definitions from the form provider.
type FormSource interface {
	FetchSubmissions(ctx context.Context, formID string, creds ProviderCredentials) ([]RawSubmission, []PageInfo, error)
	FetchFormDefinition(ctx context.Context, formID string, creds ProviderCredentials) (*FormDefinition, error)
}
