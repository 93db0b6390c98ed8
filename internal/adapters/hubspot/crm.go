package hubspot

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"forumregistrations/internal/domain"
)

type crmObject struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type searchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type filterGroup struct {
	Filters []searchFilter `json:"filters"`
}

type searchRequest struct {
	FilterGroups []filterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties"`
}

// FindContactByEmail searches contacts by exact email.
func (c *Client) FindContactByEmail(ctx context.Context, email string) (*domain.CRMContact, error) {
	req := searchRequest{
		FilterGroups: []filterGroup{{Filters: []searchFilter{{PropertyName: "email", Operator: "EQ", Value: email}}}},
		Properties:   []string{"id", "email", "firstname", "lastname"},
	}

	var resp struct {
		Results []crmObject `json:"results"`
	}
	if err := c.do(ctx, "search contact", http.MethodPost, "/crm/v3/objects/contacts/search", c.apiKey, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, domain.ErrNotFound
	}
	r := resp.Results[0]
	return &domain.CRMContact{
		ID:        r.ID,
		Email:     r.Properties["email"],
		FirstName: r.Properties["firstname"],
		LastName:  r.Properties["lastname"],
	}, nil
}

// CreateContact creates a contact and returns its id.
func (c *Client) CreateContact(ctx context.Context, contact domain.CRMContact) (string, error) {
	body := map[string]any{"properties": map[string]string{
		"email":     contact.Email,
		"firstname": contact.FirstName,
		"lastname":  contact.LastName,
		"company":   contact.Company,
		"jobtitle":  contact.JobTitle,
		"industry":  contact.Industry,
	}}
	var created crmObject
	if err := c.do(ctx, "create contact", http.MethodPost, "/crm/v3/objects/contacts", c.apiKey, body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// CreateDeal creates a deal and returns its id.
func (c *Client) CreateDeal(ctx context.Context, d domain.CRMDeal) (string, error) {
	props := map[string]string{
		"dealname":       d.Name,
		"dealstage":      d.StageID,
		"pipeline":       d.PipelineID,
		"closedate":      d.CloseDate.UTC().Format(time.RFC3339),
		"company_name":   d.CompanyName,
		"contact_email":  d.ContactEmail,
		"contact_name":   d.ContactName,
		"industry":       d.Industry,
		"sinc_deal_type": d.DealType,
	}
	if d.OwnerID != "" {
		props["hubspot_owner_id"] = d.OwnerID
	}
	var created crmObject
	if err := c.do(ctx, "create deal", http.MethodPost, "/crm/v3/objects/deals", c.apiKey, map[string]any{"properties": props}, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// AssociateDealContact links a deal to a contact.
func (c *Client) AssociateDealContact(ctx context.Context, dealID, contactID string) error {
	path := "/crm/v3/objects/deals/" + url.PathEscape(dealID) +
		"/associations/contacts/" + url.PathEscape(contactID) + "/deal_to_contact"
	return c.do(ctx, "associate deal", http.MethodPut, path, c.apiKey, nil, nil)
}
