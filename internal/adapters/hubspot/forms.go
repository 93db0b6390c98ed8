package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"forumregistrations/internal/domain"
)

type submissionsPage struct {
	Results []domain.RawSubmission `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

func (p *submissionsPage) nextAfter() string {
	if p.Paging == nil || p.Paging.Next == nil {
		return ""
	}
	return p.Paging.Next.After
}

// FetchSubmissions pages through a form's submissions sequentially. At most
// 20 pages of 50 are read; any failed page aborts the whole fetch.
func (c *Client) FetchSubmissions(ctx context.Context, formID string, creds domain.ProviderCredentials) ([]domain.RawSubmission, []domain.PageInfo, error) {
	apiKey := c.key(creds)
	pager := c.newPager()
	var all []domain.RawSubmission
	var pages []domain.PageInfo
	after := ""

	for page := 1; page <= maxPages; page++ {
		if err := pager.Wait(ctx); err != nil {
			return nil, pages, err
		}
		q := url.Values{}
		q.Set("limit", fmt.Sprint(pageSize))
		if after != "" {
			q.Set("after", after)
		}
		path := "/form-integrations/v1/submissions/forms/" + url.PathEscape(formID) + "?" + q.Encode()

		var resp submissionsPage
		if err := c.do(ctx, "fetch submissions", http.MethodGet, path, apiKey, nil, &resp); err != nil {
			return nil, pages, err
		}
		all = append(all, resp.Results...)
		after = resp.nextAfter()
		pages = append(pages, domain.PageInfo{
			Page:         page,
			ResultsCount: len(resp.Results),
			TotalSoFar:   len(all),
			HasNext:      after != "",
			NextAfter:    after,
		})
		if after == "" {
			break
		}
	}
	if all == nil {
		all = []domain.RawSubmission{}
	}
	return all, pages, nil
}

// FetchFormDefinition returns the form's field metadata.
func (c *Client) FetchFormDefinition(ctx context.Context, formID string, creds domain.ProviderCredentials) (*domain.FormDefinition, error) {
	var def domain.FormDefinition
	path := "/marketing/v3/forms/" + url.PathEscape(formID)
	if err := c.do(ctx, "fetch form definition", http.MethodGet, path, c.key(creds), nil, &def); err != nil {
		return nil, err
	}
	if def.FieldGroups == nil {
		return nil, &domain.ProviderError{Provider: providerName, Op: "fetch form definition", Message: "fieldGroups is missing"}
	}
	return &def, nil
}
