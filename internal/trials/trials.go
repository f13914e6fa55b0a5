// Package trials queries the ClinicalTrials.gov v2 study registry.
package trials

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://clinicaltrials.gov/api/v2"

const searchFields = "NCTId,BriefTitle,OverallStatus,Phase,Condition"

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Search returns raw study records for a condition query. Callers treat the
// registry as best effort and should tolerate an empty result.
func (c *Client) Search(ctx context.Context, therapyArea string) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("query.cond", strings.ReplaceAll(therapyArea, " ", "+"))
	q.Set("pageSize", "20")
	q.Set("format", "json")
	q.Set("fields", searchFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/studies?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build trials request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query trials registry: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trials registry returned %d", resp.StatusCode)
	}

	var body struct {
		Studies []map[string]any `json:"studies"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode trials response: %w", err)
	}
	return body.Studies, nil
}
