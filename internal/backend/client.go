// Package backend wraps the external financial API consumed by the workbench.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GLAccountInfo describes one ledger account offered for adjustment entries.
type GLAccountInfo struct {
	Code string `json:"glAccount"`
	Name string `json:"glName"`
	Type string `json:"accountType,omitempty"`
}

// JournalMetadata is the response of GET /api/journal/metadata.
type JournalMetadata struct {
	GLAccounts []GLAccountInfo `json:"glAccounts"`
	Periods    []string        `json:"periods"`
}

// BatchEntry is one signed adjustment posted to /api/journal/batch-update.
type BatchEntry struct {
	GLAccount string  `json:"glAccount"`
	Period    string  `json:"period"`
	Value     float64 `json:"value"`
}

// FinancialVariable is one derived aggregate submitted alongside mapped data.
type FinancialVariable struct {
	Key      string  `json:"key"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
}

// TextKey is a backend-defined label row consumed by the mapper.
type TextKey struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Client talks to the financial API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// JournalMetadata fetches GL accounts and period labels for the journal page.
func (c *Client) JournalMetadata(ctx context.Context) (JournalMetadata, error) {
	var meta JournalMetadata
	if err := c.getJSON(ctx, "/api/journal/metadata", &meta); err != nil {
		return JournalMetadata{}, err
	}
	return meta, nil
}

// PostJournalBatch submits a batch of signed adjustments in one request.
func (c *Client) PostJournalBatch(ctx context.Context, entries []BatchEntry) error {
	return c.postJSON(ctx, "/api/journal/batch-update", entries)
}

// FinancialVariables fetches backend-defined financial variable rows.
func (c *Client) FinancialVariables(ctx context.Context) ([]map[string]any, error) {
	var rows []map[string]any
	if err := c.getJSON(ctx, "/api/financial_variables", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// TextKeys fetches backend-defined text key rows.
func (c *Client) TextKeys(ctx context.Context) ([]TextKey, error) {
	var rows []TextKey
	if err := c.getJSON(ctx, "/api/text_keys", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SubmitMappedData transmits the normalized trial balance batch.
func (c *Client) SubmitMappedData(ctx context.Context, rows any) error {
	return c.postJSON(ctx, "/api/data", map[string]any{"mappedData": rows})
}

// SubmitFinancialVariables transmits the derived financial variable batch.
func (c *Client) SubmitFinancialVariables(ctx context.Context, vars []FinancialVariable) error {
	return c.postJSON(ctx, "/api/financialvar-updated", map[string]any{"financialVar1": vars})
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backend %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("backend %s returned status %d", path, resp.StatusCode)
	}
	return nil
}
