// Package fieldbook implements the record-store RecordSource against the
// Fieldbook REST API.
package fieldbook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"bookbridge/internal/errors"
)

const defaultPageSize = 1000

// Client is a Fieldbook API client scoped to a single access token
type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
}

// NewClient creates a Fieldbook client. A pageSize of 0 or less uses the
// default page size.
func NewClient(baseURL, token string, timeout time.Duration, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		baseURL:  baseURL,
		token:    token,
		pageSize: pageSize,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type recordsResponse struct {
	Records []map[string]any `json:"records"`
}

// FetchAll retrieves every record in an app, paging with limit/offset until
// a short page signals the end
func (c *Client) FetchAll(ctx context.Context, appID string) ([]map[string]any, error) {
	if appID == "" {
		return nil, errors.InvalidInput("app id is required")
	}

	var all []map[string]any
	offset := 0
	for {
		page, err := c.fetchPage(ctx, appID, c.pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < c.pageSize {
			break
		}
		offset += c.pageSize
	}

	log.Printf("[Fieldbook] Fetched %d records from app %s", len(all), appID)
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, appID string, limit, offset int) ([]map[string]any, error) {
	endpoint := fmt.Sprintf("%s/apps/%s/records", c.baseURL, url.PathEscape(appID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build records request: %w", err)
	}
	q := req.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError("fieldbook", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.ExternalServiceError("fieldbook",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed recordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode records response: %w", err)
	}
	return parsed.Records, nil
}

// FilterRecords retrieves the records in an app matching the given field
// filters, using the record store's server-side search endpoint with the
// same limit/offset paging as FetchAll
func (c *Client) FilterRecords(ctx context.Context, appID string, filters map[string]string) ([]map[string]any, error) {
	if appID == "" {
		return nil, errors.InvalidInput("app id is required")
	}

	var all []map[string]any
	offset := 0
	for {
		page, err := c.searchPage(ctx, appID, filters, c.pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < c.pageSize {
			break
		}
		offset += c.pageSize
	}
	return all, nil
}

func (c *Client) searchPage(ctx context.Context, appID string, filters map[string]string, limit, offset int) ([]map[string]any, error) {
	endpoint := fmt.Sprintf("%s/apps/%s/records/search", c.baseURL, url.PathEscape(appID))

	payload, err := json.Marshal(map[string]any{
		"filters": filters,
		"limit":   limit,
		"offset":  offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError("fieldbook", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.ExternalServiceError("fieldbook",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed recordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return parsed.Records, nil
}

// CountActiveEnrollments counts the records in an enrollment app whose
// status marks them as active, filtered server-side
func (c *Client) CountActiveEnrollments(ctx context.Context, appID string) (int, error) {
	records, err := c.FilterRecords(ctx, appID, map[string]string{"status": "Active"})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
