package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	defaultBaseURL = "https://graph.microsoft.com/v1.0"
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond

	// PageLimit is the single-page item cap requested from the list API.
	// The source system performs no pagination: datasets beyond this size
	// come back truncated, and Page.Truncated reports when that happens.
	PageLimit = 999
)

// AuthError reports a failure to obtain a bearer token. The pipeline halts
// on it; stale data is never served in its place.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("obtaining access token: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a network or HTTP failure against the list endpoint.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching list items: %v", e.Err)
	}
	return fmt.Sprintf("fetching list items: unexpected status %d", e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client reads items from a SharePoint list through the Microsoft Graph API.
type Client struct {
	tokens     oauth2.TokenSource
	baseURL    string
	httpClient *http.Client
	siteID     string
	listID     string
}

// NewClient creates a Graph list client for the given site and list.
func NewClient(tokens oauth2.TokenSource, siteID, listID string) *Client {
	return &Client{
		tokens:  tokens,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		siteID: siteID,
		listID: listID,
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(tokens oauth2.TokenSource, siteID, listID, baseURL string) *Client {
	c := NewClient(tokens, siteID, listID)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Page is one fetched page of raw list items, each item being the opaque
// fields object of a list row.
type Page struct {
	Items     []map[string]any
	Truncated bool
}

type listResponse struct {
	Value []struct {
		Fields map[string]any `json:"fields"`
	} `json:"value"`
}

// ListItems fetches the list rows, expanding fields and requesting up to
// PageLimit items. Transient failures (429 and 5xx) are retried with
// exponential backoff; other failures surface immediately as *FetchError.
// Token acquisition failures surface as *AuthError.
func (c *Client) ListItems(ctx context.Context) (Page, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return Page{}, &AuthError{Err: err}
	}

	url := fmt.Sprintf("%s/sites/%s/lists/%s/items?expand=fields&$top=%d", c.baseURL, c.siteID, c.listID, PageLimit)

	var lastErr error
	for attempt := range maxRetries {
		page, err := c.fetch(ctx, url, tok.AccessToken)
		if err == nil {
			return page, nil
		}
		if !isTransient(err) {
			return Page{}, err
		}
		lastErr = err
		if attempt < maxRetries-1 {
			backoff := time.Duration(float64(initialBackoff) * math.Pow(2, float64(attempt)))
			select {
			case <-ctx.Done():
				return Page{}, &FetchError{Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}
	}

	return Page{}, fmt.Errorf("giving up after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) fetch(ctx context.Context, url, accessToken string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, &FetchError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, &FetchError{Err: fmt.Errorf("executing request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Page{}, &FetchError{Status: resp.StatusCode}
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return Page{}, &FetchError{Err: fmt.Errorf("decoding response: %w", err)}
	}

	items := make([]map[string]any, 0, len(list.Value))
	for _, v := range list.Value {
		if v.Fields == nil {
			continue
		}
		items = append(items, v.Fields)
	}

	return Page{
		Items:     items,
		Truncated: len(items) >= PageLimit,
	}, nil
}

func isTransient(err error) bool {
	fe, ok := err.(*FetchError)
	if !ok {
		return false
	}
	return fe.Status == http.StatusTooManyRequests || fe.Status >= 500
}
