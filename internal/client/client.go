// Package client talks to the shelf-manager JSON API.
//
// Client implements workflow.Catalog and workflow.Gateway, so a booklist
// build can be driven against a remote server. Client is also a
// workflow.Committer that sends a whole build to the transactional commit
// endpoint; wrap it in workflow.FanOutCommitter for the two-phase path.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sa-tya/shelf-manager/internal/entities"
	"github.com/Sa-tya/shelf-manager/internal/workflow"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

var (
	_ workflow.Catalog   = (*Client)(nil)
	_ workflow.Gateway   = (*Client)(nil)
	_ workflow.Committer = (*Client)(nil)
)

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + "/api" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) Subjects(ctx context.Context) ([]entities.Subject, error) {
	var out []entities.Subject
	err := c.do(ctx, http.MethodGet, "/subjects", nil, nil, &out)
	return out, err
}

func (c *Client) Publications(ctx context.Context) ([]entities.Publication, error) {
	var out []entities.Publication
	err := c.do(ctx, http.MethodGet, "/publications", nil, nil, &out)
	return out, err
}

func (c *Client) BookNames(ctx context.Context, filter workflow.BookFilter) ([]entities.BookName, error) {
	q := url.Values{}
	if filter.SubjectID != 0 {
		q.Set("subject_id", strconv.FormatUint(uint64(filter.SubjectID), 10))
	}
	if filter.PublicationID != 0 {
		q.Set("company_id", strconv.FormatUint(uint64(filter.PublicationID), 10))
	}

	var out []entities.BookName
	err := c.do(ctx, http.MethodGet, "/booknames", q, nil, &out)
	return out, err
}

// Prices returns workflow.ErrNoPrices when the title has no entries.
func (c *Client) Prices(ctx context.Context, bookNameID uint) (map[string]float64, error) {
	var out struct {
		Prices map[string]float64 `json:"prices"`
	}
	q := url.Values{"id": {strconv.FormatUint(uint64(bookNameID), 10)}}
	err := c.do(ctx, http.MethodGet, "/books/price", q, nil, &out)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %w", workflow.ErrNoPrices, err)
	}
	if err != nil {
		return nil, err
	}
	if out.Prices == nil {
		out.Prices = map[string]float64{}
	}
	return out.Prices, nil
}

func (c *Client) BooklistItems(ctx context.Context, schoolCode string, session int) ([]entities.BooklistItemView, error) {
	q := url.Values{"schoolId": {schoolCode}}
	if session != 0 {
		q.Set("session", strconv.Itoa(session))
	}
	var out []entities.BooklistItemView
	err := c.do(ctx, http.MethodGet, "/booklist/items", q, nil, &out)
	return out, err
}

// Overview returns the sessions and booklists of a school. A zero session
// selects the latest.
func (c *Client) Overview(ctx context.Context, schoolCode string, session int) (*entities.BooklistSessions, error) {
	q := url.Values{"schoolId": {schoolCode}}
	if session != 0 {
		q.Set("session", strconv.Itoa(session))
	}
	var out entities.BooklistSessions
	if err := c.do(ctx, http.MethodGet, "/booklist", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBooklist(ctx context.Context, schoolCode, class string) (*entities.Booklist, error) {
	body := map[string]string{"schoolId": schoolCode, "class": class}
	var out entities.Booklist
	if err := c.do(ctx, http.MethodPost, "/booklist", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddBooklistItem(ctx context.Context, req workflow.ItemRequest) (*entities.BooklistItemView, error) {
	body := map[string]any{
		"schoolId":   req.SchoolCode,
		"booklistId": req.BooklistID,
		"book_id":    req.BookNameID,
		"_class":     req.Class,
	}
	var out entities.BooklistItemView
	if err := c.do(ctx, http.MethodPost, "/booklist/items", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type commitClass struct {
	Class   string `json:"class"`
	BookIDs []uint `json:"book_ids"`
}

type commitRequest struct {
	SchoolID string        `json:"schoolId"`
	Session  int           `json:"session,omitempty"`
	Classes  []commitClass `json:"classes"`
}

// Commit sends a build to the transactional endpoint.
func (c *Client) Commit(ctx context.Context, schoolCode string, session int, staged []workflow.StagedClass) (*workflow.CommitResult, error) {
	req := commitRequest{SchoolID: schoolCode, Session: session}
	for _, sc := range staged {
		cc := commitClass{Class: sc.Class}
		for _, b := range sc.Books {
			cc.BookIDs = append(cc.BookIDs, b.Book.ID)
		}
		req.Classes = append(req.Classes, cc)
	}

	var out workflow.CommitResult
	if err := c.do(ctx, http.MethodPost, "/booklist/commit", nil, req, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", workflow.ErrCommitFailed, err)
	}
	return &out, nil
}
