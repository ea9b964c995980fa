package docs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// APIKeyHeader carries the shared document store key.
const APIKeyHeader = "X-API-Key"

// Remote is the document store as used by the screens.
type Remote interface {
	Save(ctx context.Context, doc Document) error
	Fetch(ctx context.Context, id string) (Document, error)
}

var _ Remote = (*Client)(nil)

// Client reads and writes documents on the remote document store.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a document store client. A nil httpClient uses one with
// a 10 second timeout.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

type errorBody struct {
	Error string `json:"error"`
}

// Save uploads doc, creating or replacing it.
func (c *Client) Save(ctx context.Context, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode document")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build save request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)

	if _, err := c.do(req); err != nil {
		return errors.Wrapf(err, "save document %s", doc.DocID)
	}
	return nil
}

// Fetch downloads a document by id.
func (c *Client) Fetch(ctx context.Context, id string) (Document, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Document{}, errors.Wrap(err, "parse document store URL")
	}
	q := u.Query()
	q.Set("docId", id)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Document{}, errors.Wrap(err, "build fetch request")
	}
	req.Header.Set(APIKeyHeader, c.apiKey)

	body, err := c.do(req)
	if err != nil {
		return Document{}, errors.Wrapf(err, "fetch document %s", id)
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return Document{}, errors.Wrapf(err, "decode document %s", id)
	}
	if doc.DocID == "" {
		return Document{}, errors.Wrapf(ErrNotFound, "fetch document %s", id)
	}
	return doc, nil
}

// do performs req and maps {"error": "..."} bodies and non-2xx statuses to
// errors.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return body, nil
	}

	var eb errorBody
	msg := ""
	if json.Unmarshal(body, &eb) == nil {
		msg = eb.Error
	}
	if resp.StatusCode == http.StatusNotFound {
		if msg == "" {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(ErrNotFound, msg)
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return nil, errors.Errorf("HTTP %d: %s", resp.StatusCode, msg)
}
