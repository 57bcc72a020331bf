package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/donation-holds/internal/model"
)

// HTTPClient talks to a remote donation inventory service over JSON/HTTP.
//
//	GET {base}/donations?lat=..&lng=..&radius=..  -> [item, ...]
//	GET {base}/donations/{id}                     -> item | 404
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient returns a client rooted at baseURL.  A non-positive timeout
// falls back to five seconds.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) ListItems(ctx context.Context, area model.Area) ([]model.CatalogItem, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(area.Latitude, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(area.Longitude, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(area.RadiusMiles, 'f', -1, 64))

	var items []model.CatalogItem
	status, err := c.getJSON(ctx, c.baseURL+"/donations?"+q.Encode(), &items)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("catalog list: unexpected status %d", status)
	}
	return items, nil
}

func (c *HTTPClient) GetItem(ctx context.Context, id string) (model.CatalogItem, error) {
	var item model.CatalogItem
	status, err := c.getJSON(ctx, c.baseURL+"/donations/"+url.PathEscape(id), &item)
	if err != nil {
		return model.CatalogItem{}, err
	}
	switch status {
	case http.StatusOK:
		return item, nil
	case http.StatusNotFound:
		return model.CatalogItem{}, ErrNotFound
	default:
		return model.CatalogItem{}, fmt.Errorf("catalog get %s: unexpected status %d", id, status)
	}
}

// getJSON decodes the body into dst only on 200; other statuses are
// returned for the caller to interpret.
func (c *HTTPClient) getJSON(ctx context.Context, u string, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, fmt.Errorf("decode catalog response: %w", err)
	}
	return resp.StatusCode, nil
}
