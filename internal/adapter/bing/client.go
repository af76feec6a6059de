package bing

import (
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

	"memebot/internal/domain"
	"memebot/internal/usecase/search"
)

const searchPath = "v7.0/images/search"

var ErrTooLarge = errors.New("download exceeds size limit")

type Client struct {
	endpoint string
	key      string
	maxBytes int64
	http     *http.Client
}

func NewClient(endpoint, key string, timeout time.Duration, maxBytes int64) *Client {
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &Client{
		endpoint: endpoint + searchPath,
		key:      key,
		maxBytes: maxBytes,
		http:     &http.Client{Timeout: timeout},
	}
}

type imagesResponse struct {
	Value      []imageObject `json:"value"`
	NextOffset int           `json:"nextOffset"`
	Error      *apiError     `json:"error,omitempty"`
}

type imageObject struct {
	Name           string `json:"name"`
	ContentURL     string `json:"contentUrl"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	EncodingFormat string `json:"encodingFormat"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) Search(ctx context.Context, q search.Query) (search.Page, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("mkt", q.Market)
	params.Set("count", strconv.Itoa(q.Count))
	params.Set("offset", strconv.Itoa(q.Offset))
	params.Set("safeSearch", q.SafeSearch)
	params.Set("minWidth", strconv.Itoa(q.MinWidth))
	params.Set("minHeight", strconv.Itoa(q.MinHeight))
	params.Set("maxWidth", strconv.Itoa(q.MaxWidth))
	params.Set("maxHeight", strconv.Itoa(q.MaxHeight))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return search.Page{}, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	if q.ClientID != "" {
		req.Header.Set("X-MSEdge-ClientID", q.ClientID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return search.Page{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return search.Page{}, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr imagesResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			return search.Page{}, fmt.Errorf("bing error: %s", apiErr.Error.Message)
		}
		return search.Page{}, fmt.Errorf("bing error: status %d", resp.StatusCode)
	}

	var apiResp imagesResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return search.Page{}, err
	}

	results := make([]domain.SearchResult, 0, len(apiResp.Value))
	for _, v := range apiResp.Value {
		if strings.TrimSpace(v.ContentURL) == "" {
			continue
		}
		results = append(results, domain.SearchResult{
			Name:   v.Name,
			URL:    v.ContentURL,
			Width:  v.Width,
			Height: v.Height,
		})
	}

	return search.Page{
		Results:    results,
		NextOffset: apiResp.NextOffset,
	}, nil
}

func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}
	return readLimited(resp.Body, c.maxBytes)
}

// readLimited reads r fully, failing once more than limit bytes arrive.
// A non-positive limit disables the check.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
