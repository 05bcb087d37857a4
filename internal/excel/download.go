package excel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// SplitGroupPath splits a stored roster path into the directory passed as
// groupPath and the file name, accepting either slash.
func SplitGroupPath(p string) (dir, name string) {
	p = strings.Trim(strings.ReplaceAll(p, `\`, "/"), "/")
	dir, name = path.Split(p)
	return strings.TrimSuffix(dir, "/"), name
}

// DownloadClient fetches roster workbooks from the download endpoint.
type DownloadClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewDownloadClient(baseURL string) *DownloadClient {
	return &DownloadClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// WithToken returns a copy that sends token as a bearer token.
func (d *DownloadClient) WithToken(token string) *DownloadClient {
	cp := *d
	cp.token = token
	return &cp
}

// URL is the download address of a stored roster path.
func (d *DownloadClient) URL(groupPath string) string {
	dir, name := SplitGroupPath(groupPath)
	q := url.Values{"groupPath": {dir}}
	return d.baseURL + "/download/" + url.PathEscape(name) + "?" + q.Encode()
}

// Fetch downloads the workbook stored at groupPath.
func (d *DownloadClient) Fetch(ctx context.Context, groupPath string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL(groupPath), nil)
	if err != nil {
		return nil, err
	}
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch roster %s: bad status: %s", groupPath, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	return body, nil
}
