// Package client talks to a clipforge upload server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opd-ai/clipforge/catalog"
	"github.com/opd-ai/clipforge/server"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a whole request, upload processing included.
const DefaultTimeout = 5 * time.Minute

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// ProgressFunc receives the bytes of the file sent so far and its total size.
type ProgressFunc func(sent, total int64)

// Client is an HTTP client for one server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client for baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// Upload streams the file at path with the given filter name and returns
// the id assigned by the server. progress may be nil.
func (c *Client) Upload(ctx context.Context, path, filter string, progress ProgressFunc) (*server.UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, f, filepath.Base(path), filter, info.Size(), progress))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload", pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	logrus.WithFields(logrus.Fields{
		"function": "Client.Upload",
		"path":     path,
		"filter":   filter,
		"size":     info.Size(),
	}).Info("Uploading video")

	var resp server.UploadResponse
	if err := c.do(req, http.StatusCreated, &resp); err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	return &resp, nil
}

func writeUpload(mw *multipart.Writer, src io.Reader, name, filter string, total int64, progress ProgressFunc) error {
	if err := mw.WriteField("filter", filter); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("video", name)
	if err != nil {
		return err
	}

	reader := src
	if progress != nil {
		progress(0, total)
		reader = &progressReader{r: src, total: total, fn: progress}
	}
	if _, err := io.Copy(part, reader); err != nil {
		return err
	}
	return mw.Close()
}

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.fn(p.sent, p.total)
	}
	return n, err
}

// History returns every processed video, newest first.
func (c *Client) History(ctx context.Context) ([]catalog.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/videos", nil)
	if err != nil {
		return nil, err
	}
	var records []catalog.Record
	if err := c.do(req, http.StatusOK, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Video returns one record.
func (c *Client) Video(ctx context.Context, id string) (catalog.Record, error) {
	var record catalog.Record
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/videos/"+url.PathEscape(id), nil)
	if err != nil {
		return record, err
	}
	err = c.do(req, http.StatusOK, &record)
	return record, err
}

// MediaURL returns the URL of a path stored in a catalog record.
func (c *Client) MediaURL(rel string) string {
	return c.BaseURL + "/media/" + strings.TrimLeft(rel, "/")
}

func (c *Client) do(req *http.Request, want int, out any) error {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var body server.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &body) != nil {
			body.Error = strings.TrimSpace(string(data))
		}
		return &StatusError{Code: resp.StatusCode, Message: body.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
