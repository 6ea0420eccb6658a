// Package client is a typed Go client for the educational resource API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrTransport marks failures where no usable answer came back: network
// errors and non-JSON responses. Callers may retry.
var ErrTransport = errors.New("网络异常，请稍后重试")

// APIError is an error answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	RequestID  string
}

func (e *APIError) Error() string {
	return e.Message
}

// Resource mirrors the server's resource representation.
type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	FileKey     string    `json:"fileKey"`
	DownloadURL string    `json:"downloadUrl"`
	FileName    string    `json:"fileName"`
	Size        int64     `json:"size"`
	MimeType    string    `json:"mimeType"`
	Storage     string    `json:"storage"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListOptions narrows a listing. Zero values are omitted.
type ListOptions struct {
	Type   string
	Query  string
	Limit  int
	Offset int
}

// Page is one page of a listing.
type Page struct {
	Items []Resource
	Total int64
}

// Link registers an externally hosted resource.
type Link struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// Health is the upload service health answer.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Total     int64           `json:"total"`
	Error     string          `json:"error"`
	Code      string          `json:"code"`
	RequestID string          `json:"request_id"`
}

// Client talks to a resource server.
type Client struct {
	baseURL    string
	httpClient *resty.Client
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", "edu-resources-client/1.0").
		SetHeader("Accept", "application/json").
		SetTimeout(5 * time.Minute)
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// BaseURL returns the server root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload submits form as multipart/form-data.
func (c *Client) Upload(ctx context.Context, form UploadForm) (*Resource, error) {
	req := c.httpClient.R().
		SetContext(ctx).
		SetMultipartFormData(map[string]string{
			"type":        form.Type,
			"title":       form.Title,
			"description": form.Description,
		})
	if form.File != nil {
		req = req.SetMultipartField("file", form.File.Name, form.File.contentType(), form.File.reader())
	}

	resp, err := req.Post("/api/upload")
	return decodeResource(resp, err)
}

// RegisterLink records an external link as a resource.
func (c *Client) RegisterLink(ctx context.Context, link Link) (*Resource, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(link).
		Post("/api/resources/link")
	return decodeResource(resp, err)
}

// List returns one page of resources, newest first.
func (c *Client) List(ctx context.Context, opts ListOptions) (*Page, error) {
	req := c.httpClient.R().SetContext(ctx)
	if opts.Type != "" {
		req.SetQueryParam("type", opts.Type)
	}
	if opts.Query != "" {
		req.SetQueryParam("q", opts.Query)
	}
	if opts.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		req.SetQueryParam("offset", strconv.Itoa(opts.Offset))
	}

	resp, err := req.Get("/api/resources")
	env, err := decode(resp, err)
	if err != nil {
		return nil, err
	}
	var items []Resource
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}
	if items == nil {
		items = []Resource{}
	}
	return &Page{Items: items, Total: env.Total}, nil
}

// Get fetches a single resource.
func (c *Client) Get(ctx context.Context, id string) (*Resource, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/api/resources/{id}")
	return decodeResource(resp, err)
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/api/resources/{id}")
	_, err = decode(resp, err)
	return err
}

// Health queries the upload health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var health Health
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get("/api/upload")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.IsError() {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	}
	if err := json.Unmarshal(resp.Body(), &health); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &health, nil
}

func decode(resp *resty.Response, err error) (*envelope, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	var env envelope
	if jsonErr := json.Unmarshal(resp.Body(), &env); jsonErr != nil {
		return nil, fmt.Errorf("%w: status %d: non-JSON response", ErrTransport, resp.StatusCode())
	}

	if resp.IsError() || env.Error != "" {
		message := env.Error
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode(),
			Message:    message,
			Code:       env.Code,
			RequestID:  env.RequestID,
		}
	}
	return &env, nil
}

func decodeResource(resp *resty.Response, err error) (*Resource, error) {
	env, err := decode(resp, err)
	if err != nil {
		return nil, err
	}
	var res Resource
	if err := json.Unmarshal(env.Data, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return &res, nil
}
