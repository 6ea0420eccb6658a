package requests

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domain "edu-resources/internal/domain/resource"
)

// ListResourcesRequest carries registry query parameters.
type ListResourcesRequest struct {
	Type   string `form:"type"`
	Query  string `form:"q"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// ToDomain converts request to a registry filter.
func (r *ListResourcesRequest) ToDomain() domain.Filter {
	return domain.Filter{
		Type:   domain.Type(strings.ToLower(strings.TrimSpace(r.Type))),
		Query:  r.Query,
		Limit:  r.Limit,
		Offset: r.Offset,
	}
}

// RegisterLinkRequest registers an externally hosted resource.
type RegisterLinkRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// ToDomain converts request to the domain link request.
func (r *RegisterLinkRequest) ToDomain() domain.LinkRequest {
	return domain.LinkRequest{
		Type:        r.Type,
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
	}
}

// ErrBodyTooLarge is returned when the multipart body exceeds the read limit.
var ErrBodyTooLarge = errors.New("request body too large")

// ParseUpload decodes the multipart upload form. A request that is not
// multipart, or has no "file" part, yields an UploadRequest without a file.
// The returned closer releases the opened file part.
func ParseUpload(c *gin.Context) (domain.UploadRequest, func(), error) {
	noop := func() {}
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.UploadRequest{}, noop, ErrBodyTooLarge
		}
		return domain.UploadRequest{}, noop, nil
	}

	req := domain.UploadRequest{
		Type:        firstValue(form, "type"),
		Title:       firstValue(form, "title"),
		Description: firstValue(form, "description"),
	}

	headers := form.File["file"]
	if len(headers) == 0 || headers[0] == nil {
		return req, noop, nil
	}
	header := headers[0]
	file, err := header.Open()
	if err != nil {
		return req, noop, err
	}

	req.File = &domain.UploadFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return req, func() { _ = file.Close() }, nil
}

func firstValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// ImportRecord is one entry of an exported registry dump. downloadUrl is
// accepted and ignored: access URLs are derived again after import.
type ImportRecord struct {
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

// ToDomain converts the record to a registry resource.
func (r *ImportRecord) ToDomain() *domain.Resource {
	if r == nil {
		return nil
	}
	return &domain.Resource{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Type:             domain.Type(r.Type),
		StorageProvider:  r.Storage,
		StorageRef:       r.FileKey,
		OriginalFileName: r.FileName,
		SizeBytes:        r.Size,
		MimeType:         r.MimeType,
		CreatedAt:        r.CreatedAt,
	}
}

// ErrImportFormat is returned when an import body is not a JSON array of
// records.
var ErrImportFormat = errors.New("import body must be a JSON array")

// ParseImport reads a JSON array of records of at most limit bytes.
func ParseImport(c *gin.Context, limit int64) ([]*domain.Resource, error) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrBodyTooLarge
		}
		return nil, err
	}

	var records []*ImportRecord
	if err := json.Unmarshal(data, &records); err != nil || records == nil {
		return nil, ErrImportFormat
	}
	out := make([]*domain.Resource, 0, len(records))
	for _, record := range records {
		out = append(out, record.ToDomain())
	}
	return out, nil
}
