package resource

import (
	"io"
	"strings"
	"time"
)

// Type enumerates the kinds of educational resources.
type Type string

const (
	TypeVideo Type = "video"
	TypePPT   Type = "ppt"
	TypeAI    Type = "ai"
)

// Types lists every recognised resource type in display order.
var Types = []Type{TypeVideo, TypePPT, TypeAI}

// ParseType normalises raw input and reports whether it names a known type.
func ParseType(raw string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	return t, t.Valid()
}

// Valid reports whether t is one of video, ppt or ai.
func (t Type) Valid() bool {
	switch t {
	case TypeVideo, TypePPT, TypeAI:
		return true
	default:
		return false
	}
}

// Storage providers recorded with each resource.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
	ProviderURL   = "url"
)

// Resource is a registered piece of educational content.
type Resource struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Type             Type      `json:"type"`
	StorageProvider  string    `json:"storage"`
	StorageRef       string    `json:"fileKey"`
	AccessURL        string    `json:"downloadUrl"`
	OriginalFileName string    `json:"fileName"`
	SizeBytes        int64     `json:"size"`
	MimeType         string    `json:"mimeType"`
	CreatedAt        time.Time `json:"createdAt"`
}

// UploadRequest is a single multipart submission after transport decoding.
// File is nil when the caller did not attach one.
type UploadRequest struct {
	Type        string
	Title       string
	Description string
	File        *UploadFile
}

// UploadFile describes the attached file part.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// LinkRequest registers an externally hosted resource by URL.
type LinkRequest struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Filter narrows registry listings. Zero values mean "no constraint".
type Filter struct {
	Type   Type
	Query  string
	Limit  int
	Offset int
}

// TypeUsage is the registry footprint of one resource type.
type TypeUsage struct {
	Count int64 `json:"count"`
	Bytes int64 `json:"bytes"`
}

// Usage summarises the registry and the active storage backend.
type Usage struct {
	Total          int64
	TotalBytes     int64
	ByType         map[Type]TypeUsage
	Storage        string
	MaxUploadBytes int64
}

// ImportResult reports how many records an import added.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
