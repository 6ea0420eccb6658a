package responses

import (
	"time"

	domain "edu-resources/internal/domain/resource"
)

// Resource is the wire shape of a registered resource.
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

// ResourceResponse wraps a single resource.
type ResourceResponse struct {
	Success bool      `json:"success"`
	Data    *Resource `json:"data"`
}

// ResourceListResponse wraps one page of resources.
type ResourceListResponse struct {
	Success bool        `json:"success"`
	Data    []*Resource `json:"data"`
	Total   int64       `json:"total"`
}

// DeleteResponse confirms a removal.
type DeleteResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// UploadHealthResponse is returned by the upload health check.
type UploadHealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func BuildResource(res *domain.Resource) *Resource {
	return &Resource{
		ID:          res.ID,
		Title:       res.Title,
		Description: res.Description,
		Type:        string(res.Type),
		FileKey:     res.StorageRef,
		DownloadURL: res.AccessURL,
		FileName:    res.OriginalFileName,
		Size:        res.SizeBytes,
		MimeType:    res.MimeType,
		Storage:     res.StorageProvider,
		CreatedAt:   res.CreatedAt,
	}
}

func BuildResourceResponse(res *domain.Resource) *ResourceResponse {
	return &ResourceResponse{Success: true, Data: BuildResource(res)}
}

func BuildResources(items []*domain.Resource) []*Resource {
	data := make([]*Resource, 0, len(items))
	for _, item := range items {
		data = append(data, BuildResource(item))
	}
	return data
}

func BuildResourceListResponse(items []*domain.Resource, total int64) *ResourceListResponse {
	return &ResourceListResponse{Success: true, Data: BuildResources(items), Total: total}
}

// ImportResponse reports the outcome of a registry import.
type ImportResponse struct {
	Success bool                 `json:"success"`
	Data    *domain.ImportResult `json:"data"`
}

// Usage is the wire shape of the registry usage summary.
type Usage struct {
	Total          int64                       `json:"total"`
	TotalBytes     int64                       `json:"totalBytes"`
	ByType         map[string]domain.TypeUsage `json:"byType"`
	Storage        string                      `json:"storage"`
	MaxUploadBytes int64                       `json:"maxUploadBytes"`
	MaxUploadSize  string                      `json:"maxUploadSize"`
}

// UsageResponse wraps the usage summary.
type UsageResponse struct {
	Success bool   `json:"success"`
	Data    *Usage `json:"data"`
}

func BuildUsageResponse(usage *domain.Usage) *UsageResponse {
	byType := make(map[string]domain.TypeUsage, len(usage.ByType))
	for t, entry := range usage.ByType {
		byType[string(t)] = entry
	}
	return &UsageResponse{
		Success: true,
		Data: &Usage{
			Total:          usage.Total,
			TotalBytes:     usage.TotalBytes,
			ByType:         byType,
			Storage:        usage.Storage,
			MaxUploadBytes: usage.MaxUploadBytes,
			MaxUploadSize:  domain.FormatLimit(usage.MaxUploadBytes),
		},
	}
}
