package resource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"edu-resources/internal/config"
	"edu-resources/internal/infrastructure/observability"
	"edu-resources/internal/utils/platformerrors"
	"edu-resources/utils/resourceid"
)

// sniffLen is how much of the file is inspected for content detection.
const sniffLen = 3072

// Repository defines registry persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, res *Resource) error
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int64, error)
	Delete(ctx context.Context, id string) error
	CountByType(ctx context.Context) (map[Type]TypeUsage, error)
	Health(ctx context.Context) error
}

// Storage defines where resource bytes are written. Implementations must be
// interchangeable: callers never branch on the concrete backend.
type Storage interface {
	Provider() string
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, ref string) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, ref string) error
	Health(ctx context.Context) error
}

// Service orchestrates resource upload and the registry read path.
type Service struct {
	cfg     *config.Config
	repo    Repository
	storage Storage
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(cfg *config.Config, repo Repository, storage Storage, log zerolog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		storage: storage,
		log:     log.With().Str("component", "resource-service").Logger(),
		now:     time.Now,
	}
}

// MaxUploadBytes returns the configured size ceiling.
func (s *Service) MaxUploadBytes() int64 {
	return s.cfg.MaxUploadBytes
}

// Upload validates the submission, writes the bytes once to storage and
// registers the resulting Resource. Every client error is raised before the
// storage write.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*Resource, error) {
	if req.File == nil || req.File.Body == nil {
		return nil, validationError(ctx, MsgMissingFile, "4f0d7a5b-6e8c-4d9f-9a2b-3c4d5e6f7a8b")
	}
	resType, err := checkType(ctx, req.Type)
	if err != nil {
		return nil, err
	}
	title, err := checkTitle(ctx, req.Title)
	if err != nil {
		return nil, err
	}
	file := req.File

	ctx, span := observability.StartUploadSpan(ctx, string(resType), file.Name, file.Size)
	defer span.End()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, MsgUnreadable, err, "5a1e8b6c-7f9d-4e0a-8b3c-4d5e6f7a8b9c")
	}
	head = head[:n]
	if n == 0 {
		return nil, validationError(ctx, MsgEmptyFile, "6b2f9c7d-8a0e-4f1b-9c4d-5e6f7a8b9c0d")
	}

	contentType, err := checkMIME(ctx, resType, file.ContentType, head)
	if err != nil {
		return nil, err
	}

	limit := s.cfg.MaxUploadBytes
	if file.Size > limit {
		return nil, TooLargeError(ctx, limit)
	}
	rest, err := io.ReadAll(io.LimitReader(file.Body, limit-int64(n)+1))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, MsgUnreadable, err, "5a1e8b6c-7f9d-4e0a-8b3c-4d5e6f7a8b9c")
	}
	size := int64(n) + int64(len(rest))
	if size > limit {
		return nil, TooLargeError(ctx, limit)
	}

	name := storageName(resType, file.Name, contentType)
	data := append(head[:n:n], rest...)

	ref, err := s.storage.Put(ctx, name, bytes.NewReader(data), size, contentType)
	if err != nil {
		observability.RecordError(span, err)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, MsgUploadFailed, err, "7c3a0d8e-9b1f-4a2c-8d5e-6f7a8b9c0d1e")
	}
	span.SetAttributes(attribute.String("resource.storage_ref", ref))

	accessURL, err := s.storage.URL(ctx, ref)
	if err != nil {
		observability.RecordError(span, err)
		s.discardBlob(ctx, ref)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, MsgUploadFailed, err, "8d4b1e9f-0c2a-4b3d-9e6f-7a8b9c0d1e2f")
	}

	res := &Resource{
		ID:               resourceid.New(),
		Title:            title,
		Description:      strings.TrimSpace(req.Description),
		Type:             resType,
		StorageProvider:  s.storage.Provider(),
		StorageRef:       ref,
		AccessURL:        accessURL,
		OriginalFileName: file.Name,
		SizeBytes:        size,
		MimeType:         contentType,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.repo.Create(ctx, res); err != nil {
		observability.RecordError(span, err)
		s.discardBlob(ctx, ref)
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, MsgUploadFailed)
	}

	s.log.Info().
		Str("id", res.ID).
		Str("type", string(res.Type)).
		Str("storage_ref", ref).
		Int64("bytes", size).
		Msg("resource uploaded")

	return res, nil
}

// discardBlob removes a blob whose registry entry could not be written.
// Failure only leaves an unreferenced object behind.
func (s *Service) discardBlob(ctx context.Context, ref string) {
	if err := s.storage.Delete(context.WithoutCancel(ctx), ref); err != nil {
		s.log.Warn().Err(err).Str("storage_ref", ref).Msg("failed to remove unreferenced blob")
	}
}

// RegisterLink records an externally hosted resource without storing bytes.
func (s *Service) RegisterLink(ctx context.Context, req LinkRequest) (*Resource, error) {
	resType, err := checkType(ctx, req.Type)
	if err != nil {
		return nil, err
	}
	title, err := checkTitle(ctx, req.Title)
	if err != nil {
		return nil, err
	}
	link, err := checkLinkURL(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	res := &Resource{
		ID:               resourceid.New(),
		Title:            title,
		Description:      strings.TrimSpace(req.Description),
		Type:             resType,
		StorageProvider:  ProviderURL,
		StorageRef:       link,
		AccessURL:        link,
		OriginalFileName: linkFileName(link),
		CreatedAt:        s.now().UTC(),
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to register link")
	}
	return res, nil
}

// List returns registered resources newest first, narrowed by filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Resource, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, validationError(ctx, MsgInvalidType, "0b6f3c1d-2a4e-4f5b-9c8d-7e6f5a4b3c2d")
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, 0, validationError(ctx, MsgInvalidFilter, "9e5c2f0a-1d3b-4c4e-8f7a-8b9c0d1e2f3a")
	}
	filter.Query = strings.TrimSpace(filter.Query)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list resources")
	}
	for _, item := range items {
		s.resolveURL(ctx, item)
	}
	return items, total, nil
}

// FilterByType returns every resource of the given type.
func (s *Service) FilterByType(ctx context.Context, t Type) ([]*Resource, error) {
	items, _, err := s.List(ctx, Filter{Type: t})
	return items, err
}

// Search matches query case-insensitively against title and description.
func (s *Service) Search(ctx context.Context, query string) ([]*Resource, error) {
	items, _, err := s.List(ctx, Filter{Query: query})
	return items, err
}

// Get returns a single resource.
func (s *Service) Get(ctx context.Context, id string) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	s.resolveURL(ctx, res)
	return res, nil
}

// Delete removes the registry entry. Blob removal is best effort.
func (s *Service) Delete(ctx context.Context, id string) error {
	res, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, res.ID); err != nil {
		return err
	}
	if res.StorageProvider == s.storage.Provider() {
		s.discardBlob(ctx, res.StorageRef)
	}
	s.log.Info().Str("id", res.ID).Msg("resource deleted")
	return nil
}

// Open streams a stored resource. Link resources have no stored bytes and
// return an empty reader alongside their URL.
func (s *Service) Open(ctx context.Context, id string) (*Resource, io.ReadCloser, error) {
	res, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if res.StorageProvider == ProviderURL {
		return res, nil, nil
	}
	if res.StorageProvider != s.storage.Provider() {
		return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnavailable, "resource is held by an inactive storage backend", nil, "af6d3a1b-2e4c-4d5f-9a8b-9c0d1e2f3a4b")
	}
	reader, mimeType, err := s.storage.Open(ctx, res.StorageRef)
	if err != nil {
		return nil, nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to open resource", err, "b07e4b2c-3f5d-4e6a-8b9c-0d1e2f3a4b5c")
	}
	if mimeType != "" && res.MimeType == "" {
		res.MimeType = mimeType
	}
	return res, reader, nil
}

// Health checks storage and registry readiness.
func (s *Service) Health(ctx context.Context) error {
	if err := s.storage.Health(ctx); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnavailable, "storage unavailable", err, "c18f5c3d-4a6e-4f7b-9c0d-1e2f3a4b5c6d")
	}
	if err := s.repo.Health(ctx); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnavailable, "registry unavailable", err, "d2906d4e-5b7f-4a8c-8d1e-2f3a4b5c6d7e")
	}
	return nil
}

// resolveURL derives the access URL from the storage reference.
func (s *Service) resolveURL(ctx context.Context, res *Resource) {
	switch res.StorageProvider {
	case ProviderURL:
		res.AccessURL = res.StorageRef
	case s.storage.Provider():
		accessURL, err := s.storage.URL(ctx, res.StorageRef)
		if err != nil {
			s.log.Warn().Err(err).Str("id", res.ID).Msg("failed to resolve access url")
			return
		}
		res.AccessURL = accessURL
	}
}
