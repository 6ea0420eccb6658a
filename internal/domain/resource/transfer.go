package resource

import (
	"context"
	"strings"

	"edu-resources/internal/utils/platformerrors"
	"edu-resources/utils/resourceid"
)

// MsgImportFormat rejects an import that is not a list of valid records.
const MsgImportFormat = "导入失败：数据格式不正确"

// Export returns every registered resource, newest first.
func (s *Service) Export(ctx context.Context) ([]*Resource, error) {
	items, _, err := s.List(ctx, Filter{})
	return items, err
}

// Import merges records into the registry. The whole batch is validated
// before anything is written. Records whose id is already registered, or
// repeated within the batch, are skipped; records without an id get a new
// one. Only metadata is imported: stored records must reference blobs that
// already exist in their backend.
func (s *Service) Import(ctx context.Context, records []*Resource) (*ImportResult, error) {
	if records == nil {
		return nil, validationError(ctx, MsgImportFormat, "e1b7d3f9-6a2c-4d8e-9f0a-1b2c3d4e5f6a")
	}

	prepared := make([]*Resource, 0, len(records))
	for _, record := range records {
		res, ok := normalizeImport(ctx, record)
		if !ok {
			return nil, validationError(ctx, MsgImportFormat, "f2c8e4a0-7b3d-4e9f-8a1b-2c3d4e5f6a7b")
		}
		prepared = append(prepared, res)
	}

	result := &ImportResult{}
	seen := make(map[string]bool, len(prepared))
	for _, res := range prepared {
		if res.ID == "" {
			res.ID = resourceid.New()
		}
		if seen[res.ID] {
			result.Skipped++
			continue
		}
		seen[res.ID] = true

		if _, err := s.repo.GetByID(ctx, res.ID); err == nil {
			result.Skipped++
			continue
		} else if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return result, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to import resources")
		}

		if res.CreatedAt.IsZero() {
			res.CreatedAt = s.now().UTC()
		}
		if err := s.repo.Create(ctx, res); err != nil {
			return result, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to import resources")
		}
		result.Imported++
	}

	s.log.Info().
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("registry import finished")
	return result, nil
}

// normalizeImport applies the registration rules to an imported record.
func normalizeImport(ctx context.Context, record *Resource) (*Resource, bool) {
	if record == nil {
		return nil, false
	}
	resType, ok := ParseType(string(record.Type))
	if !ok {
		return nil, false
	}
	title := strings.TrimSpace(record.Title)
	if title == "" || record.SizeBytes < 0 {
		return nil, false
	}

	res := &Resource{
		ID:               strings.TrimSpace(record.ID),
		Title:            title,
		Description:      strings.TrimSpace(record.Description),
		Type:             resType,
		StorageProvider:  strings.TrimSpace(record.StorageProvider),
		StorageRef:       strings.TrimSpace(record.StorageRef),
		OriginalFileName: strings.TrimSpace(record.OriginalFileName),
		SizeBytes:        record.SizeBytes,
		MimeType:         normalizeMediaType(record.MimeType),
		CreatedAt:        record.CreatedAt.UTC(),
	}

	switch res.StorageProvider {
	case ProviderURL:
		link, err := checkLinkURL(ctx, res.StorageRef)
		if err != nil {
			return nil, false
		}
		res.StorageRef = link
		if res.OriginalFileName == "" {
			res.OriginalFileName = linkFileName(link)
		}
	case ProviderLocal, ProviderS3:
		if res.StorageRef == "" {
			return nil, false
		}
	default:
		return nil, false
	}
	return res, true
}

// Usage reports resource counts and bytes per type.
func (s *Service) Usage(ctx context.Context) (*Usage, error) {
	counts, err := s.repo.CountByType(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to summarise resources")
	}

	usage := &Usage{
		ByType:         make(map[Type]TypeUsage, len(Types)),
		Storage:        s.storage.Provider(),
		MaxUploadBytes: s.cfg.MaxUploadBytes,
	}
	for _, t := range Types {
		entry := counts[t]
		usage.ByType[t] = entry
		usage.Total += entry.Count
		usage.TotalBytes += entry.Bytes
	}
	return usage, nil
}
