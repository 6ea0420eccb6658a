package resource

import (
	"context"
	"errors"
	"math"
	"strings"

	"gorm.io/gorm"

	domain "edu-resources/internal/domain/resource"
	"edu-resources/internal/infrastructure/database/entities"
	"edu-resources/internal/utils/platformerrors"
)

// Repository persists the resource registry via GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, res *domain.Resource) error {
	entity := toEntity(res)
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create resource",
			err,
			"3f1a7c2d-8e4b-4d6a-9b0c-5e7f8a9b0c1d",
		)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	var entity entities.Resource
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				domain.MsgNotFound,
				err,
				"4a2b8d3e-9f5c-4e7b-8c1d-6f8a9b0c1d2e",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get resource by id",
			err,
			"5b3c9e4f-0a6d-4f8c-9d2e-7a9b0c1d2e3f",
		)
	}
	res := fromEntity(entity)
	return &res, nil
}

// List returns one page of matching resources, newest first, and the total
// number of matches.
func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]*domain.Resource, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count resources",
			err,
			"6c4d0f5a-1b7e-4a9d-8e3f-8b0c1d2e3f4a",
		)
	}

	query := r.filtered(ctx, filter).Order("upload_time DESC").Order("id DESC")
	switch {
	case filter.Limit > 0:
		query = query.Limit(filter.Limit)
	case filter.Offset > 0:
		// sqlite rejects OFFSET without LIMIT
		query = query.Limit(math.MaxInt32)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []entities.Resource
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list resources",
			err,
			"7d5e1a6b-2c8f-4b0e-9f4a-9c1d2e3f4a5b",
		)
	}

	items := make([]*domain.Resource, 0, len(rows))
	for _, row := range rows {
		res := fromEntity(row)
		items = append(items, &res)
	}
	return items, total, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Resource{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete resource",
			result.Error,
			"8e6f2b7c-3d9a-4c1f-8a5b-0d2e3f4a5b6c",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			domain.MsgNotFound,
			nil,
			"9f7a3c8d-4e0b-4d2a-9b6c-1e3f4a5b6c7d",
		)
	}
	return nil
}

type typeUsageRow struct {
	Type  string
	Count int64
	Bytes int64
}

// CountByType aggregates resource counts and stored bytes per type.
func (r *Repository) CountByType(ctx context.Context) (map[domain.Type]domain.TypeUsage, error) {
	var rows []typeUsageRow
	err := r.db.WithContext(ctx).
		Model(&entities.Resource{}).
		Select("type, COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS bytes").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count resources by type",
			err,
			"0a8b4d9e-5f2c-4e1b-9c3d-2e4f5a6b7c8d",
		)
	}

	out := make(map[domain.Type]domain.TypeUsage, len(rows))
	for _, row := range rows {
		out[domain.Type(row.Type)] = domain.TypeUsage{Count: row.Count, Bytes: row.Bytes}
	}
	return out, nil
}

// filtered builds a new statement on every call.
func (r *Repository) filtered(ctx context.Context, filter domain.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entities.Resource{})
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		query = query.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}
	return query
}

// Health pings the underlying connection pool.
func (r *Repository) Health(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toEntity(res *domain.Resource) entities.Resource {
	return entities.Resource{
		ID:              res.ID,
		Title:           res.Title,
		Description:     res.Description,
		Type:            string(res.Type),
		StorageProvider: res.StorageProvider,
		FileName:        res.StorageRef,
		OriginalName:    res.OriginalFileName,
		FileSize:        res.SizeBytes,
		MimeType:        res.MimeType,
		UploadTime:      res.CreatedAt.UTC(),
	}
}

func fromEntity(entity entities.Resource) domain.Resource {
	return domain.Resource{
		ID:               entity.ID,
		Title:            entity.Title,
		Description:      entity.Description,
		Type:             domain.Type(entity.Type),
		StorageProvider:  entity.StorageProvider,
		StorageRef:       entity.FileName,
		OriginalFileName: entity.OriginalName,
		SizeBytes:        entity.FileSize,
		MimeType:         entity.MimeType,
		CreatedAt:        entity.UploadTime.UTC(),
	}
}
