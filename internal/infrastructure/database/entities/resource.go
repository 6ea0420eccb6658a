package entities

import "time"

// Resource is the persisted registry row. FileName holds the storage
// reference: a file name, an object key or an external link.
type Resource struct {
	ID              string    `gorm:"type:varchar(40);primaryKey"`
	Title           string    `gorm:"type:text;not null"`
	Description     string    `gorm:"type:text;not null;default:''"`
	Type            string    `gorm:"type:varchar(16);not null;index:idx_resources_type"`
	StorageProvider string    `gorm:"type:varchar(16);not null"`
	FileName        string    `gorm:"type:text;not null"`
	OriginalName    string    `gorm:"type:text;not null;default:''"`
	FileSize        int64     `gorm:"not null;default:0"`
	MimeType        string    `gorm:"type:varchar(128);not null;default:''"`
	UploadTime      time.Time `gorm:"not null;index:idx_resources_upload_time"`
}

func (Resource) TableName() string {
	return "resources"
}
