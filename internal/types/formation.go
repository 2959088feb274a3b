package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaKind distinguishes the two catalog media types.
type MediaKind string

const (
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "pdf"
)

func ParseMediaKind(s string) (MediaKind, bool) {
	switch MediaKind(s) {
	case MediaVideo:
		return MediaVideo, true
	case MediaDocument:
		return MediaDocument, true
	}
	return "", false
}

// Formation is one learning resource in the catalog. Title is unique,
// enforced at creation. DurationMinutes/SizeMB are derived metadata and
// stay nil when derivation failed; display formatting lives in the media
// service, not here.
type Formation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"uniqueIndex;not null;column:title" json:"title"`
	Description string    `gorm:"not null;column:description" json:"description"`
	Domain      string    `gorm:"not null;index;column:domain" json:"domain"`
	Type        MediaKind `gorm:"type:varchar(20);not null;index;column:type" json:"type"`
	Link        string    `gorm:"not null;column:link" json:"link"`

	// BucketKey is set when the source lives in our object store rather
	// than behind an external URL.
	BucketKey string `gorm:"column:bucket_key" json:"-"`

	DurationMinutes *int     `gorm:"column:duration_minutes" json:"duration_minutes,omitempty"`
	SizeMB          *float64 `gorm:"column:size_mb" json:"size_mb,omitempty"`

	// DurationDisplay is derived per response, never persisted.
	DurationDisplay string `gorm:"-" json:"duration_display,omitempty"`

	OwnerID *uuid.UUID `gorm:"type:uuid;index;column:owner_id" json:"owner_id,omitempty"`
	Owner   *User      `gorm:"constraint:OnDelete:SET NULL;foreignKey:OwnerID;references:ID" json:"owner,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Formation) TableName() string { return "formation" }
