package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserEvent is the audit trail row written on admin mutations, selections
// and chat turns.
type UserEvent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	FormationID *uuid.UUID     `gorm:"type:uuid;index;column:formation_id" json:"formation_id,omitempty"`
	Type        string         `gorm:"not null;index;column:type" json:"type"`
	Data        datatypes.JSON `gorm:"column:data" json:"data,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserEvent) TableName() string { return "user_event" }
