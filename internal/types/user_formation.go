package types

import (
	"time"

	"github.com/google/uuid"
)

// UserFormation is a learner's claim on a catalog entry. At most one row
// per (user, formation) pair.
type UserFormation struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_formation_pair;column:user_id" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	FormationID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_formation_pair;column:formation_id" json:"formation_id"`
	Formation   *Formation `gorm:"constraint:OnDelete:CASCADE;foreignKey:FormationID;references:ID" json:"formation,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserFormation) TableName() string { return "user_formation" }
