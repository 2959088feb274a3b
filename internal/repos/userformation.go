package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/types"
)

type UserFormationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sel *types.UserFormation) (*types.UserFormation, error)
	Exists(ctx context.Context, tx *gorm.DB, userID, formationID uuid.UUID) (bool, error)
	ListFormationsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Formation, error)
	ListFormationIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
}

type userFormationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserFormationRepo(db *gorm.DB, baseLog *logger.Logger) UserFormationRepo {
	return &userFormationRepo{db: db, log: baseLog.With("repo", "UserFormationRepo")}
}

func (r *userFormationRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userFormationRepo) Create(ctx context.Context, tx *gorm.DB, sel *types.UserFormation) (*types.UserFormation, error) {
	if sel.ID == uuid.Nil {
		sel.ID = uuid.New()
	}
	if err := r.conn(tx).WithContext(ctx).Create(sel).Error; err != nil {
		return nil, err
	}
	return sel, nil
}

func (r *userFormationRepo) Exists(ctx context.Context, tx *gorm.DB, userID, formationID uuid.UUID) (bool, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).
		Model(&types.UserFormation{}).
		Where("user_id = ? AND formation_id = ?", userID, formationID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userFormationRepo) ListFormationsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Formation, error) {
	var results []*types.Formation
	err := r.conn(tx).WithContext(ctx).
		Model(&types.Formation{}).
		Joins("JOIN user_formation ON user_formation.formation_id = formation.id").
		Where("user_formation.user_id = ?", userID).
		Order("user_formation.created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userFormationRepo) ListFormationIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.conn(tx).WithContext(ctx).
		Model(&types.UserFormation{}).
		Where("user_id = ?", userID).
		Pluck("formation_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
