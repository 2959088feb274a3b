package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/types"
)

// FormationFilters narrows a catalog query before any keyword predicate
// runs. Domain and Type are exact-match.
type FormationFilters struct {
	Domain     *string
	Type       *types.MediaKind
	ExcludeIDs []uuid.UUID
}

type FormationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, formation *types.Formation) (*types.Formation, error)
	GetByID(ctx context.Context, tx *gorm.DB, formationID uuid.UUID) (*types.Formation, error)
	GetByTitle(ctx context.Context, tx *gorm.DB, title string) (*types.Formation, error)
	TitleExists(ctx context.Context, tx *gorm.DB, title string) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filters FormationFilters) ([]*types.Formation, error)
	MatchKeyword(ctx context.Context, tx *gorm.DB, keyword string, filters FormationFilters) ([]*types.Formation, error)
	DistinctDomains(ctx context.Context, tx *gorm.DB) ([]string, error)
	Update(ctx context.Context, tx *gorm.DB, formation *types.Formation) error
	Delete(ctx context.Context, tx *gorm.DB, formationID uuid.UUID) error
}

type formationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFormationRepo(db *gorm.DB, baseLog *logger.Logger) FormationRepo {
	return &formationRepo{db: db, log: baseLog.With("repo", "FormationRepo")}
}

func (fr *formationRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return fr.db
}

func applyFilters(q *gorm.DB, filters FormationFilters) *gorm.DB {
	if filters.Domain != nil {
		q = q.Where("domain = ?", *filters.Domain)
	}
	if filters.Type != nil {
		q = q.Where("type = ?", *filters.Type)
	}
	if len(filters.ExcludeIDs) > 0 {
		q = q.Where("id NOT IN ?", filters.ExcludeIDs)
	}
	return q
}

func (fr *formationRepo) Create(ctx context.Context, tx *gorm.DB, formation *types.Formation) (*types.Formation, error) {
	if formation.ID == uuid.Nil {
		formation.ID = uuid.New()
	}
	if err := fr.conn(tx).WithContext(ctx).Create(formation).Error; err != nil {
		return nil, err
	}
	return formation, nil
}

func (fr *formationRepo) GetByID(ctx context.Context, tx *gorm.DB, formationID uuid.UUID) (*types.Formation, error) {
	var result types.Formation
	err := fr.conn(tx).WithContext(ctx).
		Where("id = ?", formationID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (fr *formationRepo) GetByTitle(ctx context.Context, tx *gorm.DB, title string) (*types.Formation, error) {
	var result types.Formation
	err := fr.conn(tx).WithContext(ctx).
		Where("title = ?", title).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (fr *formationRepo) TitleExists(ctx context.Context, tx *gorm.DB, title string) (bool, error) {
	var count int64
	err := fr.conn(tx).WithContext(ctx).
		Model(&types.Formation{}).
		Where("title = ?", title).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (fr *formationRepo) List(ctx context.Context, tx *gorm.DB, filters FormationFilters) ([]*types.Formation, error) {
	var results []*types.Formation
	q := applyFilters(fr.conn(tx).WithContext(ctx), filters)
	if err := q.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MatchKeyword returns entries whose title, description or domain contains
// the keyword, case-insensitively. lower(...) LIKE keeps the predicate
// portable between postgres and the sqlite test driver.
func (fr *formationRepo) MatchKeyword(ctx context.Context, tx *gorm.DB, keyword string, filters FormationFilters) ([]*types.Formation, error) {
	like := "%" + strings.ToLower(keyword) + "%"
	var results []*types.Formation
	q := applyFilters(fr.conn(tx).WithContext(ctx), filters)
	err := q.Where(
		"lower(title) LIKE ? OR lower(description) LIKE ? OR lower(domain) LIKE ?",
		like, like, like,
	).Order("created_at ASC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *formationRepo) DistinctDomains(ctx context.Context, tx *gorm.DB) ([]string, error) {
	var domains []string
	err := fr.conn(tx).WithContext(ctx).
		Model(&types.Formation{}).
		Distinct("domain").
		Order("domain ASC").
		Pluck("domain", &domains).Error
	if err != nil {
		return nil, err
	}
	return domains, nil
}

func (fr *formationRepo) Update(ctx context.Context, tx *gorm.DB, formation *types.Formation) error {
	return fr.conn(tx).WithContext(ctx).Save(formation).Error
}

func (fr *formationRepo) Delete(ctx context.Context, tx *gorm.DB, formationID uuid.UUID) error {
	return fr.conn(tx).WithContext(ctx).
		Where("id = ?", formationID).
		Delete(&types.Formation{}).Error
}
