package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/repos"
	"github.com/formaplus/elearning-backend/internal/types"
)

// SearchQuery is a keyword search over the catalog. Domain and Type are
// exact-match filters applied before the keyword predicate; ExcludeIDs are
// removed from the candidate set; Limit truncates after dedup (<=0 means
// no limit).
type SearchQuery struct {
	Text       string
	Domain     *string
	Type       *types.MediaKind
	ExcludeIDs []uuid.UUID
	Limit      int
}

type SearchService interface {
	Search(ctx context.Context, q SearchQuery) ([]*types.Formation, error)
}

type searchService struct {
	db         *gorm.DB
	log        *logger.Logger
	formations repos.FormationRepo
}

func NewSearchService(db *gorm.DB, baseLog *logger.Logger, formationRepo repos.FormationRepo) SearchService {
	return &searchService{
		db:         db,
		log:        baseLog.With("service", "SearchService"),
		formations: formationRepo,
	}
}

// Search tokenizes on whitespace and unions per-token matches (OR
// semantics), deduplicated by id in first-seen order. An empty token set
// degrades to the full post-filter candidate set. No match is an empty
// slice, never an error.
func (ss *searchService) Search(ctx context.Context, q SearchQuery) ([]*types.Formation, error) {
	filters := repos.FormationFilters{
		Domain:     q.Domain,
		Type:       q.Type,
		ExcludeIDs: q.ExcludeIDs,
	}

	tokens := strings.Fields(strings.ToLower(q.Text))
	if len(tokens) == 0 {
		all, err := ss.formations.List(ctx, nil, filters)
		if err != nil {
			return nil, err
		}
		return truncate(all, q.Limit), nil
	}

	var matched []*types.Formation
	for _, token := range tokens {
		rows, err := ss.formations.MatchKeyword(ctx, nil, token, filters)
		if err != nil {
			return nil, err
		}
		matched = append(matched, rows...)
	}

	seen := make(map[uuid.UUID]struct{}, len(matched))
	unique := matched[:0]
	for _, f := range matched {
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}
		unique = append(unique, f)
	}
	return truncate(unique, q.Limit), nil
}

func truncate(rows []*types.Formation, limit int) []*types.Formation {
	if rows == nil {
		return []*types.Formation{}
	}
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
