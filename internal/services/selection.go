package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formaplus/elearning-backend/internal/platform/apierr"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/repos"
	"github.com/formaplus/elearning-backend/internal/types"
)

type SelectionService interface {
	// Select records a learner's claim on a catalog entry. Selecting an
	// already-selected entry is idempotent: created=false, no error.
	Select(ctx context.Context, actor types.Role, learnerID, formationID uuid.UUID) (bool, *types.Formation, error)
	ListSelections(ctx context.Context, learnerID uuid.UUID) ([]*types.Formation, error)
	ListSelectedIDs(ctx context.Context, learnerID uuid.UUID) ([]uuid.UUID, error)
}

type selectionService struct {
	db         *gorm.DB
	log        *logger.Logger
	formations repos.FormationRepo
	selections repos.UserFormationRepo
	events     EventService
}

func NewSelectionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	formationRepo repos.FormationRepo,
	selectionRepo repos.UserFormationRepo,
	eventService EventService,
) SelectionService {
	return &selectionService{
		db:         db,
		log:        baseLog.With("service", "SelectionService"),
		formations: formationRepo,
		selections: selectionRepo,
		events:     eventService,
	}
}

func (ss *selectionService) Select(ctx context.Context, actor types.Role, learnerID, formationID uuid.UUID) (bool, *types.Formation, error) {
	if err := types.Require(actor, types.RoleLearner); err != nil {
		return false, nil, err
	}

	formation, err := ss.formations.GetByID(ctx, nil, formationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, apierr.NotFound("formation_not_found", fmt.Errorf("formation %s does not exist", formationID))
		}
		return false, nil, err
	}

	created := false
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, eerr := ss.selections.Exists(ctx, tx, learnerID, formationID)
		if eerr != nil {
			return eerr
		}
		if exists {
			return nil
		}
		_, cerr := ss.selections.Create(ctx, tx, &types.UserFormation{
			UserID:      learnerID,
			FormationID: formationID,
		})
		if cerr != nil {
			return cerr
		}
		created = true
		return nil
	})
	if err != nil {
		return false, nil, err
	}

	if created {
		ss.events.Record(ctx, learnerID, &formationID, "formation_selected", map[string]string{"title": formation.Title})
	}
	return created, formation, nil
}

func (ss *selectionService) ListSelections(ctx context.Context, learnerID uuid.UUID) ([]*types.Formation, error) {
	return ss.selections.ListFormationsByUser(ctx, nil, learnerID)
}

func (ss *selectionService) ListSelectedIDs(ctx context.Context, learnerID uuid.UUID) ([]uuid.UUID, error) {
	return ss.selections.ListFormationIDsByUser(ctx, nil, learnerID)
}
