package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/repos"
	"github.com/formaplus/elearning-backend/internal/types"
)

// EventService writes the audit trail. Recording failures are logged and
// swallowed so the audit never blocks the primary action.
type EventService interface {
	Record(ctx context.Context, userID uuid.UUID, formationID *uuid.UUID, eventType string, data any)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.UserEvent, error)
}

type eventService struct {
	db     *gorm.DB
	log    *logger.Logger
	events repos.UserEventRepo
}

func NewEventService(db *gorm.DB, baseLog *logger.Logger, eventRepo repos.UserEventRepo) EventService {
	return &eventService{
		db:     db,
		log:    baseLog.With("service", "EventService"),
		events: eventRepo,
	}
}

func (es *eventService) Record(ctx context.Context, userID uuid.UUID, formationID *uuid.UUID, eventType string, data any) {
	var payload datatypes.JSON
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			es.log.Warn("Event payload marshal failed", "type", eventType, "error", err)
		} else {
			payload = datatypes.JSON(raw)
		}
	}
	event := &types.UserEvent{
		UserID:      userID,
		FormationID: formationID,
		Type:        eventType,
		Data:        payload,
	}
	if err := es.events.Create(ctx, nil, event); err != nil {
		es.log.Warn("Event write failed", "type", eventType, "user_id", userID, "error", err)
	}
}

func (es *eventService) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.UserEvent, error) {
	return es.events.ListByUser(ctx, nil, userID, limit)
}
