package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/formaplus/elearning-backend/internal/clients/youtube"
	"github.com/formaplus/elearning-backend/internal/platform/apierr"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/platform/storage"
	"github.com/formaplus/elearning-backend/internal/repos"
	"github.com/formaplus/elearning-backend/internal/types"
)

const durationLookupParallelism = 4

// FormationInput carries the fields of an add/edit form. UploadPath points
// at a temp file already written by the handler; empty when the entry
// references an external link.
type FormationInput struct {
	Title       string
	Description string
	Domain      string
	Type        string
	Link        string
	UploadPath  string
	UploadName  string
}

type CatalogService interface {
	Create(ctx context.Context, actor types.Role, actorID uuid.UUID, in FormationInput) (*types.Formation, error)
	CreatePersonal(ctx context.Context, actor types.Role, ownerID uuid.UUID, in FormationInput) (*types.Formation, error)
	Update(ctx context.Context, actor types.Role, actorID uuid.UUID, formationID uuid.UUID, in FormationInput) (*types.Formation, error)
	Delete(ctx context.Context, actor types.Role, actorID uuid.UUID, formationID uuid.UUID) error
	GetByID(ctx context.Context, formationID uuid.UUID) (*types.Formation, error)
	ListAll(ctx context.Context) ([]*types.Formation, error)
	ListByDomain(ctx context.Context, domain string) ([]*types.Formation, error)
	DistinctDomains(ctx context.Context) ([]string, error)
	EnrichDurations(ctx context.Context, formations []*types.Formation)
	Download(ctx context.Context, formationID uuid.UUID) (*types.Formation, io.ReadCloser, error)
}

type catalogService struct {
	db         *gorm.DB
	log        *logger.Logger
	formations repos.FormationRepo
	media      MediaService
	store      storage.ObjectStore
	events     EventService
	yt         youtube.Client
	domains    []string
}

func NewCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	formationRepo repos.FormationRepo,
	mediaService MediaService,
	store storage.ObjectStore,
	eventService EventService,
	ytClient youtube.Client,
	allowedDomains []string,
) CatalogService {
	return &catalogService{
		db:         db,
		log:        baseLog.With("service", "CatalogService"),
		formations: formationRepo,
		media:      mediaService,
		store:      store,
		events:     eventService,
		yt:         ytClient,
		domains:    allowedDomains,
	}
}

func (cs *catalogService) Create(ctx context.Context, actor types.Role, actorID uuid.UUID, in FormationInput) (*types.Formation, error) {
	if err := types.Require(actor, types.RoleAdmin); err != nil {
		return nil, err
	}
	return cs.create(ctx, actorID, nil, in)
}

// CreatePersonal lets a learner add a formation of their own; the entry is
// tagged with the owner.
func (cs *catalogService) CreatePersonal(ctx context.Context, actor types.Role, ownerID uuid.UUID, in FormationInput) (*types.Formation, error) {
	if err := types.Require(actor, types.RoleLearner); err != nil {
		return nil, err
	}
	owner := ownerID
	return cs.create(ctx, ownerID, &owner, in)
}

func (cs *catalogService) create(ctx context.Context, actorID uuid.UUID, ownerID *uuid.UUID, in FormationInput) (*types.Formation, error) {
	formation, err := cs.buildFormation(ctx, in, nil)
	if err != nil {
		return nil, err
	}
	formation.OwnerID = ownerID

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, terr := cs.formations.TitleExists(ctx, tx, formation.Title)
		if terr != nil {
			return terr
		}
		if exists {
			return apierr.Validation("duplicate_title", fmt.Errorf("a formation titled %q already exists", formation.Title))
		}
		_, cerr := cs.formations.Create(ctx, tx, formation)
		return cerr
	})
	if err != nil {
		return nil, err
	}

	cs.events.Record(ctx, actorID, &formation.ID, "formation_created", map[string]string{"title": formation.Title})
	return formation, nil
}

// buildFormation validates the form and derives upload metadata. existing
// is non-nil on edit, in which case blank form fields keep their previous
// values.
func (cs *catalogService) buildFormation(ctx context.Context, in FormationInput, existing *types.Formation) (*types.Formation, error) {
	f := &types.Formation{}
	if existing != nil {
		clone := *existing
		f = &clone
	}

	if t := strings.TrimSpace(in.Title); t != "" {
		f.Title = t
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		f.Description = d
	}
	if d := strings.TrimSpace(in.Domain); d != "" {
		f.Domain = d
	}
	if t := strings.TrimSpace(in.Type); t != "" {
		kind, ok := types.ParseMediaKind(t)
		if !ok {
			return nil, apierr.Validation("invalid_type", fmt.Errorf("unknown media type %q", in.Type))
		}
		f.Type = kind
	}
	if l := strings.TrimSpace(in.Link); l != "" {
		f.Link = l
	}

	if f.Title == "" || f.Description == "" || f.Domain == "" || f.Type == "" {
		return nil, apierr.Validation("missing_fields", errors.New("title, description, domain and type are required"))
	}
	if len(cs.domains) > 0 && !contains(cs.domains, f.Domain) {
		return nil, apierr.Validation("unknown_domain", fmt.Errorf("domain %q is not in the catalog", f.Domain))
	}

	if in.UploadPath != "" {
		key := storage.SanitizeKey(in.UploadName)
		derived := cs.media.Derive(ctx, in.UploadPath, f.Type)
		f.DurationMinutes = derived.DurationMinutes
		f.SizeMB = derived.SizeMB

		src, err := os.Open(in.UploadPath)
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer src.Close()
		if err := cs.store.Save(ctx, key, src); err != nil {
			return nil, fmt.Errorf("store upload: %w", err)
		}
		f.BucketKey = key
		f.Link = cs.store.PublicURL(key)
	}
	if f.Link == "" {
		return nil, apierr.Validation("missing_fields", errors.New("a link or an uploaded file is required"))
	}
	return f, nil
}

func (cs *catalogService) Update(ctx context.Context, actor types.Role, actorID uuid.UUID, formationID uuid.UUID, in FormationInput) (*types.Formation, error) {
	if err := types.Require(actor, types.RoleAdmin); err != nil {
		return nil, err
	}
	existing, err := cs.GetByID(ctx, formationID)
	if err != nil {
		return nil, err
	}

	updated, err := cs.buildFormation(ctx, in, existing)
	if err != nil {
		return nil, err
	}

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if updated.Title != existing.Title {
			exists, terr := cs.formations.TitleExists(ctx, tx, updated.Title)
			if terr != nil {
				return terr
			}
			if exists {
				return apierr.Validation("duplicate_title", fmt.Errorf("a formation titled %q already exists", updated.Title))
			}
		}
		return cs.formations.Update(ctx, tx, updated)
	})
	if err != nil {
		return nil, err
	}

	cs.events.Record(ctx, actorID, &updated.ID, "formation_updated", map[string]string{"title": updated.Title})
	return updated, nil
}

func (cs *catalogService) Delete(ctx context.Context, actor types.Role, actorID uuid.UUID, formationID uuid.UUID) error {
	if err := types.Require(actor, types.RoleAdmin); err != nil {
		return err
	}
	existing, err := cs.GetByID(ctx, formationID)
	if err != nil {
		return err
	}
	if err := cs.formations.Delete(ctx, nil, formationID); err != nil {
		return err
	}
	if existing.BucketKey != "" {
		if derr := cs.store.Delete(ctx, existing.BucketKey); derr != nil {
			cs.log.Warn("Stored object cleanup failed", "key", existing.BucketKey, "error", derr)
		}
	}
	cs.events.Record(ctx, actorID, &formationID, "formation_deleted", map[string]string{"title": existing.Title})
	return nil
}

func (cs *catalogService) GetByID(ctx context.Context, formationID uuid.UUID) (*types.Formation, error) {
	formation, err := cs.formations.GetByID(ctx, nil, formationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("formation_not_found", fmt.Errorf("formation %s does not exist", formationID))
		}
		return nil, err
	}
	return formation, nil
}

func (cs *catalogService) ListAll(ctx context.Context) ([]*types.Formation, error) {
	return cs.formations.List(ctx, nil, repos.FormationFilters{})
}

func (cs *catalogService) ListByDomain(ctx context.Context, domain string) ([]*types.Formation, error) {
	return cs.formations.List(ctx, nil, repos.FormationFilters{Domain: &domain})
}

func (cs *catalogService) DistinctDomains(ctx context.Context) ([]string, error) {
	return cs.formations.DistinctDomains(ctx, nil)
}

// EnrichDurations fills DurationDisplay for video entries. Entries with a
// derived DurationMinutes use it directly; YouTube links without one get a
// bounded concurrent lookup. Failures degrade to DurationUnknown.
func (cs *catalogService) EnrichDurations(ctx context.Context, formations []*types.Formation) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(durationLookupParallelism)

	for _, f := range formations {
		if f.Type != types.MediaVideo {
			continue
		}
		if f.DurationMinutes != nil {
			f.DurationDisplay = fmt.Sprintf("%dm 0s", *f.DurationMinutes)
			continue
		}
		f.DurationDisplay = DurationUnknown
		videoID := YouTubeVideoID(f.Link)
		if videoID == "" || cs.yt == nil {
			continue
		}
		f := f
		g.Go(func() error {
			iso, err := cs.yt.VideoDuration(gctx, videoID)
			if err != nil {
				cs.log.Warn("Duration lookup failed", "formation_id", f.ID, "error", err)
				return nil
			}
			f.DurationDisplay = ParseISODuration(iso)
			if mins, ok := ISODurationMinutes(iso); ok {
				f.DurationMinutes = &mins
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (cs *catalogService) Download(ctx context.Context, formationID uuid.UUID) (*types.Formation, io.ReadCloser, error) {
	formation, err := cs.GetByID(ctx, formationID)
	if err != nil {
		return nil, nil, err
	}
	if formation.BucketKey == "" {
		return formation, nil, nil
	}
	rc, err := cs.store.Open(ctx, formation.BucketKey)
	if err != nil {
		return nil, nil, apierr.NotFound("file_not_found", fmt.Errorf("stored file for formation %s: %w", formationID, err))
	}
	return formation, rc, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
