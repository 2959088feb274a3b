package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	"github.com/formaplus/elearning-backend/internal/clients/dialoguestore"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/types"
)

// DialogueState enumerates the guided-chat conversation states. The
// machine has no terminal state; it loops back to StateInitial after
// producing a result.
type DialogueState string

const (
	StateInitial       DialogueState = "INITIAL"
	StateWaitingChoice DialogueState = "WAITING_CHOICE"
	StateAskKeyword    DialogueState = "ASK_KEYWORD"
	StateThemeChoice   DialogueState = "THEME_CHOICE"
	StateThemeFollowup DialogueState = "THEME_FOLLOWUP"
)

const dialogueResultLimit = 3

const (
	msgMenu = "Bonjour ! Que souhaites-tu faire ?<br>" +
		"1. Rechercher une formation par mot-clé<br>" +
		"2. Parcourir les formations par thème"
	msgMenuRetry     = "Réponds par 1 (recherche par mot-clé) ou 2 (parcourir par thème)."
	msgAskKeyword    = "Très bien ! Quel mot-clé veux-tu rechercher ?"
	msgAskTheme      = "Voici les thèmes disponibles :<br>%s<br>Lequel t'intéresse ?"
	msgInvalidTheme  = "Je ne connais pas ce thème. Choisis un thème de la liste."
	msgAskRefinement = "Super ! Un mot-clé pour affiner dans « %s » ? (ou envoie un espace pour tout voir)"
	msgNoResult      = "Désolé, je n'ai trouvé aucune formation liée à ta demande."
	msgLost          = "Je n'ai pas compris ta question. Peux-tu reformuler ?"
)

// CatalogAccess is the narrow read surface the dialogue engine needs. It
// keeps Transition unit-testable with a stub catalog.
type CatalogAccess interface {
	Search(ctx context.Context, q SearchQuery) ([]*types.Formation, error)
	DistinctDomains(ctx context.Context) ([]string, error)
}

// Transition is the pure step function of the dialogue machine: explicit
// state in, explicit state out, no session storage touched. Any failure of
// the catalog access degrades to a generic message and a reset to
// StateInitial; it never propagates an error.
func Transition(ctx context.Context, st DialogueState, theme, input string, cat CatalogAccess) (DialogueState, string, string) {
	folded := strings.ToLower(strings.TrimSpace(input))

	switch st {
	case StateInitial:
		return StateWaitingChoice, "", msgMenu

	case StateWaitingChoice:
		switch {
		case strings.Contains(folded, "1"):
			return StateAskKeyword, "", msgAskKeyword
		case strings.Contains(folded, "2"):
			domains, err := cat.DistinctDomains(ctx)
			if err != nil || len(domains) == 0 {
				return StateInitial, "", msgNoResult
			}
			return StateThemeChoice, "", fmt.Sprintf(msgAskTheme, strings.Join(domains, "<br>"))
		default:
			return StateWaitingChoice, "", msgMenuRetry
		}

	case StateAskKeyword:
		results, err := cat.Search(ctx, SearchQuery{Text: folded, Limit: dialogueResultLimit})
		if err != nil || len(results) == 0 {
			return StateInitial, "", msgNoResult
		}
		return StateInitial, "", renderFormations(results)

	case StateThemeChoice:
		candidate := titleCase(strings.TrimSpace(input))
		domains, err := cat.DistinctDomains(ctx)
		if err != nil {
			return StateInitial, "", msgLost
		}
		// Exact match only; no fuzzy theme matching.
		for _, d := range domains {
			if d == candidate {
				return StateThemeFollowup, candidate, fmt.Sprintf(msgAskRefinement, candidate)
			}
		}
		return StateThemeChoice, theme, msgInvalidTheme

	case StateThemeFollowup:
		results, err := cat.Search(ctx, SearchQuery{Text: folded, Domain: &theme, Limit: dialogueResultLimit})
		if err != nil || len(results) == 0 {
			return StateInitial, "", msgNoResult
		}
		return StateInitial, "", renderFormations(results)
	}

	// Corrupted or unknown state: answer something sane and reset so the
	// session cannot get stuck.
	return StateInitial, "", msgLost
}

// renderFormations builds the HTML-fragment chat payload: title,
// description, source link, and an embeddable player for recognizable
// YouTube video links, blocks joined with a visible separator.
func renderFormations(results []*types.Formation) string {
	blocks := make([]string, 0, len(results))
	for _, f := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "<strong>%s</strong><br><em>%s</em><br>", f.Title, f.Description)
		fmt.Fprintf(&b, `<a href="%s" target="_blank">Accéder à la formation</a>`, f.Link)
		if f.Type == types.MediaVideo {
			if videoID := YouTubeVideoID(f.Link); videoID != "" {
				fmt.Fprintf(&b,
					`<br><iframe width="100%%" height="200" src="https://www.youtube.com/embed/%s" frameborder="0" allowfullscreen></iframe>`,
					videoID)
			}
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "<hr>")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// NewCatalogAccess bridges the search and catalog services into the
// narrow surface the engine consumes.
func NewCatalogAccess(search SearchService, catalog CatalogService) CatalogAccess {
	return &catalogAccess{search: search, catalog: catalog}
}

type catalogAccess struct {
	search  SearchService
	catalog CatalogService
}

func (ca *catalogAccess) Search(ctx context.Context, q SearchQuery) ([]*types.Formation, error) {
	return ca.search.Search(ctx, q)
}

func (ca *catalogAccess) DistinctDomains(ctx context.Context) ([]string, error) {
	return ca.catalog.DistinctDomains(ctx)
}

type DialogueService interface {
	// HandleMessage runs one dialogue turn for a browser session. It never
	// returns an error: every failure path degrades to a user-visible
	// message.
	HandleMessage(ctx context.Context, sessionID string, userID uuid.UUID, message string) string
	// QuickSearch is the stateless keyword variant of the chat endpoint.
	QuickSearch(ctx context.Context, message string) string
	Reset(ctx context.Context, sessionID string)
}

type dialogueService struct {
	log      *logger.Logger
	catalog  CatalogAccess
	sessions dialoguestore.Store
	events   EventService

	// One lock per session-key stripe: turns within a session are strictly
	// sequential, sessions stay independent.
	locks [32]sync.Mutex
}

func NewDialogueService(
	baseLog *logger.Logger,
	catalog CatalogAccess,
	sessionStore dialoguestore.Store,
	eventService EventService,
) DialogueService {
	return &dialogueService{
		log:      baseLog.With("service", "DialogueService"),
		catalog:  catalog,
		sessions: sessionStore,
		events:   eventService,
	}
}

func (ds *dialogueService) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &ds.locks[h.Sum32()%uint32(len(ds.locks))]
}

func (ds *dialogueService) HandleMessage(ctx context.Context, sessionID string, userID uuid.UUID, message string) string {
	mu := ds.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, found, err := ds.sessions.Get(ctx, sessionID)
	if err != nil {
		ds.log.Warn("Dialogue session load failed", "session_id", sessionID, "error", err)
	}
	state := StateInitial
	if found && session.State != "" {
		state = DialogueState(session.State)
	}

	next, nextTheme, response := Transition(ctx, state, session.Theme, message, ds.catalog)

	if err := ds.sessions.Put(ctx, sessionID, dialoguestore.Session{
		State: string(next),
		Theme: nextTheme,
	}); err != nil {
		ds.log.Warn("Dialogue session store failed", "session_id", sessionID, "error", err)
	}

	if userID != uuid.Nil {
		ds.events.Record(ctx, userID, nil, "chat_message", map[string]string{
			"state": string(state),
			"next":  string(next),
		})
	}
	return response
}

func (ds *dialogueService) QuickSearch(ctx context.Context, message string) string {
	if strings.TrimSpace(message) == "" {
		return msgLost
	}
	results, err := ds.catalog.Search(ctx, SearchQuery{
		Text:  strings.ToLower(message),
		Limit: dialogueResultLimit,
	})
	if err != nil {
		ds.log.Warn("Quick search failed", "error", err)
		return msgNoResult
	}
	if len(results) == 0 {
		return msgNoResult
	}
	return renderFormations(results)
}

func (ds *dialogueService) Reset(ctx context.Context, sessionID string) {
	if err := ds.sessions.Delete(ctx, sessionID); err != nil {
		ds.log.Warn("Dialogue session reset failed", "session_id", sessionID, "error", err)
	}
}
