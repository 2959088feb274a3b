package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/formaplus/elearning-backend/internal/clients/dialoguestore"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/types"
)

type stubCatalog struct {
	results []*types.Formation
	domains []string
	err     error

	lastQuery SearchQuery
}

func (s *stubCatalog) Search(_ context.Context, q SearchQuery) ([]*types.Formation, error) {
	s.lastQuery = q
	return s.results, s.err
}

func (s *stubCatalog) DistinctDomains(context.Context) ([]string, error) {
	return s.domains, s.err
}

func videoFormation(title, link string) *types.Formation {
	return &types.Formation{
		ID:          uuid.New(),
		Title:       title,
		Description: "description",
		Domain:      "Développement Web",
		Type:        types.MediaVideo,
		Link:        link,
	}
}

func TestTransitionInitialShowsMenu(t *testing.T) {
	next, theme, resp := Transition(context.Background(), StateInitial, "", "bonjour", &stubCatalog{})
	if next != StateWaitingChoice {
		t.Fatalf("next = %s, want %s", next, StateWaitingChoice)
	}
	if theme != "" {
		t.Fatalf("theme = %q, want empty", theme)
	}
	if !strings.Contains(resp, "1.") || !strings.Contains(resp, "2.") {
		t.Fatalf("menu missing options: %q", resp)
	}
}

func TestTransitionWaitingChoice(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		wantNext DialogueState
	}{
		{"choice one", "1", StateAskKeyword},
		{"choice one embedded", "je veux 1", StateAskKeyword},
		{"choice two", "2", StateThemeChoice},
		{"anything else stays", "pourquoi", StateWaitingChoice},
	}
	cat := &stubCatalog{domains: []string{"Développement Web", "Marketing Digital"}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, _, resp := Transition(context.Background(), StateWaitingChoice, "", tc.input, cat)
			if next != tc.wantNext {
				t.Fatalf("next = %s, want %s", next, tc.wantNext)
			}
			if resp == "" {
				t.Fatal("empty response")
			}
		})
	}
}

func TestTransitionKeywordSearch(t *testing.T) {
	f := videoFormation("Python pour débutants", "https://www.youtube.com/watch?v=py101")
	cat := &stubCatalog{results: []*types.Formation{f}}

	next, _, resp := Transition(context.Background(), StateAskKeyword, "", "Python", cat)
	if next != StateInitial {
		t.Fatalf("next = %s, want reset to %s", next, StateInitial)
	}
	if cat.lastQuery.Text != "python" {
		t.Fatalf("query text = %q, want folded %q", cat.lastQuery.Text, "python")
	}
	if cat.lastQuery.Limit != 3 {
		t.Fatalf("query limit = %d, want 3", cat.lastQuery.Limit)
	}
	if !strings.Contains(resp, "<strong>Python pour débutants</strong>") {
		t.Fatalf("result block missing title: %q", resp)
	}
	if !strings.Contains(resp, "youtube.com/embed/py101") {
		t.Fatalf("video embed missing: %q", resp)
	}
}

func TestTransitionKeywordNoResult(t *testing.T) {
	next, _, resp := Transition(context.Background(), StateAskKeyword, "", "introuvable", &stubCatalog{})
	if next != StateInitial {
		t.Fatalf("next = %s, want %s", next, StateInitial)
	}
	if !strings.Contains(resp, "aucune formation") {
		t.Fatalf("want no-result message, got %q", resp)
	}
}

func TestTransitionThemeChoice(t *testing.T) {
	cat := &stubCatalog{domains: []string{"Marketing Digital", "Développement Web"}}

	// Case-folded exact match enters followup and remembers the theme.
	next, theme, resp := Transition(context.Background(), StateThemeChoice, "", "marketing digital", cat)
	if next != StateThemeFollowup {
		t.Fatalf("next = %s, want %s", next, StateThemeFollowup)
	}
	if theme != "Marketing Digital" {
		t.Fatalf("theme = %q, want %q", theme, "Marketing Digital")
	}
	if !strings.Contains(resp, "Marketing Digital") {
		t.Fatalf("followup prompt missing theme: %q", resp)
	}

	// Unknown theme stays put and keeps the previous theme.
	next, theme, _ = Transition(context.Background(), StateThemeChoice, "Ancien", "astrologie", cat)
	if next != StateThemeChoice {
		t.Fatalf("next = %s, want to stay in %s", next, StateThemeChoice)
	}
	if theme != "Ancien" {
		t.Fatalf("theme = %q, want previous %q", theme, "Ancien")
	}
}

func TestTransitionThemeFollowupScopesSearch(t *testing.T) {
	f := videoFormation("SEO avancé", "https://example.com/seo")
	cat := &stubCatalog{results: []*types.Formation{f}}

	next, _, _ := Transition(context.Background(), StateThemeFollowup, "Marketing Digital", "seo", cat)
	if next != StateInitial {
		t.Fatalf("next = %s, want %s", next, StateInitial)
	}
	if cat.lastQuery.Domain == nil || *cat.lastQuery.Domain != "Marketing Digital" {
		t.Fatalf("query domain = %v, want remembered theme", cat.lastQuery.Domain)
	}
}

func TestTransitionCatalogFailureDegrades(t *testing.T) {
	cat := &stubCatalog{err: errors.New("db down")}
	next, _, resp := Transition(context.Background(), StateAskKeyword, "", "python", cat)
	if next != StateInitial {
		t.Fatalf("next = %s, want reset to %s", next, StateInitial)
	}
	if resp == "" {
		t.Fatal("want a user-visible message on catalog failure")
	}
}

func TestTransitionUnknownStateResets(t *testing.T) {
	next, theme, resp := Transition(context.Background(), DialogueState("CORRUPTED"), "x", "bonjour", &stubCatalog{})
	if next != StateInitial {
		t.Fatalf("next = %s, want %s", next, StateInitial)
	}
	if theme != "" {
		t.Fatalf("theme = %q, want cleared", theme)
	}
	if resp == "" {
		t.Fatal("want a fallback message")
	}
}

func TestHandleMessageFullScenario(t *testing.T) {
	f := videoFormation("Python pour débutants", "https://www.youtube.com/watch?v=py101")
	cat := &stubCatalog{
		results: []*types.Formation{f},
		domains: []string{"Développement Web"},
	}
	gdb := openTestDB(t)
	ds := NewDialogueService(logger.NewNop(), cat, dialoguestore.NewMemoryStore(0), newEventService(gdb))

	ctx := context.Background()
	const sid = "session-1"

	resp := ds.HandleMessage(ctx, sid, uuid.Nil, "bonjour")
	if !strings.Contains(resp, "1.") {
		t.Fatalf("first turn should show the menu, got %q", resp)
	}
	resp = ds.HandleMessage(ctx, sid, uuid.Nil, "2")
	if !strings.Contains(resp, "Développement Web") {
		t.Fatalf("second turn should list themes, got %q", resp)
	}
	resp = ds.HandleMessage(ctx, sid, uuid.Nil, "développement web")
	if !strings.Contains(resp, "affiner") {
		t.Fatalf("third turn should ask for refinement, got %q", resp)
	}
	resp = ds.HandleMessage(ctx, sid, uuid.Nil, "python")
	if !strings.Contains(resp, "<strong>Python pour débutants</strong>") {
		t.Fatalf("fourth turn should render results, got %q", resp)
	}

	// Machine looped back: the next message starts over with the menu.
	resp = ds.HandleMessage(ctx, sid, uuid.Nil, "encore")
	if !strings.Contains(resp, "1.") {
		t.Fatalf("fifth turn should restart at the menu, got %q", resp)
	}
}

func TestHandleMessageSessionsAreIndependent(t *testing.T) {
	cat := &stubCatalog{domains: []string{"Développement Web"}}
	gdb := openTestDB(t)
	ds := NewDialogueService(logger.NewNop(), cat, dialoguestore.NewMemoryStore(0), newEventService(gdb))
	ctx := context.Background()

	ds.HandleMessage(ctx, "a", uuid.Nil, "bonjour")
	ds.HandleMessage(ctx, "a", uuid.Nil, "1")

	// Session "b" starts fresh at the menu regardless of "a"'s progress.
	resp := ds.HandleMessage(ctx, "b", uuid.Nil, "salut")
	if !strings.Contains(resp, "1.") {
		t.Fatalf("fresh session should see the menu, got %q", resp)
	}
}

func TestResetClearsSession(t *testing.T) {
	cat := &stubCatalog{domains: []string{"Développement Web"}}
	gdb := openTestDB(t)
	ds := NewDialogueService(logger.NewNop(), cat, dialoguestore.NewMemoryStore(0), newEventService(gdb))
	ctx := context.Background()

	ds.HandleMessage(ctx, "s", uuid.Nil, "bonjour")
	ds.HandleMessage(ctx, "s", uuid.Nil, "1")
	ds.Reset(ctx, "s")

	resp := ds.HandleMessage(ctx, "s", uuid.Nil, "python")
	if !strings.Contains(resp, "1.") {
		t.Fatalf("after reset the session should restart at the menu, got %q", resp)
	}
}

func TestQuickSearch(t *testing.T) {
	f := videoFormation("Python pour débutants", "https://www.youtube.com/watch?v=py101")
	cat := &stubCatalog{results: []*types.Formation{f}}
	gdb := openTestDB(t)
	ds := NewDialogueService(logger.NewNop(), cat, dialoguestore.NewMemoryStore(0), newEventService(gdb))

	resp := ds.QuickSearch(context.Background(), "Python")
	if !strings.Contains(resp, "<strong>Python pour débutants</strong>") {
		t.Fatalf("quick search should render results, got %q", resp)
	}

	cat.results = nil
	resp = ds.QuickSearch(context.Background(), "rien")
	if !strings.Contains(resp, "aucune formation") {
		t.Fatalf("want no-result message, got %q", resp)
	}
}

func TestRenderFormationsSeparatesBlocks(t *testing.T) {
	rows := []*types.Formation{
		videoFormation("A", "https://www.youtube.com/watch?v=aaa"),
		videoFormation("B", "https://example.com/b"),
	}
	out := renderFormations(rows)
	if strings.Count(out, "<hr>") != 1 {
		t.Fatalf("want exactly one separator between two blocks, got %q", out)
	}
	if strings.Count(out, "<iframe") != 1 {
		t.Fatalf("only the recognizable YouTube link should embed, got %q", out)
	}
}
