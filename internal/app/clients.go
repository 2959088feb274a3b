package app

import (
	"context"
	"os"
	"strings"

	"github.com/formaplus/elearning-backend/internal/clients/dialoguestore"
	"github.com/formaplus/elearning-backend/internal/clients/youtube"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/platform/storage"
)

type Clients struct {
	ObjectStore   storage.ObjectStore
	DialogueStore dialoguestore.Store
	YouTube       youtube.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	store, err := resolveObjectStore(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}

	// Redis when configured, in-memory otherwise.
	var sessions dialoguestore.Store
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		s, rerr := dialoguestore.NewRedisStore(log, cfg.DialogueTTL)
		if rerr != nil {
			return Clients{}, rerr
		}
		sessions = s
	} else {
		log.Info("REDIS_ADDR not set, dialogue sessions kept in memory")
		sessions = dialoguestore.NewMemoryStore(cfg.DialogueTTL)
	}

	// Duration lookups are optional; without a key the dashboard shows
	// "duration unknown" for videos we never probed.
	var yt youtube.Client
	if strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY")) != "" {
		client, yerr := youtube.NewClient(log)
		if yerr != nil {
			return Clients{}, yerr
		}
		yt = client
	} else {
		log.Info("YOUTUBE_API_KEY not set, video duration lookups disabled")
	}

	return Clients{
		ObjectStore:   store,
		DialogueStore: sessions,
		YouTube:       yt,
	}, nil
}
