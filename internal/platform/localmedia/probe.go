package localmedia

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/formaplus/elearning-backend/internal/platform/ctxutil"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
)

// Prober reads media metadata off local files by shelling out to ffprobe.
//
// REQUIRED BINARY in the serving runtime:
// - ffprobe (ffmpeg) for container duration
//
// Synchronous and bounded by the probe timeout; safe to call from request
// handlers for files already on disk.
type Prober interface {
	AssertReady(ctx context.Context) error
	ProbeDurationSeconds(ctx context.Context, path string) (float64, error)
}

type prober struct {
	log *logger.Logger

	ffprobePath string
	timeout     time.Duration
}

func NewProber(log *logger.Logger) Prober {
	return &prober{
		log:         log.With("service", "MediaProber"),
		ffprobePath: "ffprobe",
		timeout:     15 * time.Second,
	}
}

func (p *prober) AssertReady(ctx context.Context) error {
	if _, err := exec.LookPath(p.ffprobePath); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w", p.ffprobePath, err)
	}
	return nil
}

func (p *prober) ProbeDurationSeconds(ctx context.Context, path string) (float64, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w (%s)", path, err, strings.TrimSpace(stderr.String()))
	}
	raw := strings.TrimSpace(stdout.String())
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unparseable duration %q", path, raw)
	}
	if secs < 0 {
		return 0, fmt.Errorf("ffprobe %s: negative duration %f", path, secs)
	}
	return secs, nil
}
