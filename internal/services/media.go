package services

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/formaplus/elearning-backend/internal/platform/localmedia"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/types"
)

// DurationUnknown is what every failed or unparseable duration lookup
// degrades to.
const DurationUnknown = "duration unknown"

// Derived is the metadata read off an uploaded file. Fields stay nil when
// derivation failed; derivation itself never errors past this boundary.
type Derived struct {
	DurationMinutes *int
	SizeMB          *float64
}

type MediaService interface {
	Derive(ctx context.Context, path string, kind types.MediaKind) Derived
}

type mediaService struct {
	log    *logger.Logger
	prober localmedia.Prober
}

func NewMediaService(log *logger.Logger, prober localmedia.Prober) MediaService {
	return &mediaService{
		log:    log.With("service", "MediaService"),
		prober: prober,
	}
}

func (ms *mediaService) Derive(ctx context.Context, path string, kind types.MediaKind) Derived {
	switch kind {
	case types.MediaVideo:
		secs, err := ms.prober.ProbeDurationSeconds(ctx, path)
		if err != nil {
			ms.log.Warn("Video duration probe failed", "path", path, "error", err)
			return Derived{}
		}
		mins := int(secs) / 60
		return Derived{DurationMinutes: &mins}
	case types.MediaDocument:
		info, err := os.Stat(path)
		if err != nil {
			ms.log.Warn("Document size stat failed", "path", path, "error", err)
			return Derived{}
		}
		mb := RoundSizeMB(float64(info.Size()) / (1024 * 1024))
		return Derived{SizeMB: &mb}
	}
	ms.log.Warn("Derive called with unknown media kind", "kind", kind)
	return Derived{}
}

// RoundSizeMB rounds to the 2-decimal display precision.
func RoundSizeMB(x float64) float64 {
	return math.Round(x*100) / 100
}

// FormatSizeMB renders a size for display, e.g. "12.5 Mo".
func FormatSizeMB(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64) + " Mo"
}

// ParseSizeMB reads a display size back into a number. Malformed input
// yields nil, not an error.
func ParseSizeMB(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "Mo")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts an ISO-8601 PT#H#M#S duration into a human
// string: "1h 2m 3s", or "5m 0s" when there is no hour segment. Anything
// that does not match comes back as DurationUnknown.
func ParseISODuration(iso string) string {
	h, m, s, ok := isoDurationParts(iso)
	if !ok {
		return DurationUnknown
	}
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}

// ISODurationMinutes converts PT#H#M#S into whole minutes (floor).
func ISODurationMinutes(iso string) (int, bool) {
	h, m, s, ok := isoDurationParts(iso)
	if !ok {
		return 0, false
	}
	return (h*3600 + m*60 + s) / 60, true
}

func isoDurationParts(iso string) (h, m, s int, ok bool) {
	match := isoDurationRe.FindStringSubmatch(strings.TrimSpace(iso))
	if match == nil {
		return 0, 0, 0, false
	}
	if match[1] == "" && match[2] == "" && match[3] == "" {
		return 0, 0, 0, false
	}
	h, _ = strconv.Atoi(zeroWhenEmpty(match[1]))
	m, _ = strconv.Atoi(zeroWhenEmpty(match[2]))
	s, _ = strconv.Atoi(zeroWhenEmpty(match[3]))
	return h, m, s, true
}

func zeroWhenEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// YouTubeVideoID pulls the video identifier out of a watch URL: the
// substring after "v=" up to the next separator. Empty when the link does
// not look like a YouTube URL.
func YouTubeVideoID(link string) string {
	if !strings.Contains(link, "youtube.com") {
		return ""
	}
	u, err := url.Parse(link)
	if err == nil {
		if id := u.Query().Get("v"); id != "" {
			return id
		}
	}
	_, after, found := strings.Cut(link, "v=")
	if !found {
		return ""
	}
	if i := strings.IndexAny(after, "&?#"); i >= 0 {
		after = after[:i]
	}
	return after
}
