package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/types"
)

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		name string
		iso  string
		want string
	}{
		{"seconds only", "PT45S", "0m 45s"},
		{"minutes and seconds", "PT5M30S", "5m 30s"},
		{"full", "PT1H2M3S", "1h 2m 3s"},
		{"hours only", "PT2H", "2h 0m 0s"},
		{"minutes only", "PT10M", "10m 0s"},
		{"empty segments", "PT", DurationUnknown},
		{"garbage", "garbage", DurationUnknown},
		{"empty", "", DurationUnknown},
		{"missing prefix", "1H2M3S", DurationUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseISODuration(tc.iso); got != tc.want {
				t.Fatalf("ParseISODuration(%q) = %q, want %q", tc.iso, got, tc.want)
			}
		})
	}
}

func TestISODurationMinutes(t *testing.T) {
	cases := []struct {
		iso    string
		want   int
		wantOK bool
	}{
		{"PT45S", 0, true},
		{"PT5M30S", 5, true},
		{"PT1H2M3S", 62, true},
		{"PT59S", 0, true},
		{"nope", 0, false},
	}
	for _, tc := range cases {
		got, ok := ISODurationMinutes(tc.iso)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("ISODurationMinutes(%q) = (%d, %v), want (%d, %v)", tc.iso, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestSizeRoundTrip(t *testing.T) {
	cases := []float64{0, 0.5, 1, 12.25, 1999.99}
	for _, size := range cases {
		rounded := RoundSizeMB(size)
		display := FormatSizeMB(rounded)
		parsed := ParseSizeMB(display)
		if parsed == nil {
			t.Fatalf("ParseSizeMB(%q) = nil", display)
		}
		if *parsed != rounded {
			t.Fatalf("round trip of %v: got %v via %q", rounded, *parsed, display)
		}
	}
}

func TestParseSizeMBMalformed(t *testing.T) {
	cases := []string{"", "Mo", "abc Mo", "-1 Mo", "NaN Mo", "Inf Mo"}
	for _, raw := range cases {
		if got := ParseSizeMB(raw); got != nil {
			t.Fatalf("ParseSizeMB(%q) = %v, want nil", raw, *got)
		}
	}
}

func TestYouTubeVideoID(t *testing.T) {
	cases := []struct {
		name string
		link string
		want string
	}{
		{"plain watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"extra params", "https://www.youtube.com/watch?v=abc123&t=42s", "abc123"},
		{"v not first", "https://www.youtube.com/watch?feature=share&v=xyz", "xyz"},
		{"not youtube", "https://vimeo.com/12345", ""},
		{"no video id", "https://www.youtube.com/playlist?list=PL123", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := YouTubeVideoID(tc.link); got != tc.want {
				t.Fatalf("YouTubeVideoID(%q) = %q, want %q", tc.link, got, tc.want)
			}
		})
	}
}

type fakeProber struct {
	secs float64
	err  error
}

func (f *fakeProber) AssertReady(context.Context) error { return nil }
func (f *fakeProber) ProbeDurationSeconds(context.Context, string) (float64, error) {
	return f.secs, f.err
}

func TestDeriveVideo(t *testing.T) {
	ms := NewMediaService(logger.NewNop(), &fakeProber{secs: 330})
	derived := ms.Derive(context.Background(), "ignored.mp4", types.MediaVideo)
	if derived.DurationMinutes == nil || *derived.DurationMinutes != 5 {
		t.Fatalf("DurationMinutes = %v, want 5", derived.DurationMinutes)
	}
	if derived.SizeMB != nil {
		t.Fatalf("SizeMB = %v, want nil for video", *derived.SizeMB)
	}
}

func TestDeriveVideoProbeFailure(t *testing.T) {
	ms := NewMediaService(logger.NewNop(), &fakeProber{err: os.ErrNotExist})
	derived := ms.Derive(context.Background(), "missing.mp4", types.MediaVideo)
	if derived.DurationMinutes != nil {
		t.Fatalf("DurationMinutes = %v, want nil on probe failure", *derived.DurationMinutes)
	}
}

func TestDeriveDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, make([]byte, 512*1024), 0o644); err != nil {
		t.Fatalf("write temp doc: %v", err)
	}
	ms := NewMediaService(logger.NewNop(), &fakeProber{})
	derived := ms.Derive(context.Background(), path, types.MediaDocument)
	if derived.SizeMB == nil {
		t.Fatal("SizeMB = nil, want value")
	}
	if *derived.SizeMB != 0.5 {
		t.Fatalf("SizeMB = %v, want 0.5", *derived.SizeMB)
	}
}

func TestDeriveDocumentMissingFile(t *testing.T) {
	ms := NewMediaService(logger.NewNop(), &fakeProber{})
	derived := ms.Derive(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"), types.MediaDocument)
	if derived.SizeMB != nil {
		t.Fatalf("SizeMB = %v, want nil for missing file", *derived.SizeMB)
	}
}
