package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/formaplus/elearning-backend/internal/platform/envutil"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/platform/storage"
	"github.com/formaplus/elearning-backend/internal/types"
)

const (
	avatarRenderSize = 256
	avatarFinalSize  = 128
)

// AvatarService renders an initials avatar at registration time and stores
// it next to the course material.
type AvatarService interface {
	CreateAndStore(ctx context.Context, user *types.User) error
}

type avatarService struct {
	log      *logger.Logger
	store    storage.ObjectStore
	fontFace font.Face
	palette  []color.NRGBA
}

func NewAvatarService(log *logger.Logger, store storage.ObjectStore) AvatarService {
	serviceLog := log.With("service", "AvatarService")

	face := font.Face(basicfont.Face7x13)
	if fontPath := envutil.GetEnv("AVATAR_FONT_PATH", "", log); fontPath != "" {
		raw, err := os.ReadFile(fontPath)
		if err != nil {
			serviceLog.Warn("Avatar font unreadable, falling back to basic face", "path", fontPath, "error", err)
		} else if parsed, perr := truetype.Parse(raw); perr != nil {
			serviceLog.Warn("Avatar font unparseable, falling back to basic face", "path", fontPath, "error", perr)
		} else {
			face = truetype.NewFace(parsed, &truetype.Options{Size: 110})
		}
	}

	return &avatarService{
		log:      serviceLog,
		store:    store,
		fontFace: face,
		palette: []color.NRGBA{
			{R: 0x2d, G: 0x6c, B: 0xdf, A: 0xff},
			{R: 0xd9, G: 0x53, B: 0x4f, A: 0xff},
			{R: 0x3a, G: 0x9d, B: 0x5d, A: 0xff},
			{R: 0xf0, G: 0xad, B: 0x4e, A: 0xff},
			{R: 0x6f, G: 0x42, B: 0xc1, A: 0xff},
		},
	}
}

func (av *avatarService) CreateAndStore(ctx context.Context, user *types.User) error {
	img, err := av.render(user.Name)
	if err != nil {
		return fmt.Errorf("render avatar: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode avatar: %w", err)
	}

	key := fmt.Sprintf("avatar_%s.png", user.ID)
	if err := av.store.Save(ctx, key, &buf); err != nil {
		return fmt.Errorf("store avatar: %w", err)
	}
	user.AvatarBucketKey = key
	user.AvatarURL = av.store.PublicURL(key)
	return nil
}

func (av *avatarService) render(name string) (image.Image, error) {
	dc := gg.NewContext(avatarRenderSize, avatarRenderSize)
	dc.SetColor(av.backgroundFor(name))
	dc.Clear()

	dc.SetFontFace(av.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(initials(name), avatarRenderSize/2, avatarRenderSize/2, 0.5, 0.5)

	// Render big, scale down for smoother edges.
	dst := image.NewRGBA(image.Rect(0, 0, avatarFinalSize, avatarFinalSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), dc.Image(), dc.Image().Bounds(), draw.Over, nil)
	return dst, nil
}

func (av *avatarService) backgroundFor(name string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return av.palette[int(h.Sum32())%len(av.palette)]
}

func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			out = append(out, unicode.ToUpper(r))
			break
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
