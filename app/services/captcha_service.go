// Package services provides external service integrations and technical concerns like duty estimation and tokens
package services

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wenlng/go-captcha/v2/rotate"
	xdraw "golang.org/x/image/draw"
)

// CaptchaService exposes methods to generate and verify captchas protecting
// the admin login form. Uses the rotate captcha mode from go-captcha.
//
// Flow:
// - GenerateRotate: returns a challenge ID and two base64 images (master and thumb)
// - VerifyRotate: validates a user-provided angle against the stored target angle with tolerance
// - Challenges are stored in-memory with TTL and consumed on first verification
type CaptchaService interface {
	GenerateRotate(ctx context.Context) (*RotateChallenge, error)
	VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool
}

type RotateChallenge struct {
	ID                string
	MasterImageBase64 string
	ThumbImageBase64  string
}

type captchaServiceImpl struct {
	rotator   rotate.Captcha
	store     *challengeStore
	padding   int // tolerance for angle validation, in degrees
	imgSizePx int
}

// NewCaptchaServiceRotate constructs a CaptchaService using rotate mode.
// ttl bounds how long a challenge stays answerable; padding is the accepted
// angle difference in degrees.
func NewCaptchaServiceRotate(ttl time.Duration, padding int, imgSizePx int) (CaptchaService, error) {
	if imgSizePx <= 0 {
		imgSizePx = 220
	}

	builder := rotate.NewBuilder(
		rotate.WithImageSquareSize(imgSizePx),
	)
	builder.SetResources(
		rotate.WithImages(generateCaptchaBackgrounds(3, imgSizePx)),
	)

	return &captchaServiceImpl{
		rotator:   builder.Make(),
		store:     newChallengeStore(ttl),
		padding:   padding,
		imgSizePx: imgSizePx,
	}, nil
}

func (s *captchaServiceImpl) GenerateRotate(ctx context.Context) (*RotateChallenge, error) {
	captData, err := s.rotator.Generate()
	if err != nil {
		return nil, err
	}

	block := captData.GetData()
	if block == nil {
		return nil, err
	}

	masterB64, err := captData.GetMasterImage().ToBase64()
	if err != nil {
		return nil, err
	}
	thumbB64, err := captData.GetThumbImage().ToBase64()
	if err != nil {
		return nil, err
	}

	challengeID := uuid.New().String()
	s.store.Put(challengeID, block.Angle)

	return &RotateChallenge{
		ID:                challengeID,
		MasterImageBase64: masterB64,
		ThumbImageBase64:  thumbB64,
	}, nil
}

func (s *captchaServiceImpl) VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool {
	targetAngle, ok := s.store.Take(challengeID)
	if !ok {
		return false
	}

	ua := int(math.Round(userAngle))
	return rotate.Validate(ua, targetAngle, s.padding)
}

// challengeStore holds pending challenges with TTL. Entries are consumed on
// first verification attempt, success or not.
type challengeStore struct {
	mu  sync.Mutex
	m   map[string]challengeEntry
	ttl time.Duration
}

type challengeEntry struct {
	angle     int
	expiresAt time.Time
}

func newChallengeStore(ttl time.Duration) *challengeStore {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	cs := &challengeStore{
		m:   make(map[string]challengeEntry),
		ttl: ttl,
	}
	go cs.cleanupLoop()
	return cs
}

func (s *challengeStore) Put(id string, angle int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = challengeEntry{
		angle:     angle,
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Take returns and removes the challenge in one step
func (s *challengeStore) Take(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[id]
	if !ok {
		return 0, false
	}
	delete(s.m, id)
	if time.Now().After(e.expiresAt) {
		return 0, false
	}
	return e.angle, true
}

func (s *challengeStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for k, v := range s.m {
			if now.After(v.expiresAt) {
				delete(s.m, k)
			}
		}
		s.mu.Unlock()
	}
}

// --- Utility: generate simple background images programmatically ---

func generateCaptchaBackgrounds(n int, size int) []image.Image {
	if n <= 0 {
		n = 1
	}
	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		imgs = append(imgs, newStripedNoiseImage(size, size))
	}
	return imgs
}

// Noise is rendered at half resolution and scaled up with bilinear
// interpolation so the texture comes out soft instead of pixelated.
func newStripedNoiseImage(w, h int) image.Image {
	small := image.NewRGBA(image.Rect(0, 0, w/2, h/2))
	stripe := 6 + rand.Intn(5)
	for y := 0; y < h/2; y++ {
		for x := 0; x < w/2; x++ {
			band := ((x + y) / stripe) % 2
			base := uint8(150)
			if band == 1 {
				base = 200
			}
			noise := uint8(rand.Intn(25))
			small.Set(x, y, color.RGBA{R: base - noise, G: base, B: 230 - base/3, A: 255})
		}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(rgba, rgba.Bounds(), small, small.Bounds(), xdraw.Src, nil)

	// a couple of translucent overlays to break up the pattern
	drawOverlay(rgba, w/8, h/6, w/3, h/10, color.RGBA{R: 255, G: 255, B: 255, A: 28})
	drawOverlay(rgba, w/2, 2*h/3, w/3, h/12, color.RGBA{R: 0, G: 0, B: 0, A: 22})
	return rgba
}

func drawOverlay(dst *image.RGBA, x, y, w, h int, c color.RGBA) {
	rect := image.Rect(x, y, x+w, y+h)
	draw.Draw(dst, rect, &image.Uniform{C: c}, image.Point{}, draw.Over)
}
