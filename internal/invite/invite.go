// Package invite composites a guest's QR code onto the shareable invitation card
// the guest downloads after confirming.
package invite

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"regexp"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"egasrsvp/internal/event"
	"egasrsvp/internal/qr"
)

const (
	Width  = 600
	Height = 400

	ContentType = "image/png"

	textLeft  = 40
	textRight = 380
)

var (
	ErrNoCode = errors.New("invite: qr code could not be rendered")

	bgTop    = color.NRGBA{0x0f, 0x17, 0x2a, 0xff}
	bgBottom = color.NRGBA{0x1e, 0x29, 0x3b, 0xff}
	amber    = color.NRGBA{0xf5, 0x9e, 0x0b, 0xff}
	border   = color.NRGBA{0xf5, 0x9e, 0x0b, 0x33}
	muted    = color.NRGBA{0x94, 0xa3, 0xb8, 0xff}

	codeBox  = image.Rect(400, 100, 560, 260)
	codeArea = image.Rect(405, 105, 555, 255)

	whitespace = regexp.MustCompile(`\s+`)
)

// Card is what gets printed besides the code.
type Card struct {
	Name        string
	Institution string
	Event       event.Event
}

type faceSet struct {
	title, subtitle, name, institution, footer font.Face
}

var (
	facesOnce sync.Once
	faces     faceSet
	facesErr  error
)

func loadFaces() (faceSet, error) {
	facesOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			facesErr = fmt.Errorf("parse regular font: %w", err)
			return
		}
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			facesErr = fmt.Errorf("parse bold font: %w", err)
			return
		}
		newFace := func(f *opentype.Font, size float64) font.Face {
			if facesErr != nil {
				return nil
			}
			face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
			if err != nil {
				facesErr = fmt.Errorf("load %.0fpt face: %w", size, err)
			}
			return face
		}
		faces = faceSet{
			title:       newFace(bold, 24),
			subtitle:    newFace(regular, 16),
			name:        newFace(bold, 20),
			institution: newFace(regular, 14),
			footer:      newFace(bold, 14),
		}
	})
	return faces, facesErr
}

// Render draws the invitation for c with payload encoded in the corner code and
// returns it PNG-encoded. If the code cannot be rendered nothing is drawn and
// ErrNoCode is returned.
func Render(c Card, payload string) ([]byte, error) {
	code, err := qr.Image(payload, codeArea.Dx())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCode, err)
	}
	fs, err := loadFaces()
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	fillGradient(img, bgTop, bgBottom)
	strokeRect(img, image.Rect(20, 20, 580, 380), 2, border)

	drawText(img, fs.title, amber, "CONVITE OFICIAL", textLeft, 60)
	drawText(img, fs.subtitle, color.White, "Evento de Lançamento", textLeft, 90)
	drawText(img, fs.name, color.White, c.Name, textLeft, 140)
	if c.Institution != "" {
		drawText(img, fs.institution, muted, c.Institution, textLeft, 165)
	}
	drawText(img, fs.footer, color.White, c.Event.Footer(), textLeft, 360)

	fillRoundRect(img, codeBox, 10, color.White)
	xdraw.NearestNeighbor.Scale(img, codeArea, code, code.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode invite png: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the download name for name's invitation, e.g. "convite-ana-silva.png".
func FileName(name string) string {
	return "convite-" + whitespace.ReplaceAllString(strings.ToLower(name), "-") + ".png"
}

func fillGradient(img *image.RGBA, from, to color.NRGBA) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	norm := w*w + h*h
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := (float64(x)*w + float64(y)*h) / norm
			img.Set(x, y, lerp(from, to, t))
		}
	}
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(p, q uint8) uint8 {
		return uint8(float64(p) + (float64(q)-float64(p))*t + 0.5)
	}
	return color.NRGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}

// strokeRect draws an outline of width w centred on r's edges.
func strokeRect(img *image.RGBA, r image.Rectangle, w int, c color.Color) {
	src := image.NewUniform(c)
	half := w / 2
	outer := r.Inset(-half)
	inner := r.Inset(w - half)
	bands := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, inner.Min.Y),
		image.Rect(outer.Min.X, inner.Max.Y, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y),
		image.Rect(inner.Max.X, inner.Min.Y, outer.Max.X, inner.Max.Y),
	}
	for _, band := range bands {
		draw.Draw(img, band, src, image.Point{}, draw.Over)
	}
}

func fillRoundRect(img *image.RGBA, r image.Rectangle, radius int, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if insideRounded(x, y, r, radius) {
				img.Set(x, y, c)
			}
		}
	}
}

func insideRounded(x, y int, r image.Rectangle, radius int) bool {
	cx, cy := x, y
	switch {
	case x < r.Min.X+radius:
		cx = r.Min.X + radius
	case x >= r.Max.X-radius:
		cx = r.Max.X - radius - 1
	}
	switch {
	case y < r.Min.Y+radius:
		cy = r.Min.Y + radius
	case y >= r.Max.Y-radius:
		cy = r.Max.Y - radius - 1
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= radius*radius
}

// drawText writes s with its baseline at y, shortening it with an ellipsis when
// it would run into the code box.
func drawText(img *image.RGBA, face font.Face, c color.Color, s string, x, y int) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
	s = fit(d, s, fixed.I(textRight-x))
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

func fit(d *font.Drawer, s string, max fixed.Int26_6) string {
	if d.MeasureString(s) <= max {
		return s
	}
	// longest prefix that fits with the ellipsis, by binary search over its length
	runes := []rune(s)
	best := ""
	lo, hi := 0, len(runes)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		candidate := strings.TrimSpace(string(runes[:mid])) + "…"
		if d.MeasureString(candidate) <= max {
			best, lo = candidate, mid+1
		} else {
			hi = mid - 1
		}
	}
	return best
}
