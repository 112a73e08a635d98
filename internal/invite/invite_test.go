package invite

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"egasrsvp/internal/event"
	"egasrsvp/internal/model"
	"egasrsvp/internal/qr"
)

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	return img
}

func payloadFor(name string) string {
	return qr.Encode(qr.Payload{Event: event.Default().Title, Name: name, Email: "ana@exemplo.ao", Status: model.StatusYes})
}

func TestRender(t *testing.T) {
	card := Card{Name: "Ana Silva", Institution: "ENAPP", Event: event.Default()}

	data, err := Render(card, payloadFor(card.Name))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img := decode(t, data)

	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), Width, Height)
	}

	// top-left corner carries the start of the gradient
	r, g, b, _ := img.At(1, 1).RGBA()
	if r>>8 != 0x0f || g>>8 != 0x17 || b>>8 != 0x2a {
		t.Errorf("background at (1,1) = %02x%02x%02x, want 0f172a", r>>8, g>>8, b>>8)
	}

	// margin between the white box and the code
	r, g, b, _ = img.At(402, 180).RGBA()
	if r>>8 != 0xff || g>>8 != 0xff || b>>8 != 0xff {
		t.Errorf("code box at (402,180) = %02x%02x%02x, want white", r>>8, g>>8, b>>8)
	}
}

func TestRenderWithoutInstitution(t *testing.T) {
	card := Card{Name: "Ana Silva", Event: event.Default()}

	data, err := Render(card, payloadFor(card.Name))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	withInst, err := Render(Card{Name: "Ana Silva", Institution: "ENAPP", Event: event.Default()}, payloadFor(card.Name))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if bytes.Equal(data, withInst) {
		t.Error("institution line made no difference to the card")
	}
}

func TestRenderLongNameDoesNotFail(t *testing.T) {
	name := "Maria da Conceição Fernandes dos Santos Egas Moniz Cardoso Pereira"
	if _, err := Render(Card{Name: name, Event: event.Default()}, payloadFor(name)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
}

func TestRenderWithoutCode(t *testing.T) {
	data, err := Render(Card{Name: "Ana", Event: event.Default()}, "")
	if !errors.Is(err, ErrNoCode) {
		t.Fatalf("Render() error = %v, want ErrNoCode", err)
	}
	if data != nil {
		t.Errorf("Render() returned %d bytes on failure", len(data))
	}
}

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"Ana Silva":        "convite-ana-silva.png",
		"  José   Egas  ":  "convite--josé-egas-.png",
		"MARIA\tDA\nCOSTA": "convite-maria-da-costa.png",
	}
	for in, want := range cases {
		if got := FileName(in); got != want {
			t.Errorf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFit(t *testing.T) {
	fs, err := loadFaces()
	if err != nil {
		t.Fatalf("loadFaces() error = %v", err)
	}
	d := &font.Drawer{Face: fs.name}
	width := fixed.I(200)

	if got := fit(d, "Ana", width); got != "Ana" {
		t.Errorf("fit() shortened a name that fits: %q", got)
	}

	long := strings.Repeat("Egas Moniz ", 1500)
	got := fit(d, long, width)
	if !strings.HasSuffix(got, "…") || d.MeasureString(got) > width {
		t.Errorf("fit() = %q, width %v", got, d.MeasureString(got))
	}
	if len(got) < 10 {
		t.Errorf("fit() kept too little: %q", got)
	}
}
