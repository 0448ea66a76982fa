package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const gpl = `GIMP Palette
Name: two
Columns: 2
# comment
  0   0   0	black
255 255 255	white
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(gpl), "two.gpl")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "two" || len(p.Colors) != 2 {
		t.Fatalf("unexpected palette %+v", p)
	}
	if got := p.Lookup(0.5); got != (RGB{127, 127, 127}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}
	if p.Lookup(-1) != p.Colors[0] || p.Lookup(2) != p.Colors[1] {
		t.Errorf("Lookup does not clamp")
	}
}

func TestParseGPLEmpty(t *testing.T) {
	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n"), "empty"); err == nil {
		t.Fatal("expected error for empty palette")
	}
}

func TestLoadOrDefault(t *testing.T) {
	p, err := LoadOrDefault("")
	if err != nil || p.Name != "synthy" {
		t.Fatalf("empty path: %v %v", p, err)
	}

	p, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.gpl"))
	if err == nil || p == nil {
		t.Fatalf("missing file should fall back with an error")
	}

	path := filepath.Join(t.TempDir(), "two.gpl")
	if err := os.WriteFile(path, []byte(gpl), 0644); err != nil {
		t.Fatal(err)
	}
	p, err = LoadOrDefault(path)
	if err != nil || p.Name != "two" {
		t.Fatalf("file: %v %v", p, err)
	}
}

func TestTileColoursDifferByKeyType(t *testing.T) {
	th := New(Default())
	if th.Tile(0) == th.Tile(1) {
		t.Fatal("white and black tiles share a colour")
	}
	if th.Tile(0) != rgbToLipgloss(th.Palette.Lookup(RoleWhiteTile)) {
		t.Fatal("white tile should use the white tile role")
	}
	if got := th.TileRGBA(1); got.A != 0xff || got == (color.RGBA{}) {
		t.Fatalf("TileRGBA = %v", got)
	}
}
