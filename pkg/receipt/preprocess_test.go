package receipt

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestPrepareUpscalesSmallImage(t *testing.T) {
	small := imaging.New(100, 50, color.NRGBA{200, 200, 200, 255})
	out := prepareForOCR(small)
	if out.Bounds().Dx() < minWorkingDim && out.Bounds().Dy() < minWorkingDim {
		t.Fatalf("expected upscale to at least %d, got %v", minWorkingDim, out.Bounds())
	}
	// proportional: 100x50 keeps its 2:1 ratio
	if out.Bounds().Dx() != 2*out.Bounds().Dy() {
		t.Fatalf("aspect ratio not preserved: %v", out.Bounds())
	}
}

func TestPrepareKeepsLargeImageSize(t *testing.T) {
	big := imaging.New(1200, 1600, color.NRGBA{128, 128, 128, 255})
	out := prepareForOCR(big)
	if out.Bounds().Dx() != 1200 || out.Bounds().Dy() != 1600 {
		t.Fatalf("large image should not be resized, got %v", out.Bounds())
	}
}

func TestPrepareFlattensPalettedInput(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 40, 40), color.Palette{
		color.NRGBA{0, 0, 0, 255}, color.NRGBA{255, 255, 255, 0},
	})
	out := prepareForOCR(pal)
	if out == nil {
		t.Fatal("expected NRGBA output")
	}
}

func TestPrepareDoesNotMutateInput(t *testing.T) {
	in := imaging.New(64, 64, color.NRGBA{10, 200, 30, 255})
	before := make([]uint8, len(in.Pix))
	copy(before, in.Pix)
	_ = prepareForOCR(in)
	for i := range before {
		if in.Pix[i] != before[i] {
			t.Fatalf("input mutated at pixel byte %d", i)
		}
	}
}
