package receipt

import (
	"image"

	"github.com/disintegration/imaging"
)

// minWorkingDim is the smallest dimension tesseract handles well on dense
// receipt layouts; smaller images are upscaled proportionally.
const minWorkingDim = 900

// prepareForOCR normalizes an image for text extraction: clone to a plain
// 3-channel NRGBA (flattens palettes and transparency), upscale small images
// with Lanczos, then run the enhancement chain. The input is never mutated.
func prepareForOCR(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	w := out.Bounds().Dx()
	h := out.Bounds().Dy()
	if w > 0 && h > 0 && (w < minWorkingDim || h < minWorkingDim) {
		if h < w {
			out = imaging.Resize(out, 0, minWorkingDim, imaging.Lanczos)
		} else {
			out = imaging.Resize(out, minWorkingDim, 0, imaging.Lanczos)
		}
	}
	return enhance(out)
}

// enhance applies the fixed contrast -> sharpness -> smoothing chain. Each
// step is best-effort: a step that panics leaves the image as it was before
// that step instead of aborting the pipeline.
func enhance(img *image.NRGBA) *image.NRGBA {
	out := safeStep(img, func(in *image.NRGBA) *image.NRGBA {
		return imaging.AdjustContrast(in, 15)
	})
	out = safeStep(out, func(in *image.NRGBA) *image.NRGBA {
		return imaging.Sharpen(in, 0.7)
	})
	out = safeStep(out, func(in *image.NRGBA) *image.NRGBA {
		// mild blur followed by a light re-sharpen to smooth sensor noise
		return imaging.Sharpen(imaging.Blur(in, 0.4), 0.3)
	})
	return out
}

func safeStep(img *image.NRGBA, step func(*image.NRGBA) *image.NRGBA) (out *image.NRGBA) {
	out = img
	defer func() {
		if recover() != nil {
			out = img
		}
	}()
	if v := step(img); v != nil {
		out = v
	}
	return out
}
