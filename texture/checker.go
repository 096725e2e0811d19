package texture

import (
	"context"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
)

// CheckerboardID identifies the built-in checkerboard texture used when a
// sampling node has no texture assigned.
const CheckerboardID = "builtin:checkerboard"

const (
	checkerSize  = 64
	checkerCells = 8
)

var (
	checkerOnce sync.Once
	checkerData []byte
)

// Checkerboard returns the encoded built-in checkerboard texture.
func Checkerboard() Texture {
	checkerOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, checkerSize, checkerSize))
		light := image.NewUniform(color.RGBA{R: 200, G: 200, B: 200, A: 255})
		dark := image.NewUniform(color.RGBA{R: 55, G: 55, B: 55, A: 255})
		const cell = checkerSize / checkerCells
		for i := 0; i < checkerCells; i++ {
			for j := 0; j < checkerCells; j++ {
				src := light
				if (i+j)%2 == 1 {
					src = dark
				}
				r := image.Rect(i*cell, j*cell, (i+1)*cell, (j+1)*cell)
				draw.Draw(img, r, src, image.Point{}, draw.Src)
			}
		}
		data, err := EncodePNG(img)
		if err != nil {
			panic(err) // in-memory PNG encoding of a valid RGBA image does not fail.
		}
		checkerData = data
	})
	return Texture{ID: CheckerboardID, Data: checkerData, Width: checkerSize, Height: checkerSize}
}

type checkerSource struct {
	Source
}

// WithCheckerboard wraps src so that [CheckerboardID] always resolves. A nil src
// results in a source that only resolves the checkerboard.
func WithCheckerboard(src Source) Source {
	return checkerSource{Source: src}
}

func (cs checkerSource) Get(ctx context.Context, id string) (Texture, error) {
	if id == CheckerboardID {
		return Checkerboard(), nil
	}
	if cs.Source == nil {
		return Texture{}, ErrNotFound
	}
	return cs.Source.Get(ctx, id)
}
