package texpipe_test

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soypat/matgraph/texpipe"
	"github.com/soypat/matgraph/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putSolid(t *testing.T, store texture.Sink, id string, c color.RGBA) texture.Ref {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	data, err := texture.EncodePNG(img)
	require.NoError(t, err)
	_, err = store.Put(context.Background(), id, data, 4, 4)
	require.NoError(t, err)
	return texture.Ref{ID: id}
}

func texelAt(t *testing.T, src texture.Source, ref texture.Ref) color.RGBA {
	t.Helper()
	tex, err := src.Get(context.Background(), ref.ID)
	require.NoError(t, err)
	img, _, err := texture.Decode(tex.Data)
	require.NoError(t, err)
	return color.RGBAModel.Convert(img.At(1, 1)).(color.RGBA)
}

// countingSource counts Get calls and optionally blocks them until released.
type countingSource struct {
	texture.Source
	gets    atomic.Int32
	release chan struct{}
}

func (cs *countingSource) Get(ctx context.Context, id string) (texture.Texture, error) {
	cs.gets.Add(1)
	if cs.release != nil {
		<-cs.release
	}
	return cs.Source.Get(ctx, id)
}

func TestMultiplyByColor(t *testing.T) {
	var store texture.Memory
	src := putSolid(t, &store, "tex", color.RGBA{R: 200, G: 150, B: 100, A: 255})
	src.TileU, src.TileV = 2, 3
	p := texpipe.NewMemory(&store)

	res, err := p.Apply(context.Background(), texpipe.Request{Op: texpipe.OpMultiply, Source: src, ColorA: [3]float32{0, 1, 0}})
	require.NoError(t, err)
	require.NoError(t, res.Degraded)
	assert.NotEqual(t, src.ID, res.Ref.ID)
	assert.Equal(t, float32(2), res.Ref.TileU, "tiling is preserved")
	assert.Equal(t, float32(3), res.Ref.TileV)

	got := texelAt(t, &store, res.Ref)
	assert.Equal(t, color.RGBA{R: 0, G: 150, B: 0, A: 255}, got)
}

func TestOperations(t *testing.T) {
	var store texture.Memory
	src := putSolid(t, &store, "tex", color.RGBA{R: 200, G: 100, B: 0, A: 255})
	p := texpipe.NewMemory(&store)
	tests := []struct {
		name string
		req  texpipe.Request
		want color.RGBA
	}{
		{
			name: "multiply saturates",
			req:  texpipe.Request{Op: texpipe.OpMultiply, ColorA: [3]float32{2, 2, 2}},
			want: color.RGBA{R: 255, G: 200, B: 0, A: 255},
		},
		{
			name: "add saturates",
			req:  texpipe.Request{Op: texpipe.OpAdd, ColorA: [3]float32{0.5, 0, 0.2}},
			want: color.RGBA{R: 255, G: 100, B: 51, A: 255},
		},
		{
			name: "subtract floors",
			req:  texpipe.Request{Op: texpipe.OpSubtract, ColorA: [3]float32{1, 0.2, 0.5}},
			want: color.RGBA{R: 0, G: 49, B: 0, A: 255},
		},
		{
			name: "power one is identity",
			req:  texpipe.Request{Op: texpipe.OpPower, Amount: 1},
			want: color.RGBA{R: 200, G: 100, B: 0, A: 255},
		},
		{
			name: "lerp to color",
			req:  texpipe.Request{Op: texpipe.OpLerpWithColor, ColorA: [3]float32{0, 0, 1}, Amount: 1},
			want: color.RGBA{R: 0, G: 0, B: 255, A: 255},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Source = src
			res, err := p.Apply(context.Background(), tt.req)
			require.NoError(t, err)
			require.NoError(t, res.Degraded)
			got := texelAt(t, &store, res.Ref)
			assert.InDelta(t, tt.want.R, got.R, 1)
			assert.InDelta(t, tt.want.G, got.G, 1)
			assert.InDelta(t, tt.want.B, got.B, 1)
			assert.Equal(t, tt.want.A, got.A)
		})
	}
}

func TestTranslucentTexels(t *testing.T) {
	var store texture.Memory
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 100, G: 100, B: 100, A: 128})
		}
	}
	data, err := texture.EncodePNG(img)
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "glass", data, 4, 4)
	require.NoError(t, err)
	p := texpipe.NewMemory(&store)

	tests := []struct {
		name string
		req  texpipe.Request
		want color.NRGBA
	}{
		{
			name: "add",
			req:  texpipe.Request{Op: texpipe.OpAdd, ColorA: [3]float32{0.5, 0, 0}},
			want: color.NRGBA{R: 226, G: 99, B: 99, A: 128},
		},
		{
			name: "multiply",
			req:  texpipe.Request{Op: texpipe.OpMultiply, ColorA: [3]float32{2, 1, 1}},
			want: color.NRGBA{R: 198, G: 99, B: 99, A: 128},
		},
		{
			name: "multiply saturates",
			req:  texpipe.Request{Op: texpipe.OpMultiply, ColorA: [3]float32{4, 1, 0}},
			want: color.NRGBA{R: 255, G: 99, B: 0, A: 128},
		},
		{
			name: "lerp to color",
			req:  texpipe.Request{Op: texpipe.OpLerpWithColor, ColorA: [3]float32{0, 1, 0}, Amount: 1},
			want: color.NRGBA{R: 0, G: 255, B: 0, A: 128},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Source = texture.Ref{ID: "glass"}
			res, err := p.Apply(context.Background(), tt.req)
			require.NoError(t, err)
			require.NoError(t, res.Degraded)
			tex, err := store.Get(context.Background(), res.Ref.ID)
			require.NoError(t, err)
			out, _, err := texture.Decode(tex.Data)
			require.NoError(t, err)
			got := color.NRGBAModel.Convert(out.At(1, 1)).(color.NRGBA)
			assert.InDelta(t, tt.want.R, got.R, 3)
			assert.InDelta(t, tt.want.G, got.G, 3)
			assert.InDelta(t, tt.want.B, got.B, 3)
			assert.InDelta(t, tt.want.A, got.A, 1)
		})
	}
}

func TestLerpByTextureLuminance(t *testing.T) {
	var store texture.Memory
	white := putSolid(t, &store, "white", color.RGBA{R: 255, G: 255, B: 255, A: 255})
	black := putSolid(t, &store, "black", color.RGBA{A: 255})
	p := texpipe.NewMemory(&store)
	req := texpipe.Request{Op: texpipe.OpLerpByTexture, ColorA: [3]float32{1, 0, 0}, ColorB: [3]float32{0, 0, 1}}

	req.Source = white
	res, err := p.Apply(context.Background(), req)
	require.NoError(t, err)
	got := texelAt(t, &store, res.Ref)
	assert.InDelta(t, 0, got.R, 1)
	assert.InDelta(t, 255, got.B, 1)

	req.Source = black
	res, err = p.Apply(context.Background(), req)
	require.NoError(t, err)
	got = texelAt(t, &store, res.Ref)
	assert.Equal(t, uint8(255), got.R)
	assert.Equal(t, uint8(0), got.B)
}

func TestConcurrentDedup(t *testing.T) {
	var store texture.Memory
	src := putSolid(t, &store, "tex", color.RGBA{R: 10, G: 20, B: 30, A: 255})
	cs := &countingSource{Source: &store, release: make(chan struct{})}
	p, err := texpipe.New(texpipe.Config{Source: cs, Sink: &store, Cache: texpipe.NewCache()})
	require.NoError(t, err)

	req := texpipe.Request{Op: texpipe.OpMultiply, Source: src, ColorA: [3]float32{0.5, 0.5, 0.5}}
	const callers = 8
	var wg sync.WaitGroup
	results := make([]texpipe.Result, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := p.Apply(context.Background(), req)
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(cs.release)
	wg.Wait()

	assert.Equal(t, uint64(1), p.Cache().Computations())
	assert.Equal(t, int32(1), cs.gets.Load())
	for _, res := range results[1:] {
		assert.Equal(t, results[0].Ref, res.Ref)
	}

	res, err := p.Apply(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, results[0].Ref, res.Ref)
	assert.Equal(t, uint64(1), p.Cache().Computations())
}

func TestDegradedDecode(t *testing.T) {
	var store texture.Memory
	_, err := store.Put(context.Background(), "broken", []byte("definitely not an image"), 0, 0)
	require.NoError(t, err)
	p := texpipe.NewMemory(&store)
	src := texture.Ref{ID: "broken", TileU: 4}
	req := texpipe.Request{Op: texpipe.OpMultiply, Source: src, ColorA: [3]float32{1, 0, 0}}

	res, err := p.Apply(context.Background(), req)
	require.NoError(t, err)
	assert.Error(t, res.Degraded)
	assert.Equal(t, src, res.Ref)
	assert.Equal(t, 0, p.Cache().Len(), "degraded results are not cached")

	res, err = p.Apply(context.Background(), texpipe.Request{Op: texpipe.OpMultiply, Source: texture.Ref{ID: "missing"}})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Degraded, texture.ErrNotFound)
}

func TestInvalidRequest(t *testing.T) {
	p := texpipe.NewMemory(&texture.Memory{})
	_, err := p.Apply(context.Background(), texpipe.Request{Source: texture.Ref{ID: "x"}})
	assert.Error(t, err)
	_, err = p.Apply(context.Background(), texpipe.Request{Op: texpipe.OpAdd})
	assert.Error(t, err)
	_, err = texpipe.New(texpipe.Config{})
	assert.Error(t, err)
}

func TestRequestKey(t *testing.T) {
	a := texpipe.Request{Op: texpipe.OpMultiply, Source: texture.Ref{ID: "t", TileU: 2}, ColorA: [3]float32{0, 1, 0}}
	b := a
	b.Source.TileU = 7
	assert.Equal(t, a.Key(), b.Key(), "tiling does not change texels")
	b.ColorA[0] = 0.5
	assert.NotEqual(t, a.Key(), b.Key())
	c := a
	c.Op = texpipe.OpAdd
	assert.NotEqual(t, a.Key(), c.Key())

	for op := texpipe.OpMultiply; op.IsValid(); op++ {
		got, err := texpipe.ParseOp(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	_, err := texpipe.ParseOp("blur")
	assert.Error(t, err)
}
