// Package texpipe implements the deferred texture compositing pipeline: per-pixel
// operations that material graph evaluation can only describe, executed against
// real pixel buffers with content addressed caching and in-flight de-duplication.
package texpipe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/soypat/matgraph/texture"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/soypat/matgraph/texpipe")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config configures a [Pipeline].
type Config struct {
	// Source resolves source texture content. Required.
	Source texture.Source `validate:"required"`
	// Sink receives composited textures. Results must be resolvable by Source
	// for chained operations to work. Required.
	Sink texture.Sink `validate:"required"`
	// Cache holds results and in-flight work. Nil uses [Default].
	Cache *Cache
	// IDPrefix is prepended to identifiers of composited textures. Defaults to "composite/".
	IDPrefix string `validate:"omitempty,max=128"`
	Logger   *slog.Logger
}

// Pipeline executes compositing [Request]s. Safe for concurrent use.
type Pipeline struct {
	src    texture.Source
	sink   texture.Sink
	cache  *Cache
	prefix string
	log    *slog.Logger
}

// Result is the outcome of [Pipeline.Apply].
type Result struct {
	// Ref references the composited texture. When Degraded is set it is the
	// unmodified source reference.
	Ref texture.Ref
	// Cached is true when the result was served from the cache.
	Cached bool
	// Degraded is the reason the requested operation could not be applied.
	Degraded error
}

// New returns a pipeline configured by cfg.
func New(cfg Config) (*Pipeline, error) {
	err := validate.Struct(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	p := &Pipeline{
		src:    cfg.Source,
		sink:   cfg.Sink,
		cache:  cfg.Cache,
		prefix: cfg.IDPrefix,
		log:    cfg.Logger,
	}
	if p.cache == nil {
		p.cache = Default()
	}
	if p.prefix == "" {
		p.prefix = "composite/"
	}
	if p.log == nil {
		p.log = slog.Default()
	}
	return p, nil
}

// NewMemory returns a pipeline reading and writing to store with an isolated cache.
// Convenient for precomputation and tests.
func NewMemory(store texture.Store) *Pipeline {
	p, err := New(Config{Source: texture.WithCheckerboard(store), Sink: store, Cache: NewCache()})
	if err != nil {
		panic(err)
	}
	return p
}

// Cache returns the pipeline's cache.
func (p *Pipeline) Cache() *Cache { return p.cache }

type outcome struct {
	id       string
	degraded error
}

// Apply executes req, or returns the cached result of an identical request. Concurrent
// identical requests share a single execution. If the source texture cannot be
// resolved or decoded the result carries the original reference and Degraded is set.
// The returned error is non-nil only for invalid requests or when ctx is done first.
func (p *Pipeline) Apply(ctx context.Context, req Request) (Result, error) {
	err := req.Validate()
	if err != nil {
		return Result{}, err
	}
	key := req.Key()
	ctx, span := tracer.Start(ctx, "texpipe.Apply")
	defer span.End()
	span.SetAttributes(
		attribute.String("texpipe.op", req.Op.String()),
		attribute.String("texpipe.source", req.Source.ID),
	)

	if id, ok := p.cache.lookup(key); ok {
		p.cache.hits.Add(1)
		span.SetAttributes(attribute.Bool("texpipe.cached", true))
		return Result{Ref: withID(req.Source, id), Cached: true}, nil
	}
	// Work outlives the caller that started it since other callers may be waiting on it.
	workCtx := context.WithoutCancel(ctx)
	ch := p.cache.inflight.DoChan(key, func() (any, error) {
		if id, ok := p.cache.lookup(key); ok {
			return outcome{id: id}, nil
		}
		p.cache.computations.Add(1)
		id, err := p.compute(workCtx, req, key)
		if err != nil {
			return outcome{degraded: err}, nil
		}
		p.cache.store(key, id)
		return outcome{id: id}, nil
	})
	select {
	case <-ctx.Done():
		span.SetStatus(codes.Error, ctx.Err().Error())
		return Result{}, ctx.Err()
	case r := <-ch:
		if r.Shared {
			p.cache.shared.Add(1)
		}
		out := r.Val.(outcome)
		if out.degraded != nil {
			p.log.Warn("texture operation degraded to source", "op", req.Op.String(), "source", req.Source.ID, "error", out.degraded)
			span.RecordError(out.degraded)
			return Result{Ref: req.Source, Degraded: out.degraded}, nil
		}
		return Result{Ref: withID(req.Source, out.id)}, nil
	}
}

func (p *Pipeline) compute(ctx context.Context, req Request, key string) (string, error) {
	tex, err := p.src.Get(ctx, req.Source.ID)
	if err != nil {
		return "", fmt.Errorf("resolving source: %w", err)
	}
	img, _, err := texture.Decode(tex.Data)
	if err != nil {
		return "", err
	}
	out := composite(img, req)
	data, err := texture.EncodePNG(out)
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	sum := sha256.Sum256([]byte(key))
	id := p.prefix + hex.EncodeToString(sum[:12]) + ".png"
	bb := out.Bounds()
	id, err = p.sink.Put(ctx, id, data, bb.Dx(), bb.Dy())
	if err != nil {
		return "", fmt.Errorf("storing result: %w", err)
	}
	p.log.Debug("composited texture", "op", req.Op.String(), "source", req.Source.ID, "result", id)
	return id, nil
}

func withID(ref texture.Ref, id string) texture.Ref {
	ref.ID = id
	return ref
}
