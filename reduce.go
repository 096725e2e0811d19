package matgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/soypat/matgraph/texpipe"
	"github.com/soypat/matgraph/texture"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/soypat/matgraph")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config configures a [Reducer].
type Config struct {
	// Textures resolves texture identifiers referenced by sampling nodes.
	// When Pipeline is nil Textures must also be a [texture.Sink], or nil for
	// an in-memory store.
	Textures texture.Source
	// Pipeline resolves deferred texture operations.
	Pipeline *texpipe.Pipeline
	Logger   *slog.Logger
	// MaxDepth bounds pin recursion. Zero uses the default of 256.
	MaxDepth int `validate:"gte=0,lte=1048576"`
}

// Reducer reduces material graphs to [Record]s. Safe for concurrent use.
type Reducer struct {
	textures texture.Source
	pipe     *texpipe.Pipeline
	log      *slog.Logger
	maxDepth int
}

// NewReducer returns a reducer configured by cfg.
func NewReducer(cfg Config) (*Reducer, error) {
	err := validate.Struct(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid reducer config: %w", err)
	}
	r := &Reducer{
		textures: cfg.Textures,
		pipe:     cfg.Pipeline,
		log:      cfg.Logger,
		maxDepth: cfg.MaxDepth,
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.textures == nil {
		r.textures = &texture.Memory{}
	}
	if r.pipe == nil {
		store, ok := r.textures.(texture.Store)
		if !ok {
			return nil, errors.New("reducer needs a pipeline or a texture store")
		}
		// Results live in this store so they must not be shared through the process-wide cache.
		r.pipe, err = texpipe.New(texpipe.Config{
			Source: texture.WithCheckerboard(store),
			Sink:   store,
			Cache:  texpipe.NewCache(),
			Logger: r.log,
		})
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Pipeline returns the pipeline used to finalize records.
func (r *Reducer) Pipeline() *texpipe.Pipeline { return r.pipe }

// Reduce evaluates g and finalizes the resulting record. It returns a nil record
// and nil error when g has no designated output node.
func (r *Reducer) Reduce(ctx context.Context, g *Graph) (*Record, error) {
	rec, err := r.Evaluate(ctx, g)
	if err != nil || rec == nil {
		return rec, err
	}
	err = r.Finalize(ctx, rec)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Evaluate evaluates the inputs of g's output node into a record without resolving
// deferred texture operations. Slots of pending operations reference their source
// texture until [Reducer.Finalize] is called.
func (r *Reducer) Evaluate(ctx context.Context, g *Graph) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := g.OutputNode()
	if out == nil {
		r.log.Debug("graph has no output node")
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "matgraph.Evaluate", trace.WithAttributes(
		attribute.Int("matgraph.nodes", len(g.Nodes)),
		attribute.Int("matgraph.links", len(g.Links)),
	))
	defer span.End()

	e := NewEvaluator(g, r.textures, r.log)
	e.ctx = ctx
	if r.maxDepth > 0 {
		e.SetMaxDepth(r.maxDepth)
	}
	rec := &Record{}
	for _, pin := range out.Inputs {
		if pin == nil {
			continue
		}
		v := e.Eval(pin)
		if v == nil {
			continue
		}
		slot, ok := ParseSlot(pin.Name)
		if !ok {
			r.log.Debug("output pin maps to no property", "pin", pin.ID, "name", pin.Name)
			continue
		}
		rec.set(slot, v)
	}
	rec.Diagnostics = e.Diagnostics()
	span.SetAttributes(
		attribute.Int("matgraph.pending", len(rec.pending)),
		attribute.Int("matgraph.diagnostics", len(rec.Diagnostics)),
	)
	return rec, nil
}

// Finalize resolves the pending deferred operations of rec concurrently and
// overwrites their slots with the composited textures. Operations that degrade
// keep the source texture and add a diagnostic. Identical operations are computed once.
func (r *Reducer) Finalize(ctx context.Context, rec *Record) error {
	if rec == nil || len(rec.pending) == 0 {
		return nil
	}
	ctx, span := tracer.Start(ctx, "matgraph.Finalize", trace.WithAttributes(
		attribute.Int("matgraph.pending", len(rec.pending)),
	))
	defer span.End()

	refs := make([]texture.Ref, len(rec.pending))
	degraded := make([]error, len(rec.pending))
	group, gctx := errgroup.WithContext(ctx)
	for i, b := range rec.pending {
		i, b := i, b
		group.Go(func() (err error) {
			refs[i], degraded[i], err = r.resolve(gctx, b.op)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("finalizing record: %w", err)
	}
	for i, b := range rec.pending {
		*rec.mapField(b.slot) = &refs[i]
		if degraded[i] != nil {
			rec.Diagnostics = append(rec.Diagnostics, Diagnostic{
				Kind:    DiagDegraded,
				Message: fmt.Sprintf("%s %s: %v", b.slot, b.op.Op, degraded[i]),
			})
		}
	}
	rec.pending = nil
	return nil
}

// resolve executes d and any deferred operations nested in its source, innermost first.
func (r *Reducer) resolve(ctx context.Context, d *Deferred) (ref texture.Ref, degraded, err error) {
	var src texture.Ref
	switch s := d.Source.(type) {
	case TextureRef:
		src = s.Ref()
	case *Deferred:
		src, degraded, err = r.resolve(ctx, s)
		if err != nil {
			return texture.Ref{}, nil, err
		}
	default:
		return texture.Ref{}, nil, fmt.Errorf("%s operation has no texture source", d.Op)
	}
	res, err := r.pipe.Apply(ctx, texpipe.Request{
		Op:     d.Op,
		Source: src,
		ColorA: d.ColorA,
		ColorB: d.ColorB,
		Amount: d.Amount,
	})
	if err != nil {
		return texture.Ref{}, nil, err
	}
	if res.Degraded != nil {
		degraded = errors.Join(degraded, res.Degraded)
	}
	return res.Ref, degraded, nil
}
