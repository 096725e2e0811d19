package matgraph

import (
	"context"
	"strconv"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/matgraph/texpipe"
	"github.com/soypat/matgraph/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGraph builds graphs for tests. Nodes get a single "out" output pin unless
// more are added, and input pins whose ID and name are the given strings.
type testGraph struct {
	Graph
	links int
}

func (g *testGraph) add(id, kind string, props map[string]any, inputs ...string) *Node {
	n := &Node{ID: id, Kind: kind, Properties: props, Outputs: []*Pin{{ID: "out", Name: "Out"}}}
	for _, in := range inputs {
		n.Inputs = append(n.Inputs, &Pin{ID: in, Name: in})
	}
	g.Nodes = append(g.Nodes, n)
	return n
}

func (g *testGraph) scalar(id string, v float64) *Node {
	return g.add(id, "Constant", map[string]any{"Value": v})
}

func (g *testGraph) color(id string, r, gr, b float64) *Node {
	return g.add(id, "Constant3Vector", map[string]any{"R": r, "G": gr, "B": b})
}

func (g *testGraph) output(slots ...string) *Node {
	n := &Node{ID: "output", Kind: "MaterialOutput", Output: true}
	for i, s := range slots {
		n.Inputs = append(n.Inputs, &Pin{ID: "slot" + strconv.Itoa(i), Name: s})
	}
	g.Nodes = append(g.Nodes, n)
	return n
}

func (g *testGraph) link(from, to *Node, toPin string) {
	g.links++
	g.Connect("l"+strconv.Itoa(g.links), from, "out", to, toPin)
}

// evalNode evaluates the "out" pin of n.
func evalNode(g *testGraph, n *Node) (Value, []Diagnostic) {
	e := NewEvaluator(&g.Graph, nil, nil)
	v := e.dispatch(n, n.Outputs[0], nil)
	return v, e.Diagnostics()
}

func hasDiag(diags []Diagnostic, kind DiagnosticKind) bool {
	for _, d := range diags {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func assertVec3(t *testing.T, want ms3.Vec, got ms3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-5, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-5, "z")
}

func TestBroadcastArithmetic(t *testing.T) {
	var g testGraph
	mul := g.add("mul", "Multiply", nil, "a", "b")
	g.link(g.color("c", 1, 0.5, 0), mul, "a")
	g.link(g.scalar("two", 2), mul, "b")
	v, diags := evalNode(&g, mul)
	assert.Equal(t, Vec3(2, 1, 0), v)
	assert.Empty(t, diags)

	var g2 testGraph
	mul = g2.add("mul", "Multiply", nil, "a", "b")
	g2.link(g2.scalar("two", 2), mul, "a")
	g2.link(g2.scalar("three", 3), mul, "b")
	v, _ = evalNode(&g2, mul)
	assert.Equal(t, Scalar(6), v)
}

func TestBinaryOperations(t *testing.T) {
	tests := []struct {
		kind  string
		props map[string]any
		want  float32
		delta float64
	}{
		{kind: "Divide", props: map[string]any{"ConstA": 1, "ConstB": 0}, want: 10000, delta: 0.01},
		{kind: "Divide", props: map[string]any{"ConstA": 3, "ConstB": 2}, want: 1.5},
		{kind: "Add", props: map[string]any{"ConstA": 1.5, "ConstB": 2}, want: 3.5},
		{kind: "Subtract", props: map[string]any{"ConstA": 1, "ConstB": 3}, want: -2},
		{kind: "Multiply", props: nil, want: 1},
		{kind: "Power", props: map[string]any{"ConstA": 2, "ConstExponent": 3}, want: 8},
		{kind: "Power", props: map[string]any{"ConstA": -2, "ConstExponent": 2}, want: 4},
		{kind: "Min", props: map[string]any{"ConstA": -1, "ConstB": 3}, want: -1},
		{kind: "Max", props: map[string]any{"ConstA": -1, "ConstB": 3}, want: 3},
		{kind: "Fmod", props: map[string]any{"ConstA": 5.5, "ConstB": 2}, want: 1.5},
		{kind: "Fmod", props: map[string]any{"ConstA": 5.5, "ConstB": 0}, want: 0},
		{kind: "Step", props: map[string]any{"ConstY": 0.5, "ConstX": 0.7}, want: 1},
		{kind: "Step", props: map[string]any{"ConstY": 0.5, "ConstX": 0.2}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			var g testGraph
			n := g.add("n", tt.kind, tt.props)
			v, _ := evalNode(&g, n)
			require.IsType(t, Scalar(0), v)
			assert.InDelta(t, tt.want, float32(v.(Scalar)), tt.delta)
		})
	}
}

func TestVectorArityMismatchTruncates(t *testing.T) {
	got := broadcast(Vec2(1, 2), Vec4(10, 20, 30, 40), func(x, y float32) float32 { return x + y })
	assert.Equal(t, Vec2(11, 22), got)
	assert.Nil(t, broadcast(Scalar(1), UVTransform{}, func(x, y float32) float32 { return x }))
}

func TestLerpAndClamp(t *testing.T) {
	var g testGraph
	lerp := g.add("lerp", "LinearInterpolate", map[string]any{"ConstA": 0, "ConstB": 10, "ConstAlpha": 0.25})
	v, _ := evalNode(&g, lerp)
	assert.Equal(t, Scalar(2.5), v)

	clamp := g.add("clamp", "Clamp", nil, "input")
	g.link(g.scalar("five", 5), clamp, "input")
	v, _ = evalNode(&g, clamp)
	assert.Equal(t, Scalar(1), v)

	clamp2 := g.add("clamp2", "Clamp", map[string]any{"MinDefault": -0.5}, "input")
	g.link(g.scalar("neg", -1), clamp2, "input")
	v, _ = evalNode(&g, clamp2)
	assert.Equal(t, Scalar(-0.5), v)
}

func TestCycleTerminates(t *testing.T) {
	var g testGraph
	a1 := g.add("a1", "Add", nil, "a", "b")
	a2 := g.add("a2", "Add", map[string]any{"ConstB": 1}, "a", "b")
	g.link(a2, a1, "a")
	g.link(a1, a2, "a")
	v, diags := evalNode(&g, a1)
	// The revisited pin is unavailable so the inner a1 evaluates to 0.
	assert.Equal(t, Scalar(1), v)
	assert.True(t, hasDiag(diags, DiagCycle))

	var self testGraph
	rr := self.add("rr", "Reroute", nil, "input")
	self.link(rr, rr, "input")
	out := self.output("Metallic")
	self.link(rr, out, "Metallic")
	e := NewEvaluator(&self.Graph, nil, nil)
	assert.Nil(t, e.Eval(out.Inputs[0]))
	assert.True(t, hasDiag(e.Diagnostics(), DiagCycle))
}

func TestDiamondReevaluates(t *testing.T) {
	var g testGraph
	c := g.scalar("c", 3)
	add := g.add("add", "Add", nil, "a", "b")
	g.link(c, add, "a")
	g.link(c, add, "b")
	v, diags := evalNode(&g, add)
	assert.Equal(t, Scalar(6), v)
	assert.Empty(t, diags)
}

func TestMaxDepth(t *testing.T) {
	var g testGraph
	prev := g.scalar("c", 1)
	for i := 0; i < 10; i++ {
		rr := g.add("rr"+strconv.Itoa(i), "Reroute", nil, "input")
		g.link(prev, rr, "input")
		prev = rr
	}
	out := g.output("Metallic")
	g.link(prev, out, "Metallic")

	e := NewEvaluator(&g.Graph, nil, nil)
	assert.Equal(t, Scalar(1), e.Eval(out.Inputs[0]))

	e = NewEvaluator(&g.Graph, nil, nil)
	e.SetMaxDepth(3)
	assert.Nil(t, e.Eval(out.Inputs[0]))
	assert.True(t, hasDiag(e.Diagnostics(), DiagDepth))
}

func TestBrokenLinkUsesDefault(t *testing.T) {
	var g testGraph
	n := g.add("n", "OneMinus", nil, "input")
	n.Inputs[0].Link = "nowhere"
	n.Inputs[0].Default = Scalar(0.25)
	v, diags := evalNode(&g, n)
	assert.Equal(t, Scalar(0.75), v)
	assert.True(t, hasDiag(diags, DiagBrokenLink))
}

func TestUnknownKindFallback(t *testing.T) {
	var g testGraph
	n := g.add("n", "MaterialExpressionFancyThing", nil)
	v, diags := evalNode(&g, n)
	assert.Equal(t, Scalar(neutralGray), v)
	assert.True(t, hasDiag(diags, DiagUnknownKind))

	n = g.add("n2", "Whatever", map[string]any{"R": 0.1, "G": 0.2, "B": 0.3})
	v, _ = evalNode(&g, n)
	assert.Equal(t, Vec3(0.1, 0.2, 0.3), v)

	n = g.add("n3", "Whatever", map[string]any{"Value": 0.7})
	v, _ = evalNode(&g, n)
	assert.Equal(t, Scalar(0.7), v)
}

func TestEveryKindDispatches(t *testing.T) {
	for _, k := range Kinds() {
		assert.Equal(t, k, ParseKind(k.String()))
		n := &Node{ID: "n", Kind: k.String()}
		e := NewEvaluator(&Graph{Nodes: []*Node{n}}, nil, nil)
		assert.NotPanics(t, func() { e.dispatch(n, nil, nil) }, k.String())
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"MaterialExpressionLinearInterpolate": KindLerp,
		"lerp":                                KindLerp,
		"Texture Sample":                      KindTextureSample,
		"texture_sample":                      KindTextureSample,
		"SUBSTRATE-SLAB-BSDF":                 KindSlabBSDF,
		"MainMaterialNode":                    KindMaterialOutput,
		"NotAKind":                            KindUnknown,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseKind(name), name)
	}
}

func TestTextureTimesColorIsDeferred(t *testing.T) {
	var g testGraph
	tex := g.add("tex", "TextureSample", map[string]any{"Texture": "t"})
	mul := g.add("mul", "Multiply", nil, "a", "b")
	g.link(tex, mul, "a")
	g.link(g.color("green", 0, 1, 0), mul, "b")

	var store texture.Memory
	_, err := store.Put(context.Background(), "t", []byte("x"), 1, 1)
	require.NoError(t, err)
	e := NewEvaluator(&g.Graph, &store, nil)
	v := e.dispatch(mul, mul.Outputs[0], nil)
	require.IsType(t, &Deferred{}, v)
	d := v.(*Deferred)
	assert.Equal(t, texpipe.OpMultiply, d.Op)
	assert.Equal(t, [3]float32{0, 1, 0}, d.ColorA)
	assert.Equal(t, TextureRef{ID: "t"}, d.Source)
	assert.Empty(t, e.Diagnostics())
}

func TestTextureBinaryOrder(t *testing.T) {
	tex := TextureRef{ID: "t"}
	d, ok := textureBinary(KindDivide, tex, Scalar(4)).(*Deferred)
	require.True(t, ok)
	assert.Equal(t, texpipe.OpMultiply, d.Op)
	assert.Equal(t, [3]float32{0.25, 0.25, 0.25}, d.ColorA)

	// Color minus texture has no pipeline operation.
	assert.Equal(t, tex, textureBinary(KindSubtract, Scalar(1), tex))
	// Texture with texture keeps the first texture.
	assert.Equal(t, tex, textureBinary(KindMultiply, tex, TextureRef{ID: "u"}))
}

func TestLerpByTextureAlpha(t *testing.T) {
	var g testGraph
	tex := g.add("tex", "TextureSample", nil)
	lerp := g.add("lerp", "LinearInterpolate", nil, "a", "b", "alpha")
	g.link(g.color("red", 1, 0, 0), lerp, "a")
	g.link(g.color("blue", 0, 0, 1), lerp, "b")
	g.link(tex, lerp, "alpha")
	v, _ := evalNode(&g, lerp)
	require.IsType(t, &Deferred{}, v)
	d := v.(*Deferred)
	assert.Equal(t, texpipe.OpLerpByTexture, d.Op)
	assert.Equal(t, [3]float32{1, 0, 0}, d.ColorA)
	assert.Equal(t, [3]float32{0, 0, 1}, d.ColorB)
	assert.Equal(t, TextureRef{ID: texture.CheckerboardID}, d.Source)
}

func TestTextureSampleChannel(t *testing.T) {
	var g testGraph
	tex := g.add("tex", "TextureSample", map[string]any{"UTiling": 2})
	tex.Outputs = append(tex.Outputs, &Pin{ID: "R", Name: "R"}, &Pin{ID: "alpha", Name: "A"})
	e := NewEvaluator(&g.Graph, nil, nil)

	v := e.dispatch(tex, tex.OutputPin("R"), nil)
	assert.Equal(t, TextureRef{ID: texture.CheckerboardID, TileU: 2, Channel: texture.ChannelR}, v)
	v = e.dispatch(tex, tex.OutputPin("A"), nil)
	assert.Equal(t, texture.ChannelA, v.(TextureRef).Channel)
	v = e.dispatch(tex, tex.OutputPin("out"), nil)
	assert.Equal(t, texture.ChannelAll, v.(TextureRef).Channel)
}

func TestUnresolvableTextureUsesCheckerboard(t *testing.T) {
	var g testGraph
	tex := g.add("tex", "TextureSample", map[string]any{"Texture": "missing.png"})
	v, diags := evalNode(&g, tex)
	assert.Equal(t, TextureRef{ID: texture.CheckerboardID}, v)
	assert.True(t, hasDiag(diags, DiagTexture))
}

func TestVectorConstruction(t *testing.T) {
	var g testGraph
	mk := g.add("mk", "MakeFloat3", nil, "x", "y", "z")
	g.link(g.scalar("one", 1), mk, "x")
	g.link(g.scalar("two", 2), mk, "z")
	v, _ := evalNode(&g, mk)
	assert.Equal(t, Vec3(1, 0, 2), v)

	app := g.add("app", "AppendVector", map[string]any{"ConstB": 5}, "a", "b")
	g.link(mk, app, "a")
	v, _ = evalNode(&g, app)
	assert.Equal(t, Vec4(1, 0, 2, 5), v)

	brk := g.add("brk", "BreakOutFloat4Components", nil, "float")
	brk.Outputs = []*Pin{{ID: "r", Name: "R"}, {ID: "a", Name: "A"}}
	g.link(g.color("c", 0.1, 0.2, 0.3), brk, "float")
	e := NewEvaluator(&g.Graph, nil, nil)
	assert.Equal(t, Scalar(0.1), e.dispatch(brk, brk.OutputPin("r"), nil))
	assert.Equal(t, Scalar(1), e.dispatch(brk, brk.OutputPin("a"), nil), "alpha defaults to 1")
}

func TestColorNodes(t *testing.T) {
	var g testGraph
	desat := g.add("desat", "Desaturation", nil, "input")
	g.link(g.color("c", 1, 0, 0), desat, "input")
	v, _ := evalNode(&g, desat)
	assertVec3(t, splat3(0.2126), v.(Vector).MS3())

	hsv := g.add("hsv", "RGBToHSV", nil, "input")
	g.link(g.color("green", 0, 1, 0), hsv, "input")
	v, _ = evalNode(&g, hsv)
	assertVec3(t, ms3.Vec{X: 1.0 / 3, Y: 1, Z: 1}, v.(Vector).MS3())

	back := g.add("back", "HSVToRGB", nil, "input")
	g.link(hsv, back, "input")
	v, _ = evalNode(&g, back)
	assertVec3(t, ms3.Vec{Y: 1}, v.(Vector).MS3())

	enc := g.add("enc", "LinearToSRGB", nil, "input")
	g.link(g.color("half", 0.5, 0.5, 0.5), enc, "input")
	v, _ = evalNode(&g, enc)
	assert.InDelta(t, 0.7354, v.(Vector).At(0), 1e-3)
}

func TestRotateAboutAxis(t *testing.T) {
	z := ms3.Vec{Z: 1}
	got := rotateAboutAxis(ms3.Vec{X: 1}, ms3.Vec{}, z, math32.Pi/2)
	assertVec3(t, ms3.Vec{Y: 1}, got)

	got = rotateAboutAxis(ms3.Vec{X: 2, Y: 1}, ms3.Vec{X: 1, Y: 1}, z, math32.Pi/2)
	assertVec3(t, ms3.Vec{X: 1, Y: 2}, got)

	// Degenerate axis leaves the point in place.
	got = rotateAboutAxis(ms3.Vec{X: 2}, ms3.Vec{}, ms3.Vec{}, 1)
	assertVec3(t, ms3.Vec{X: 2}, got)
}

func TestFresnel(t *testing.T) {
	var g testGraph
	n := g.add("f", "Fresnel", nil)
	v, _ := evalNode(&g, n)
	want := 0.04 + 0.96*math32.Pow(0.5, 5)
	assert.InDelta(t, want, float32(v.(Scalar)), 1e-6)
}

func TestSphereMask(t *testing.T) {
	tests := []struct {
		name     string
		center   float64
		hardness float64
		want     float32
	}{
		{name: "soft halfway", center: 1, hardness: 0, want: 0.5},
		{name: "half hardness", center: 1.5, hardness: 50, want: 0.5},
		{name: "hard inside", center: 1, hardness: 100, want: 1},
		{name: "outside radius", center: 3, hardness: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g testGraph
			n := g.add("mask", "SphereMask", map[string]any{"AttenuationRadius": 2, "HardnessPercent": tt.hardness}, "b")
			g.link(g.color("center", tt.center, 0, 0), n, "b")
			v, _ := evalNode(&g, n)
			assert.InDelta(t, tt.want, float32(v.(Scalar)), 1e-5)
		})
	}
}

func TestBumpOffset(t *testing.T) {
	var g testGraph
	n := g.add("bump", "BumpOffset", map[string]any{"ConstHeight": 1, "HeightRatio": 0.1})
	v, _ := evalNode(&g, n)
	require.IsType(t, Vector{}, v)
	got := v.(Vector)
	assert.Equal(t, 2, got.Len())
	assert.InDelta(t, math32.Sqrt(0.75)*0.05, got.At(0), 1e-6)
	assert.InDelta(t, 0, got.At(1), 1e-6)

	flat := g.add("flat", "BumpOffset", map[string]any{"ConstHeight": 0.5})
	v, _ = evalNode(&g, flat)
	assert.Equal(t, Vec2(0, 0), v, "reference plane height yields no offset")
}

func TestNoiseRange(t *testing.T) {
	var g testGraph
	a := g.add("a", "Noise", map[string]any{"OutputMin": 2, "OutputMax": 3, "Seed": 7}, "position")
	g.link(g.color("p1", 10.2, 3, 7), a, "position")
	b := g.add("b", "Noise", map[string]any{"OutputMin": 2, "OutputMax": 3, "Seed": 7}, "position")
	g.link(g.color("p2", 10.7, 3.5, 7.9), b, "position")

	va, _ := evalNode(&g, a)
	vb, _ := evalNode(&g, b)
	got := float32(va.(Scalar))
	assert.GreaterOrEqual(t, got, float32(2))
	assert.Less(t, got, float32(3))
	assert.Equal(t, va, vb, "positions in the same cell hash equally")
	again, _ := evalNode(&g, a)
	assert.Equal(t, va, again)
}

func TestDistance(t *testing.T) {
	var g testGraph
	n := g.add("d", "Distance", nil, "a", "b")
	g.link(g.color("a", 4, 0, 0), n, "a")
	g.link(g.color("b", 1, 4, 0), n, "b")
	v, _ := evalNode(&g, n)
	assert.InDelta(t, 5, float32(v.(Scalar)), 1e-6)

	origin := g.add("o", "Distance", nil, "a")
	g.link(g.color("c", 1, 2, 2), origin, "a")
	v, _ = evalNode(&g, origin)
	assert.InDelta(t, 3, float32(v.(Scalar)), 1e-6, "missing operand is the origin")
}

func TestIfSelects(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
		pins  []string
		want  Scalar
	}{
		{name: "greater", props: map[string]any{"ConstA": 2, "ConstB": 1}, pins: []string{"a>b", "a==b", "a<b"}, want: 1},
		{name: "less", props: map[string]any{"ConstA": 1, "ConstB": 2}, pins: []string{"a>b", "a==b", "a<b"}, want: 3},
		{name: "equal", props: map[string]any{"ConstA": 1, "ConstB": 1}, pins: []string{"a>b", "a==b", "a<b"}, want: 2},
		{name: "within threshold", props: map[string]any{"ConstA": 1.2, "ConstB": 1, "EqualsThreshold": 0.5}, pins: []string{"a>b", "a==b", "a<b"}, want: 2},
		{name: "equal without equals input", props: map[string]any{"ConstA": 1, "ConstB": 1}, pins: []string{"a>b", "a<b"}, want: 1},
	}
	values := map[string]float64{"a>b": 1, "a==b": 2, "a<b": 3}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g testGraph
			n := g.add("if", "If", tt.props, tt.pins...)
			for _, pin := range tt.pins {
				g.link(g.scalar("v"+pin, values[pin]), n, pin)
			}
			v, _ := evalNode(&g, n)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestStaticSwitch(t *testing.T) {
	build := func(props map[string]any, value *float64) (*testGraph, *Node) {
		g := &testGraph{}
		inputs := []string{"true", "false"}
		if value != nil {
			inputs = append(inputs, "value")
		}
		n := g.add("sw", "StaticSwitch", props, inputs...)
		g.link(g.scalar("t", 1), n, "true")
		g.link(g.scalar("f", 0), n, "false")
		if value != nil {
			g.link(g.scalar("val", *value), n, "value")
		}
		return g, n
	}
	one := 1.0
	g, n := build(nil, nil)
	v, _ := evalNode(g, n)
	assert.Equal(t, Scalar(1), v, "defaults to true")
	g, n = build(map[string]any{"DefaultValue": false}, nil)
	v, _ = evalNode(g, n)
	assert.Equal(t, Scalar(0), v)
	g, n = build(map[string]any{"DefaultValue": false}, &one)
	v, _ = evalNode(g, n)
	assert.Equal(t, Scalar(1), v, "value input overrides the default")
}

func TestComponentMask(t *testing.T) {
	tests := []struct {
		name  string
		input func(g *testGraph) *Node
		mask  map[string]any
		want  Value
	}{
		{
			name:  "vector channels in order",
			input: func(g *testGraph) *Node { return g.color("c", 0.1, 0.2, 0.3) },
			mask:  map[string]any{"B": true, "G": true},
			want:  Vec2(0.2, 0.3),
		},
		{
			name:  "single channel",
			input: func(g *testGraph) *Node { return g.color("c", 0.1, 0.2, 0.3) },
			mask:  map[string]any{"B": true},
			want:  Scalar(0.3),
		},
		{
			name:  "nothing selected passes through",
			input: func(g *testGraph) *Node { return g.color("c", 0.1, 0.2, 0.3) },
			mask:  nil,
			want:  Vec3(0.1, 0.2, 0.3),
		},
		{
			name:  "scalar broadcasts",
			input: func(g *testGraph) *Node { return g.scalar("s", 0.7) },
			mask:  map[string]any{"G": true},
			want:  Scalar(0.7),
		},
		{
			name:  "scalar over two channels",
			input: func(g *testGraph) *Node { return g.scalar("s", 0.7) },
			mask:  map[string]any{"R": true, "B": true},
			want:  Vec2(0.7, 0.7),
		},
		{
			name:  "texture channel tagged",
			input: func(g *testGraph) *Node { return g.add("tex", "TextureSample", nil) },
			mask:  map[string]any{"B": true},
			want:  TextureRef{ID: texture.CheckerboardID, Channel: texture.ChannelB},
		},
		{
			name:  "texture with several channels passes through",
			input: func(g *testGraph) *Node { return g.add("tex", "TextureSample", nil) },
			mask:  map[string]any{"R": true, "G": true},
			want:  TextureRef{ID: texture.CheckerboardID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g testGraph
			n := g.add("mask", "ComponentMask", tt.mask, "input")
			g.link(tt.input(&g), n, "input")
			v, _ := evalNode(&g, n)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestMetalnessHelper(t *testing.T) {
	var g testGraph
	n := g.add("m", "SubstrateMetalnessHelper", map[string]any{"Metallic": 0.5, "Specular": 0.5}, "basecolor")
	g.link(g.color("base", 1, 0.5, 0.25), n, "basecolor")
	v, _ := evalNode(&g, n)
	require.IsType(t, &BSDF{}, v)
	b := v.(*BSDF)
	assertVec3(t, ms3.Vec{X: 0.5, Y: 0.25, Z: 0.125}, b.Diffuse)
	assertVec3(t, ms3.Vec{X: 0.52, Y: 0.27, Z: 0.145}, b.F0)
	assertVec3(t, splat3(1), b.F90)
}

func TestVerticalLayering(t *testing.T) {
	var g testGraph
	top := g.add("top", "SubstrateSlabBSDF", nil, "diffusealbedo")
	g.link(g.color("red", 1, 0, 0), top, "diffusealbedo")
	bottom := g.add("bottom", "SubstrateSlabBSDF", nil, "diffusealbedo")
	g.link(g.color("blue", 0, 0, 1), bottom, "diffusealbedo")
	layer := g.add("layer", "SubstrateVerticalLayering", map[string]any{"Thickness": 0.25}, "top", "bottom")
	g.link(top, layer, "top")
	g.link(bottom, layer, "bottom")

	v, _ := evalNode(&g, layer)
	require.IsType(t, &BSDF{}, v)
	assertVec3(t, ms3.Vec{X: 0.25, Z: 0.75}, v.(*BSDF).Diffuse)

	mix := g.add("mix", "SubstrateHorizontalMixing", map[string]any{"Mix": 1}, "background", "foreground")
	g.link(bottom, mix, "background")
	g.link(top, mix, "foreground")
	v, _ = evalNode(&g, mix)
	assertVec3(t, ms3.Vec{X: 1}, v.(*BSDF).Diffuse)
}
