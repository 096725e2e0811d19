package matgraph

// dispatch evaluates output pin out of node n.
func (e *Evaluator) dispatch(n *Node, out *Pin, vs visitSet) Value {
	kind := ParseKind(n.Kind)
	switch kind {
	case KindConstant, KindScalarParameter:
		return evalConstant(n)
	case KindConstant2Vector, KindConstant3Vector, KindConstant4Vector, KindVectorParameter:
		return evalVectorConstant(kind, n, out)
	case KindStaticBool:
		return Scalar(boolf(propBool(n, false, "Value", "DefaultValue")))
	case KindPi:
		return Scalar(pi * propFloatOr(n, 1, "Multiplier"))
	case KindTime:
		// Static preview: time is frozen.
		return Scalar(propFloatOr(n, 0, "Time"))

	case KindAdd, KindSubtract, KindMultiply, KindDivide, KindMin, KindMax, KindPower, KindFmod,
		KindDotProduct, KindCrossProduct, KindStep:
		return e.evalBinary(kind, n, vs)
	case KindClamp:
		return e.evalClamp(n, vs)
	case KindSaturate, KindOneMinus, KindAbs, KindFloor, KindCeil, KindFrac, KindSine, KindCosine,
		KindSquareRoot, KindNormalize, KindLength:
		return e.evalUnary(kind, n, vs)
	case KindSmoothStep:
		return e.evalSmoothStep(n, vs)
	case KindLerp:
		return e.evalLerp(n, vs)

	case KindTextureSample, KindTextureObject:
		return e.evalTextureSample(n, out, vs)
	case KindTextureCoordinate:
		return evalTextureCoordinate(n)
	case KindPanner, KindRotator:
		return e.evalUVPassthrough(n, vs)

	case KindFresnel:
		return e.evalFresnel(n, vs)
	case KindNoise:
		return e.evalNoise(n, vs)
	case KindDistance:
		return e.evalDistance(n, vs)
	case KindRotateAboutAxis:
		return e.evalRotateAboutAxis(n, vs)
	case KindSphereMask:
		return e.evalSphereMask(n, vs)
	case KindWorldPosition:
		return evalWorldPosition(n)
	case KindBumpOffset:
		return e.evalBumpOffset(n, vs)
	case KindIf:
		return e.evalIf(n, vs)
	case KindStaticSwitch:
		return e.evalStaticSwitch(n, vs)
	case KindReroute:
		return e.in(n, vs, "input", "in", "")
	case KindComponentMask:
		return e.evalComponentMask(n, vs)

	case KindDesaturation, KindRGBToHSV, KindHSVToRGB, KindHueShift, KindLinearToSRGB, KindSRGBToLinear:
		return e.evalColor(kind, n, vs)

	case KindMakeFloat2, KindMakeFloat3, KindMakeFloat4:
		return e.evalMakeFloat(kind, n, vs)
	case KindAppendVector:
		return e.evalAppend(n, vs)
	case KindBreakOutFloat2, KindBreakOutFloat3, KindBreakOutFloat4:
		return e.evalBreakOut(n, out, vs)

	case KindSlabBSDF:
		return e.evalSlab(n, vs)
	case KindVerticalLayer:
		return e.evalVerticalLayer(n, vs)
	case KindHorizontalMixing:
		return e.evalHorizontalMixing(n, vs)
	case KindMetalnessHelper:
		return e.evalMetalnessHelper(n, vs)
	case KindUnlitBSDF:
		return e.evalUnlit(n, vs)
	case KindConvertMaterialAttributes:
		return e.evalConvertMaterialAttributes(n, vs)

	case KindMaterialOutput:
		return nil
	case KindUnknown:
		return e.evalFallback(n)
	}
	// A kind without an evaluator is a programming error caught by tests.
	panic("matgraph: no evaluator for node kind " + kind.String())
}

// evalFallback reads conventional properties of unrecognized node kinds.
func (e *Evaluator) evalFallback(n *Node) Value {
	if c, ok := propColor(n, 3); ok {
		e.diagf(DiagUnknownKind, n, "unknown node kind %q, using its color properties", n.Kind)
		return c
	}
	if f, ok := propFloat(n, "Value"); ok {
		e.diagf(DiagUnknownKind, n, "unknown node kind %q, using its Value property", n.Kind)
		return Scalar(f)
	}
	e.diagf(DiagUnknownKind, n, "unknown node kind %q, using neutral gray", n.Kind)
	e.log.Warn("unknown material node kind", "node", n.ID, "kind", n.Kind)
	return Scalar(neutralGray)
}

func boolf(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
