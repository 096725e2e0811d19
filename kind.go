package matgraph

import (
	"strconv"
	"strings"
)

// Kind is the closed set of node kinds the evaluator understands.
type Kind uint8

const (
	KindUnknown Kind = iota

	// Constants and parameters.
	KindConstant
	KindConstant2Vector
	KindConstant3Vector
	KindConstant4Vector
	KindScalarParameter
	KindVectorParameter
	KindStaticBool
	KindPi
	KindTime

	// Arithmetic.
	KindAdd
	KindSubtract
	KindMultiply
	KindDivide
	KindMin
	KindMax
	KindPower
	KindClamp
	KindSaturate
	KindOneMinus
	KindAbs
	KindFloor
	KindCeil
	KindFrac
	KindSine
	KindCosine
	KindSquareRoot
	KindNormalize
	KindDotProduct
	KindCrossProduct
	KindLength
	KindStep
	KindSmoothStep
	KindFmod
	KindLerp

	// Texture sampling and coordinates.
	KindTextureSample
	KindTextureObject
	KindTextureCoordinate
	KindPanner
	KindRotator

	// Procedural and utility.
	KindFresnel
	KindNoise
	KindDistance
	KindRotateAboutAxis
	KindSphereMask
	KindWorldPosition
	KindBumpOffset
	KindIf
	KindStaticSwitch
	KindReroute
	KindComponentMask

	// Color.
	KindDesaturation
	KindRGBToHSV
	KindHSVToRGB
	KindHueShift
	KindLinearToSRGB
	KindSRGBToLinear

	// Vector construction and decomposition.
	KindMakeFloat2
	KindMakeFloat3
	KindMakeFloat4
	KindAppendVector
	KindBreakOutFloat2
	KindBreakOutFloat3
	KindBreakOutFloat4

	// BSDF composition.
	KindSlabBSDF
	KindVerticalLayer
	KindHorizontalMixing
	KindMetalnessHelper
	KindUnlitBSDF
	KindConvertMaterialAttributes

	// KindMaterialOutput is the designated output node kind. It produces no value.
	KindMaterialOutput

	lastKind
)

var kindNames = [lastKind]string{
	KindUnknown:                   "Unknown",
	KindConstant:                  "Constant",
	KindConstant2Vector:           "Constant2Vector",
	KindConstant3Vector:           "Constant3Vector",
	KindConstant4Vector:           "Constant4Vector",
	KindScalarParameter:           "ScalarParameter",
	KindVectorParameter:           "VectorParameter",
	KindStaticBool:                "StaticBool",
	KindPi:                        "Pi",
	KindTime:                      "Time",
	KindAdd:                       "Add",
	KindSubtract:                  "Subtract",
	KindMultiply:                  "Multiply",
	KindDivide:                    "Divide",
	KindMin:                       "Min",
	KindMax:                       "Max",
	KindPower:                     "Power",
	KindClamp:                     "Clamp",
	KindSaturate:                  "Saturate",
	KindOneMinus:                  "OneMinus",
	KindAbs:                       "Abs",
	KindFloor:                     "Floor",
	KindCeil:                      "Ceil",
	KindFrac:                      "Frac",
	KindSine:                      "Sine",
	KindCosine:                    "Cosine",
	KindSquareRoot:                "SquareRoot",
	KindNormalize:                 "Normalize",
	KindDotProduct:                "DotProduct",
	KindCrossProduct:              "CrossProduct",
	KindLength:                    "Length",
	KindStep:                      "Step",
	KindSmoothStep:                "SmoothStep",
	KindFmod:                      "Fmod",
	KindLerp:                      "LinearInterpolate",
	KindTextureSample:             "TextureSample",
	KindTextureObject:             "TextureObject",
	KindTextureCoordinate:         "TextureCoordinate",
	KindPanner:                    "Panner",
	KindRotator:                   "Rotator",
	KindFresnel:                   "Fresnel",
	KindNoise:                     "Noise",
	KindDistance:                  "Distance",
	KindRotateAboutAxis:           "RotateAboutAxis",
	KindSphereMask:                "SphereMask",
	KindWorldPosition:             "WorldPosition",
	KindBumpOffset:                "BumpOffset",
	KindIf:                        "If",
	KindStaticSwitch:              "StaticSwitch",
	KindReroute:                   "Reroute",
	KindComponentMask:             "ComponentMask",
	KindDesaturation:              "Desaturation",
	KindRGBToHSV:                  "RGBToHSV",
	KindHSVToRGB:                  "HSVToRGB",
	KindHueShift:                  "HueShift",
	KindLinearToSRGB:              "LinearToSRGB",
	KindSRGBToLinear:              "SRGBToLinear",
	KindMakeFloat2:                "MakeFloat2",
	KindMakeFloat3:                "MakeFloat3",
	KindMakeFloat4:                "MakeFloat4",
	KindAppendVector:              "AppendVector",
	KindBreakOutFloat2:            "BreakOutFloat2Components",
	KindBreakOutFloat3:            "BreakOutFloat3Components",
	KindBreakOutFloat4:            "BreakOutFloat4Components",
	KindSlabBSDF:                  "SubstrateSlabBSDF",
	KindVerticalLayer:             "SubstrateVerticalLayering",
	KindHorizontalMixing:          "SubstrateHorizontalMixing",
	KindMetalnessHelper:           "SubstrateMetalnessHelper",
	KindUnlitBSDF:                 "SubstrateUnlitBSDF",
	KindConvertMaterialAttributes: "SubstrateConvertMaterialAttributes",
	KindMaterialOutput:            "MaterialOutput",
}

// kindAliases maps additional authored names to kinds. Keys are normalized.
var kindAliases = map[string]Kind{
	"lerp":                      KindLerp,
	"mul":                       KindMultiply,
	"sub":                       KindSubtract,
	"div":                       KindDivide,
	"pow":                       KindPower,
	"sqrt":                      KindSquareRoot,
	"sin":                       KindSine,
	"cos":                       KindCosine,
	"dot":                       KindDotProduct,
	"cross":                     KindCrossProduct,
	"float":                     KindConstant,
	"scalar":                    KindConstant,
	"color":                     KindConstant3Vector,
	"vectorparametercolor":      KindVectorParameter,
	"staticboolparameter":       KindStaticBool,
	"staticswitchparameter":     KindStaticSwitch,
	"texturesampleparameter2d":  KindTextureSample,
	"textureobjectparameter":    KindTextureObject,
	"texcoord":                  KindTextureCoordinate,
	"uv":                        KindTextureCoordinate,
	"vectornoise":               KindNoise,
	"absoluteworldposition":     KindWorldPosition,
	"append":                    KindAppendVector,
	"makefloat":                 KindMakeFloat3,
	"breakoutfloat2":            KindBreakOutFloat2,
	"breakoutfloat3":            KindBreakOutFloat3,
	"breakoutfloat4":            KindBreakOutFloat4,
	"slabbsdf":                  KindSlabBSDF,
	"substrateslab":             KindSlabBSDF,
	"substrateverticallayer":    KindVerticalLayer,
	"verticallayering":          KindVerticalLayer,
	"horizontalmixing":          KindHorizontalMixing,
	"metalnesshelper":           KindMetalnessHelper,
	"unlitbsdf":                 KindUnlitBSDF,
	"convertmaterialattributes": KindConvertMaterialAttributes,
	"legacyconversion":          KindConvertMaterialAttributes,
	"mainmaterialnode":          KindMaterialOutput,
	"materialoutput":            KindMaterialOutput,
	"substratematerialoutput":   KindMaterialOutput,
	"result":                    KindMaterialOutput,
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames)+len(kindAliases))
	for k := KindUnknown + 1; k < lastKind; k++ {
		m[normalizeKind(kindNames[k])] = k
	}
	for name, k := range kindAliases {
		m[name] = k
	}
	return m
}()

func (k Kind) String() string {
	if k < lastKind {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind resolves an authored node kind name. Matching ignores case, spaces,
// underscores and a "MaterialExpression" prefix. Unrecognized names yield [KindUnknown].
func ParseKind(name string) Kind {
	return kindByName[normalizeKind(name)]
}

// Kinds returns all known kinds in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, lastKind-1)
	for k := KindUnknown + 1; k < lastKind; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func normalizeKind(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
	return strings.TrimPrefix(name, "materialexpression")
}
