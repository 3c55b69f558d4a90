package heatmap

import (
	"fmt"
	"math"
)

// BlendMode selects how a layer combines with the pixels beneath it.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendScreen
	BlendLighten
	BlendAdd
	BlendColorDodge
)

var blendNames = map[BlendMode]string{
	BlendNormal:     "normal",
	BlendScreen:     "screen",
	BlendLighten:    "lighten",
	BlendAdd:        "add",
	BlendColorDodge: "color-dodge",
}

func (m BlendMode) String() string {
	if n, ok := blendNames[m]; ok {
		return n
	}
	return fmt.Sprintf("BlendMode(%d)", uint8(m))
}

// ParseBlendMode accepts the names printed by String.
func ParseBlendMode(s string) (BlendMode, error) {
	for m, n := range blendNames {
		if n == s {
			return m, nil
		}
	}
	return BlendNormal, fmt.Errorf("%w: blend mode %q", ErrUnknownOption, s)
}

// channelFunc mixes a backdrop channel cb with a source channel cs, both
// straight (not premultiplied) and in [0, 1].
type channelFunc func(cb, cs float64) float64

func (m BlendMode) channel() channelFunc {
	switch m {
	case BlendScreen:
		return func(cb, cs float64) float64 { return cb + cs - cb*cs }
	case BlendLighten:
		return math.Max
	case BlendAdd:
		return func(cb, cs float64) float64 { return math.Min(1, cb+cs) }
	case BlendColorDodge:
		return colorDodge
	default:
		return func(_, cs float64) float64 { return cs }
	}
}

func colorDodge(cb, cs float64) float64 {
	if cb == 0 {
		return 0
	}
	if cs >= 1 {
		return 1
	}
	return math.Min(1, cb/(1-cs))
}

// blendPixel composites premultiplied src over premultiplied dst in place
// using the separable blend formula with source-over compositing. opacity
// scales the source alpha.
func blendPixel(dst, src []uint8, f channelFunc, opacity float64) {
	as := float64(src[3]) / 255 * opacity
	if as <= 0 {
		return
	}
	ab := float64(dst[3]) / 255
	srcA := float64(src[3]) / 255
	for i := 0; i < 3; i++ {
		cs := float64(src[i]) / 255 / srcA
		db := float64(dst[i]) / 255
		var cb float64
		if ab > 0 {
			cb = db / ab
		}
		mixed := (1-ab)*cs + ab*f(math.Min(cb, 1), math.Min(cs, 1))
		dst[i] = unit(as*mixed + (1-as)*db)
	}
	dst[3] = unit(as + ab*(1-as))
}

// unit converts [0, 1] to a byte with rounding and clamping.
func unit(v float64) uint8 {
	v = v*255 + 0.5
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v)
}
