// Package colorscore computes the scalar color metrics used to order gallery images.
package colorscore

import (
	"fmt"
	"image"
)

// Metric names a scoring function.
type Metric string

const (
	Red       Metric = "r"
	Green     Metric = "g"
	Blue      Metric = "b"
	Luminance Metric = "luminance"
)

// BT.709 luma weights.
const (
	weightR = 0.2126
	weightG = 0.7152
	weightB = 0.0722
)

// ParseMetric maps a request value to a Metric. Anything other than "r", "g" or "b"
// scores by luminance.
func ParseMetric(s string) Metric {
	switch Metric(s) {
	case Red, Green, Blue:
		return Metric(s)
	default:
		return Luminance
	}
}

// RGB holds per-channel means in [0, 255].
type RGB struct {
	R, G, B float64
}

// Luminance returns the BT.709 weighted sum of the channel means.
func (c RGB) Luminance() float64 {
	return weightR*c.R + weightG*c.G + weightB*c.B
}

// Score returns the value of m for the channel means.
func Score(m Metric, c RGB) float64 {
	switch m {
	case Red:
		return c.R
	case Green:
		return c.G
	case Blue:
		return c.B
	default:
		return c.Luminance()
	}
}

// SkipError marks an image that cannot be scored. Rankers log it and leave the
// image out instead of failing the request.
type SkipError struct {
	Reason string
	Err    error
}

func (e *SkipError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("skip image: %s: %v", e.Reason, e.Err)
	}
	return "skip image: " + e.Reason
}

func (e *SkipError) Unwrap() error { return e.Err }

// Means averages each channel over every pixel with equal weight. ok is false for an
// empty grid.
func Means(img *image.NRGBA) (means RGB, ok bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return RGB{}, false
	}

	var sr, sg, sb uint64
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			sr += uint64(row[i])
			sg += uint64(row[i+1])
			sb += uint64(row[i+2])
		}
	}
	n := float64(w) * float64(h)
	return RGB{R: float64(sr) / n, G: float64(sg) / n, B: float64(sb) / n}, true
}

// ScoreBytes decodes data and scores it by m. Failures come back as *SkipError.
func ScoreBytes(data []byte, m Metric) (float64, error) {
	img, err := Decode(data)
	if err != nil {
		return 0, &SkipError{Reason: "decode", Err: err}
	}
	means, ok := Means(img)
	if !ok {
		return 0, &SkipError{Reason: "empty pixel grid"}
	}
	return Score(m, means), nil
}
