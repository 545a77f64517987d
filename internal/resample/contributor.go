package resample

import "math"

// Contributor holds the per-output-pixel weights for one separable axis:
// the first contributing source index (Min), the count minus one
// (High), and integer Weights summing exactly to the table's precision.
type Contributor struct {
	Min     int32
	High    int32
	Weights []int32
}

// ContributorTable holds all contributors for one axis, indexed by
// output coordinate.
type ContributorTable []Contributor

// BuildContributors builds the per-axis contributor table mapping
// targetSize output samples onto a sourceSize source axis, starting at
// the (possibly fractional) sourceStart offset and spanning
// sourceFloatWidth source units (sourceSize is used when
// sourceFloatWidth is 0).
//
// Each output sample's center is projected into source space at
// (x+0.5)*scale-0.5, and every source index whose kernel argument falls
// inside the filter's support contributes kernel((index-center)/rr).
// The candidate window is widened by the filter radius, then clamped to
// the valid source range, and the in-range weights are renormalized to
// sum to precision: kernel mass that falls outside the source is
// dropped rather than folded into the edge weight.
func BuildContributors(filter Filter, radius float64, sourceSize, targetSize int, sourceStart, sourceFloatWidth float64, precision int32) ContributorTable {
	if radius == 0 {
		radius = DefaultRadius(filter)
	}
	if sourceFloatWidth == 0 {
		sourceFloatWidth = float64(sourceSize)
	}

	scale := sourceFloatWidth / float64(targetSize)

	table := make(ContributorTable, targetSize)

	if scale == 1 {
		for x := 0; x < targetSize; x++ {
			table[x] = Contributor{
				Min:     int32(x),
				High:    0,
				Weights: []int32{precision},
			}
		}
		return table
	}

	rr := radius
	support := radius
	if scale > 1 {
		rr = radius * scale
		support = rr
	}

	f := kernelFunc(filter)
	maxIndex := sourceSize - 1

	for x := 0; x < targetSize; x++ {
		center := (float64(x)+0.5)*scale - 0.5 + sourceStart

		rawMin := int(math.Ceil(center - support))
		rawMax := int(math.Floor(center + support))

		min := clampInt(rawMin, 0, maxIndex)
		mx := clampInt(rawMax, 0, maxIndex)
		if mx < min {
			mx = min
		}
		high := mx - min

		weights := make([]float64, high+1)
		var rawSum float64
		for si := min; si <= mx; si++ {
			w := f((float64(si) - center) / rr)
			weights[si-min] = w
			rawSum += w
		}
		if rawSum == 0 {
			weights[high/2] = 1
			rawSum = 1
		}

		iw := make([]int32, high+1)
		var sum int32
		for i, w := range weights {
			q := int32(math.Round(float64(precision) * w / rawSum))
			iw[i] = q
			sum += q
		}
		iw[high/2] += precision - sum

		table[x] = Contributor{Min: int32(min), High: int32(high), Weights: iw}
	}

	return table
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
