package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AnyUserName/zoomres/internal/resample"
)

func parseFilter(name string) (resample.Filter, error) {
	switch strings.ToLower(name) {
	case "box":
		return resample.FilterBox, nil
	case "linear":
		return resample.FilterLinear, nil
	case "bicubic":
		return resample.FilterBicubic, nil
	case "mine":
		return resample.FilterMine, nil
	case "lanczos":
		return resample.FilterLanczos, nil
	case "bspline":
		return resample.FilterBSpline, nil
	default:
		return 0, fmt.Errorf("unknown filter %q (want box, linear, bicubic, mine, lanczos, bspline)", name)
	}
}

func parseAlpha(name string) (resample.AlphaMode, error) {
	switch strings.ToLower(name) {
	case "independent":
		return resample.Independent, nil
	case "premultiply":
		return resample.PreMultiply, nil
	case "ignore":
		return resample.Ignore, nil
	default:
		return 0, fmt.Errorf("unknown alpha policy %q (want independent, premultiply, ignore)", name)
	}
}

// parseRect parses "left,top,right,bottom" into a FloatRect.
func parseRect(s string) (resample.FloatRect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return resample.FloatRect{}, fmt.Errorf("rect %q: want left,top,right,bottom", s)
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return resample.FloatRect{}, fmt.Errorf("rect %q: %w", s, err)
		}
		vals[i] = v
	}
	return resample.FloatRect{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]}, nil
}
