package cmd

import (
	"testing"

	"github.com/AnyUserName/zoomres/internal/resample"
)

func TestParseFilter(t *testing.T) {
	cases := map[string]resample.Filter{
		"box": resample.FilterBox, "LINEAR": resample.FilterLinear,
		"bicubic": resample.FilterBicubic, "mine": resample.FilterMine,
		"lanczos": resample.FilterLanczos, "bspline": resample.FilterBSpline,
	}
	for name, want := range cases {
		got, err := parseFilter(name)
		if err != nil {
			t.Errorf("parseFilter(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("parseFilter(%q): got %v want %v", name, got, want)
		}
	}
	if _, err := parseFilter("nonsense"); err == nil {
		t.Error("expected error for unknown filter")
	}
}

func TestParseAlpha(t *testing.T) {
	cases := map[string]resample.AlphaMode{
		"independent": resample.Independent,
		"PreMultiply": resample.PreMultiply,
		"ignore":      resample.Ignore,
	}
	for name, want := range cases {
		got, err := parseAlpha(name)
		if err != nil {
			t.Errorf("parseAlpha(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("parseAlpha(%q): got %v want %v", name, got, want)
		}
	}
	if _, err := parseAlpha("nonsense"); err == nil {
		t.Error("expected error for unknown alpha policy")
	}
}

func TestParseRect(t *testing.T) {
	r, err := parseRect("1,2,3.5,4")
	if err != nil {
		t.Fatalf("parseRect: %v", err)
	}
	want := resample.FloatRect{Left: 1, Top: 2, Right: 3.5, Bottom: 4}
	if r != want {
		t.Errorf("got %+v want %+v", r, want)
	}

	if _, err := parseRect("1,2,3"); err == nil {
		t.Error("expected error for wrong field count")
	}
	if _, err := parseRect("a,b,c,d"); err == nil {
		t.Error("expected error for non-numeric fields")
	}
}
