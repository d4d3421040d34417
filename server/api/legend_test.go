package api

import "testing"

func TestBandFor(t *testing.T) {
	testCases := []struct {
		fill     float64
		expected string
	}{
		{0, "0-30%"},
		{29.9, "0-30%"},
		{30, "30-60%"},
		{59, "30-60%"},
		{60, "60-90%"},
		{89.9, "60-90%"},
		{90, "90-100%"},
		{100, "90-100%"},
	}
	for _, tc := range testCases {
		if got := BandFor(tc.fill); got.Label != tc.expected {
			t.Errorf("BandFor(%v) = %q, expected %q", tc.fill, got.Label, tc.expected)
		}
	}
}

func TestLegendHasFourBands(t *testing.T) {
	legend := Legend()
	if len(legend) != 4 {
		t.Fatalf("legend has %d bands, expected 4", len(legend))
	}
	if legend[0].Color != "#0000ff" || legend[3].Color != "#ff0000" {
		t.Errorf("unexpected legend colors %v", legend)
	}
}
