package viz

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSparkline(t *testing.T) {
	got := Sparkline([]float64{0, 1, math.NaN(), 2})
	if got != "▁▄ █" {
		t.Errorf("got %q", got)
	}
	if Sparkline([]float64{3, 3}) != "▁▁" {
		t.Error("flat series should sit at the bottom")
	}
}

func TestProgressBar(t *testing.T) {
	bar := ProgressBar(5, 10, 20)
	if n := strings.Count(bar, "█"); n != 10 {
		t.Errorf("got %d filled cells, want 10", n)
	}
	if n := utf8.RuneCountInString(ProgressBar(0, 0, 8)); n < 8 {
		t.Errorf("empty bar too short: %d", n)
	}
}
