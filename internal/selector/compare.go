package selector

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/panelflutter/internal/flutter"
)

var ErrTooFewResults = errors.New("selector: at least two methods must find flutter to compare")

type Confidence uint8

const (
	High Confidence = iota
	Medium
	Low
	VeryLow
)

func (c Confidence) String() string {
	switch c {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return "very low"
	}
}

// ConfidenceFor classes the largest deviation from the mean, in percent.
func ConfidenceFor(spread float64) Confidence {
	switch {
	case spread < 5:
		return High
	case spread < 15:
		return Medium
	case spread < 30:
		return Low
	default:
		return VeryLow
	}
}

type Entry struct {
	Method    Method
	Velocity  float64
	Frequency float64
	// Difference from the mean velocity, percent.
	Difference float64
}

type Comparison struct {
	Entries      []Entry
	Excluded     []Method // no flutter in range or incomplete
	Mean         float64
	Spread       float64 // largest Difference
	Confidence   Confidence
	Conservative Method // lowest flutter speed
}

// Compare summarizes flutter speeds found by different methods.
func Compare(results map[Method]*flutter.Result) (Comparison, error) {
	var c Comparison
	methods := make([]Method, 0, len(results))
	for m := range results {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(a, b int) bool { return methods[a] < methods[b] })

	sum := 0.0
	for _, m := range methods {
		r := results[m]
		if r == nil || !r.Found() {
			c.Excluded = append(c.Excluded, m)
			continue
		}
		c.Entries = append(c.Entries, Entry{Method: m, Velocity: r.Velocity, Frequency: r.Frequency})
		sum += r.Velocity
	}
	if len(c.Entries) < 2 {
		return c, ErrTooFewResults
	}

	c.Mean = sum / float64(len(c.Entries))
	lowest := math.Inf(1)
	for i := range c.Entries {
		e := &c.Entries[i]
		e.Difference = 100 * math.Abs(e.Velocity-c.Mean) / c.Mean
		c.Spread = max(c.Spread, e.Difference)
		if e.Velocity < lowest {
			lowest, c.Conservative = e.Velocity, e.Method
		}
	}
	c.Confidence = ConfidenceFor(c.Spread)
	return c, nil
}

func (c Comparison) String() string {
	var b strings.Builder
	for _, e := range c.Entries {
		fmt.Fprintf(&b, "%-9s %8.1f m/s %8.1f Hz %6.1f%%\n", e.Method, e.Velocity, e.Frequency, e.Difference)
	}
	fmt.Fprintf(&b, "confidence %s, most conservative %s", c.Confidence, c.Conservative)
	return b.String()
}
