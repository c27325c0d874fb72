package boundary

import (
	"fmt"
	"strings"
)

var purposes = map[string]Code{
	"general":         SSSS,
	"conservative":    CCCC,
	"critical":        CFFF,
	"realistic":       CSSS,
	"wing_panel":      CSSS,
	"control_surface": CCSS,
}

// Recommend maps an analysis purpose to a starting boundary condition.
func Recommend(purpose string) (Code, error) {
	c, ok := purposes[strings.ToLower(strings.TrimSpace(purpose))]
	if !ok {
		return SSSS, fmt.Errorf("boundary: unknown purpose %q", purpose)
	}
	return c, nil
}

// Advise returns human-readable cautions for c on a panel with the given
// length/width aspect ratio. It never fails for valid codes.
func Advise(c Code, aspect float64) ([]string, error) {
	e, err := Lookup(c)
	if err != nil {
		return nil, err
	}
	edges, _ := Edges(c)

	var notes []string
	free := 0
	for _, r := range edges {
		if r == Free {
			free++
		}
	}
	if c == FFFF {
		notes = append(notes, "FFFF has rigid-body modes and no positive-definite stiffness; use it for reference only")
	} else if free >= 2 {
		notes = append(notes, fmt.Sprintf("%s has %d free edges; expect low frequencies and slow convergence", e.Name, free))
	}
	if e.Tendency == High {
		notes = append(notes, fmt.Sprintf("%s has a high flutter tendency (stiffness factor %.2f)", e.Name, e.Stiffness))
	}
	if edges[Leading] == Free && aspect > 0 {
		notes = append(notes, "free leading edge faces the flow directly")
	}
	if aspect > 0 && (aspect > 5 || aspect < 0.2) && free > 0 {
		notes = append(notes, fmt.Sprintf("aspect ratio %.2f with free edges is outside the calibrated range", aspect))
	}
	return notes, nil
}
