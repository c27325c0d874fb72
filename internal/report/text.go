// Package report renders flutter results: text summaries, terminal plots,
// HTML and PNG charts, and CSV, JSON and XLSX exports.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/san-kum/panelflutter/internal/flutter"
	"github.com/san-kum/panelflutter/internal/modal"
)

// Summary writes the flutter answer, the structural modes and, when
// margin is non-nil, the safety margin.
func Summary(w io.Writer, modes *modal.Result, res *flutter.Result, margin *flutter.Margin) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "backend\t%s\n", res.Backend)
	fmt.Fprintf(tw, "flow\t%s\n", res.Flow)
	fmt.Fprintf(tw, "result\t%s\n", res)
	if res.Found() {
		fmt.Fprintf(tw, "flutter speed\t%.2f m/s\n", res.Velocity)
		fmt.Fprintf(tw, "flutter frequency\t%.2f Hz\n", res.Frequency)
		fmt.Fprintf(tw, "critical mode\t%d\n", res.Mode+1)
	}
	if margin != nil {
		fmt.Fprintf(tw, "operating speed\t%.1f m/s\n", margin.Operating)
		fmt.Fprintf(tw, "margin\t%s\n", margin)
	}
	if n := len(res.Errors()); n > 0 {
		fmt.Fprintf(tw, "failed samples\t%d of %d\n", n, len(res.Points))
	}

	if modes != nil {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "MODE\tFREQ (Hz)\tOMEGA (rad/s)")
		for i := 0; i < modes.Len(); i++ {
			m := modes.Mode(i)
			fmt.Fprintf(tw, "%d\t%.2f\t%.1f\n", i+1, m.Hz(), m.Omega)
		}
	}
	return tw.Flush()
}

// Points writes the V-g table, one row per sample and mode.
func Points(w io.Writer, res *flutter.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "V (m/s)\tMODE\tFREQ (Hz)\tDAMPING\tCONVERGED")
	for _, p := range res.Points {
		for m, r := range p.Roots {
			fmt.Fprintf(tw, "%.1f\t%d\t%.2f\t%+.4f\t%v\n", p.Velocity, m+1, r.Frequency, r.Damping, r.Converged)
		}
	}
	return tw.Flush()
}
