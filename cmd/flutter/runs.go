package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/panelflutter/internal/report"
	"github.com/san-kum/panelflutter/internal/storage"
	"github.com/san-kum/panelflutter/internal/study"
	"github.com/san-kum/panelflutter/internal/viz"
)

func runStudy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(params) == 0 {
		return fmt.Errorf("at least one --param is required (available: %v)", study.Parameters())
	}
	var names []string
	var ranges [][]float64
	for _, p := range params {
		name, values, err := study.ParseParam(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	g, err := study.NewGridSearch(cfg, names, ranges)
	if err != nil {
		return err
	}
	log.WithField("cases", g.Size()).Info("Starting study")

	ctx, stop := signalContext()
	defer stop()
	cases, runErr := g.Run(ctx)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\tRESULT")
	for _, c := range cases {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", c.Params[n])
		}
		switch {
		case c.Err != nil:
			fmt.Fprintf(w, "error: %v\n", c.Err)
		default:
			fmt.Fprintf(w, "%s\n", c.Result)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if c, ok := study.Critical(cases); ok {
		fmt.Printf("\ncritical case: %v, %s\n", c.Params, viz.Unstable.Render(fmt.Sprintf("%.1f m/s", c.Result.Velocity)))
	}
	return runErr
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tBACKEND\tBC\tMACH\tSTATUS\tV (m/s)\tF (Hz)")

	for _, run := range runs {
		v, f := "-", "-"
		if run.Velocity > 0 {
			v, f = fmt.Sprintf("%.1f", run.Velocity), fmt.Sprintf("%.1f", run.Frequency)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\t%s\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Backend,
			run.Boundary,
			run.Mach,
			run.Status,
			v,
			f,
		)
	}

	return w.Flush()
}

func loadRun(id string) (*storage.Run, error) {
	return storage.New(dataDir).Load(id)
}

func showRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.Title.Render(run.Meta.ID) + "  " + viz.Subtle.Render(run.Meta.Timestamp.Format("2006-01-02 15:04:05")))
	fmt.Println(viz.Status(run.Result))
	for _, w := range run.Meta.Warnings {
		fmt.Println(viz.Warning.Render("warning: ") + w)
	}
	fmt.Println()
	if err := report.Summary(os.Stdout, nil, run.Result, nil); err != nil {
		return err
	}
	fmt.Println()
	return report.Points(os.Stdout, run.Result)
}

func plotRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	k, err := report.ParseKind(plotKind)
	if err != nil {
		return err
	}
	graph := report.ASCII(run.Result, k)
	if graph == "" {
		return fmt.Errorf("no data to plot")
	}
	fmt.Println(graph)
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := output
	if path == "" {
		path = run.Meta.ID + ".html"
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html":
		err = report.HTMLFile(path, run.Meta.Name, run.Result)
	case ".png":
		k, kerr := report.ParseKind(plotKind)
		if kerr != nil {
			return kerr
		}
		err = report.PNG(path, run.Result, k)
	default:
		return fmt.Errorf("unsupported chart format: %s", path)
	}
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// writeOutput runs write against --output, or stdout when unset.
func writeOutput(write func(io.Writer) error) error {
	if output == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(run.Result.Points) == 0 {
		return fmt.Errorf("no data to export")
	}
	return writeOutput(func(w io.Writer) error { return report.CSV(w, run.Result) })
}

func exportJSON(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return writeOutput(func(w io.Writer) error { return report.JSON(w, run.Meta.Name, run.Result) })
}

func exportXLSX(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := output
	if path == "" {
		path = run.Meta.ID + ".xlsx"
	}
	if err := report.XLSX(path, run.Result); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func sortedKeys[K ~uint8, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
