package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/panelflutter/internal/boundary"
	"github.com/san-kum/panelflutter/internal/config"
	"github.com/san-kum/panelflutter/internal/experiment"
	"github.com/san-kum/panelflutter/internal/flutter"
	"github.com/san-kum/panelflutter/internal/report"
	"github.com/san-kum/panelflutter/internal/selector"
	"github.com/san-kum/panelflutter/internal/storage"
	"github.com/san-kum/panelflutter/internal/tui"
	"github.com/san-kum/panelflutter/internal/viz"
)

var (
	dataDir string
	verbose bool

	configFile string
	preset     string

	mach      float64
	altitude  float64
	vmin      float64
	vmax      float64
	points    int
	bc        string
	method    string
	modes     int
	thickness float64
	workers   int

	save      bool
	live      bool
	showPlot  bool
	operating float64

	plotKind string
	output   string

	purpose  string
	speed    bool
	accurate bool
	detailed bool

	methods []string
	params  []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flutter",
		Short: "panel flutter analysis",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
			if verbose {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".panelflutter", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a flutter analysis",
		Args:  cobra.NoArgs,
		RunE:  runAnalysis,
	}
	analysisFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", false, "store the run under the data directory")
	runCmd.Flags().BoolVar(&live, "live", false, "show the sweep live")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "print the V-g diagram")
	runCmd.Flags().Float64Var(&operating, "operating", 0, "operating speed for the flutter margin (m/s)")

	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "solve and list the structural modes",
		Args:  cobra.NoArgs,
		RunE:  showModes,
	}
	analysisFlags(modesCmd)

	bcCmd := &cobra.Command{
		Use:   "bc [code]",
		Short: "list boundary conditions or describe one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showBoundary,
	}
	bcCmd.Flags().StringVar(&purpose, "purpose", "", "recommend a condition for a purpose (general, conservative, critical, realistic, wing_panel, control_surface)")

	presetsCmd := &cobra.Command{
		Use:   "presets [group]",
		Short: "list built-in configurations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	recommendCmd := &cobra.Command{
		Use:   "recommend",
		Short: "recommend an aerodynamic method",
		Args:  cobra.NoArgs,
		RunE:  recommendMethod,
	}
	analysisFlags(recommendCmd)
	recommendCmd.Flags().BoolVar(&speed, "fast", false, "prefer speed")
	recommendCmd.Flags().BoolVar(&accurate, "accurate", false, "prefer accuracy")
	recommendCmd.Flags().BoolVar(&detailed, "detailed", false, "detailed design rather than preliminary")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare aerodynamic methods on one configuration",
		Args:  cobra.NoArgs,
		RunE:  compareMethods,
	}
	analysisFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&methods, "methods", nil, "methods to compare (default: the regime method and external)")

	studyCmd := &cobra.Command{
		Use:     "study",
		Short:   "run a parametric grid study",
		Example: "  flutter study --preset aluminum/reference --param thickness=1.5,2,3 --param altitude=0,10000",
		Args:    cobra.NoArgs,
		RunE:    runStudy,
	}
	analysisFlags(studyCmd)
	studyCmd.Flags().StringArrayVar(&params, "param", nil, "parameter grid, name=v1,v2,...")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotKind, "kind", "vg", "vg or vf")

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "write an HTML or PNG chart of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVarP(&output, "output", "o", "", "output file (.html or .png)")
	chartCmd.Flags().StringVar(&plotKind, "kind", "vg", "vg or vf (png only)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export V-f and V-g curves to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportXLSXCmd := &cobra.Command{
		Use:   "export-xlsx [run_id]",
		Short: "export a run to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  exportXLSX,
	}
	for _, c := range []*cobra.Command{exportCSVCmd, exportJSONCmd, exportXLSXCmd} {
		c.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout, or <run_id>.xlsx)")
	}

	rootCmd.AddCommand(runCmd, modesCmd, bcCmd, presetsCmd, recommendCmd, compareCmd, studyCmd,
		listCmd, showCmd, plotCmd, chartCmd, exportCSVCmd, exportJSONCmd, exportXLSXCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.Unstable.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func analysisFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset, group/name")
	cmd.Flags().Float64Var(&mach, "mach", config.DefaultMach, "Mach number")
	cmd.Flags().Float64Var(&altitude, "altitude", config.DefaultAltitude, "altitude (m)")
	cmd.Flags().Float64Var(&vmin, "vmin", config.DefaultVMin, "lowest sweep velocity (m/s)")
	cmd.Flags().Float64Var(&vmax, "vmax", config.DefaultVMax, "highest sweep velocity (m/s)")
	cmd.Flags().IntVar(&points, "points", config.DefaultPoints, "velocity samples")
	cmd.Flags().StringVar(&bc, "bc", "SSSS", "boundary condition ("+strings.Join(boundary.Names(), ", ")+")")
	cmd.Flags().StringVar(&method, "method", "auto", "aerodynamic method (auto, piston, dlm, external)")
	cmd.Flags().IntVar(&modes, "modes", 0, "structural modes")
	cmd.Flags().Float64Var(&thickness, "thickness", config.DefaultThickness, "isotropic thickness (mm)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent samples (0 uses every CPU)")
}

// loadConfig applies the preset, then the config file, then any flag the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		group, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be group/name, got %q", preset)
		}
		cfg = config.GetPreset(group, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(group))
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("mach") {
		cfg.Flow.Mach = mach
	}
	if flags.Changed("altitude") {
		cfg.Flow.Altitude = altitude
	}
	if flags.Changed("vmin") {
		cfg.Flow.VelocityMin = vmin
	}
	if flags.Changed("vmax") {
		cfg.Flow.VelocityMax = vmax
	}
	if flags.Changed("points") {
		cfg.Flow.Points = points
	}
	if flags.Changed("bc") {
		code, err := boundary.Parse(bc)
		if err != nil {
			return nil, err
		}
		cfg.Boundary = code
	}
	if flags.Changed("method") {
		m, err := selector.ParseMethod(method)
		if err != nil {
			return nil, err
		}
		cfg.Solver.Method = m
	}
	if flags.Changed("modes") {
		cfg.Solver.Modes = modes
	}
	if flags.Changed("thickness") {
		if strings.EqualFold(cfg.Material.Type, "laminate") {
			return nil, errors.New("--thickness applies to isotropic panels only")
		}
		cfg.Material.Thickness = thickness
	}
	if flags.Changed("workers") {
		cfg.Engine.Workers = workers
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	a := experiment.New(cfg)
	var out *experiment.Outcome
	if live {
		out, err = tui.Run(ctx, a)
	} else {
		out, err = a.Run(ctx)
	}
	if err != nil && out == nil {
		return err
	}
	if err != nil {
		fmt.Println(viz.Warning.Render(err.Error()))
	}

	for _, w := range out.Warnings {
		fmt.Println(viz.Warning.Render("warning: ") + w)
	}
	fmt.Println(viz.Title.Render("flutter analysis") + "  " + viz.Subtle.Render(fmt.Sprintf("%s, %s, %.2fs", out.Selection.Method, cfg.Boundary, out.Elapsed.Seconds())))
	fmt.Println(viz.Status(out.Result))
	fmt.Println()

	var margin *flutter.Margin
	if operating > 0 {
		m, err := flutter.ComputeMargin(out.Result, operating)
		if err != nil {
			return err
		}
		margin = &m
	}
	if err := report.Summary(os.Stdout, out.Modes, out.Result, margin); err != nil {
		return err
	}
	if margin != nil {
		fmt.Println("\nrating: " + viz.Rating(margin.Rating))
	}

	if showPlot {
		if g := report.ASCII(out.Result, report.Damping); g != "" {
			fmt.Println()
			fmt.Println(g)
		}
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(cfg, out.Result, out.Warnings)
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		fmt.Printf("\nsaved: %s\n", viz.Value.Render(id))
	}
	return err
}

func showModes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	res, warnings, err := experiment.New(cfg).Modes()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Println(viz.Warning.Render("warning: ") + w)
	}
	fmt.Println(viz.Title.Render(res.String()))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tFREQ (Hz)\tOMEGA (rad/s)")
	for i := 0; i < res.Len(); i++ {
		m := res.Mode(i)
		fmt.Fprintf(w, "%d\t%.2f\t%.1f\n", i+1, m.Hz(), m.Omega)
	}
	return w.Flush()
}

func showBoundary(cmd *cobra.Command, args []string) error {
	if purpose != "" {
		c, err := boundary.Recommend(purpose)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", purpose, viz.Value.Render(c.String()))
		return nil
	}

	if len(args) == 1 {
		c, err := boundary.Parse(args[0])
		if err != nil {
			return err
		}
		e, _ := boundary.Lookup(c)
		fmt.Println(viz.Title.Render(e.Name) + "  " + e.Description)
		fmt.Printf("stiffness factor %.3f, frequency factor %.3f, flutter tendency %s\n", e.Stiffness, e.Frequency, e.Tendency)
		notes, _ := boundary.Advise(c, 0)
		for _, n := range notes {
			fmt.Println(viz.Warning.Render("note: ") + n)
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tSTIFFNESS\tFREQUENCY\tTENDENCY\tDESCRIPTION")
	for _, c := range boundary.Codes() {
		e, _ := boundary.Lookup(c)
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%s\t%s\n", e.Name, e.Stiffness, e.Frequency, e.Tendency, e.Description)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	groups := config.ListGroups()
	if len(args) == 1 {
		groups = []string{args[0]}
	}
	for _, g := range groups {
		presets := config.ListPresets(g)
		if len(presets) == 0 {
			fmt.Printf("no presets in group: %s\n", g)
			continue
		}
		fmt.Println(viz.Title.Render(g))
		for _, p := range presets {
			cfg := config.GetPreset(g, p)
			fmt.Printf("  %-16s %s\n", p, viz.Subtle.Render(fmt.Sprintf("%gx%g mm, %s, %s", cfg.Geometry.Length, cfg.Geometry.Width, cfg.Boundary, cfg.Flow)))
		}
	}
	return nil
}

func recommendMethod(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sel := selector.New(experiment.NewRegistry(cfg.Solver))
	rec, err := sel.Recommend(cfg.Flow, cfg.Geometry, cfg.Material.Thickness, selector.Priorities{
		Speed:    speed,
		Accuracy: accurate,
		Detailed: detailed,
	})
	if err != nil {
		return err
	}
	fmt.Println(viz.Title.Render("recommended: ") + viz.Value.Render(rec.String()))
	for _, r := range rec.Reasons {
		fmt.Println("  " + r)
	}
	if len(rec.Alternatives) > 0 {
		fmt.Printf("alternatives: %v\n", rec.Alternatives)
	}
	return nil
}

func compareMethods(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	an := experiment.New(cfg)
	var ms []selector.Method
	for _, s := range methods {
		m, err := selector.ParseMethod(s)
		if err != nil {
			return err
		}
		ms = append(ms, m)
	}
	if len(ms) == 0 {
		if ms, err = an.DefaultMethods(); err != nil {
			return err
		}
	}

	ctx, stop := signalContext()
	defer stop()
	results, cmp, err := an.Compare(ctx, ms)
	for _, m := range sortedKeys(results) {
		log.WithFields(log.Fields{"method": m, "status": results[m].Status}).Debug("Method finished")
	}
	if errors.Is(err, selector.ErrTooFewResults) {
		for _, m := range sortedKeys(results) {
			fmt.Printf("%-9s %s\n", m, viz.Status(results[m]))
		}
		return err
	}
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("method comparison"))
	fmt.Println(cmp)
	return nil
}
