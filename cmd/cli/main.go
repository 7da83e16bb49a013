package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"scfscan/adapters/channels"
	"scfscan/adapters/curveio"
	"scfscan/app"
	"scfscan/domain/core"
	"scfscan/domain/curve"
	"scfscan/domain/yukawa"
	"scfscan/internal"
	"scfscan/internal/analysis"
	"scfscan/internal/calibration"
	"scfscan/internal/config"
	"scfscan/internal/qrng"
	"scfscan/internal/report"
	"scfscan/ports"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "scfscan",
		Short: "Constraint-overlap scanner for light scalar mediators",
		Long: `scfscan maps fundamental scalar-mediator parameters through four
experimental constraint channels, labels the viable parameter island, and
stress-tests it against bound perturbations and digitization noise.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newLabelCmd(cfg),
		newCalibrateCmd(cfg),
		newPoolCmd(cfg),
		newRobustnessCmd(cfg),
		newJitterCmd(cfg),
		newEnvelopeCmd(cfg),
		newValidateCurveCmd(),
		newIngestCmd(cfg),
		newSweepCmd(cfg),
		newCompareCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// scanFlags carries the grid and model flags shared by label, robustness,
// jitter, and sweep. Flag defaults come from the environment config, so
// .env settings apply everywhere while flags stay the last word.
type scanFlags struct {
	cfg                *config.Config
	massMin, massMax   float64
	massPoints         int
	angleMin, angleMax float64
	anglePoints        int
	model              string
	unit               string
	breakingMass       float64
	portalCoupling     float64
	screeningFactor    float64
	screened           bool
	raw                bool
	curveFile          string
	curveSheet         string
}

func (f *scanFlags) register(cmd *cobra.Command, cfg *config.Config) {
	f.cfg = cfg
	cmd.Flags().Float64Var(&f.massMin, "mass-min", cfg.Grid.MassMin, "Lowest mediator mass on the grid")
	cmd.Flags().Float64Var(&f.massMax, "mass-max", cfg.Grid.MassMax, "Highest mediator mass on the grid")
	cmd.Flags().IntVar(&f.massPoints, "mass-points", cfg.Grid.MassPoints, "Mass axis resolution")
	cmd.Flags().Float64Var(&f.angleMin, "angle-min", cfg.Grid.AngleMin, "Lowest mixing angle on the grid")
	cmd.Flags().Float64Var(&f.angleMax, "angle-max", cfg.Grid.AngleMax, "Highest mixing angle on the grid")
	cmd.Flags().IntVar(&f.anglePoints, "angle-points", cfg.Grid.AnglePoints, "Angle axis resolution")
	cmd.Flags().StringVar(&f.model, "model", cfg.Grid.Model, "Mapping variant: simple, normalized, screened, scale_breaking, portal")
	cmd.Flags().StringVar(&f.unit, "unit", cfg.Grid.MassUnit, "Mass unit: ev, kev, mev, gev")
	cmd.Flags().Float64Var(&f.breakingMass, "breaking-mass", 0, "Symmetry-breaking mass mu_sb in GeV")
	cmd.Flags().Float64Var(&f.portalCoupling, "portal-coupling", 0, "Portal coupling g (portal variant)")
	cmd.Flags().Float64Var(&f.screeningFactor, "screening-factor", 0, "Screening factor Theta")
	cmd.Flags().BoolVar(&f.screened, "screened", false, "Apply screening in the normalized variant")
	cmd.Flags().BoolVar(&f.raw, "raw", !cfg.Grid.UseNormalized, "Compare raw slack instead of slack/bound")
	cmd.Flags().StringVar(&f.curveFile, "curve", cfg.Paths.CurveFile, "Fifth-force exclusion curve or envelope (.csv or .xlsx)")
	cmd.Flags().StringVar(&f.curveSheet, "curve-sheet", "", "Workbook sheet holding the curve (default Sheet1)")
}

func (f *scanFlags) request(cmd *cobra.Command) (app.ScanRequest, error) {
	bounds := f.cfg.Bounds
	set := channels.SetConfig{
		AtlasMu: channels.AtlasMuConfig{
			Mu:          bounds.AtlasMu,
			Sigma:       bounds.AtlasSigma,
			SignalScale: bounds.MuSignalScale,
		},
		HiggsInvisible: channels.HiggsInvisibleConfig{
			BrMax: bounds.BrMax,
		},
		FifthForce: channels.FifthForceConfig{
			AlphaMaxOverride: bounds.AlphaMax,
			LabScreening:     bounds.LabScreening,
		},
		QRNGTilt: channels.QRNGTiltConfig{
			EpsilonMax: bounds.EpsilonMax,
			TiltScale:  bounds.TiltScale,
		},
	}

	if f.curveFile != "" {
		c, err := loadCurve(cmd, f.curveFile, f.curveSheet)
		if err != nil {
			return app.ScanRequest{}, err
		}
		env, err := curve.MergeEnvelope([]curve.Curve{c}, 0)
		if err != nil {
			return app.ScanRequest{}, err
		}
		set.FifthForce.Envelope = env
	}

	return app.ScanRequest{
		MassMin: f.massMin, MassMax: f.massMax, MassPoints: f.massPoints,
		AngleMin: f.angleMin, AngleMax: f.angleMax, AnglePoints: f.anglePoints,
		Model: yukawa.Model(f.model),
		Options: yukawa.Options{
			Unit:            yukawa.Unit(f.unit),
			BreakingMass:    f.breakingMass,
			PortalCoupling:  f.portalCoupling,
			ScreeningFactor: f.screeningFactor,
			Screened:        f.screened,
		},
		Channels: set,
		RawSlack: f.raw,
	}, nil
}

func newLabelCmd(cfg *config.Config) *cobra.Command {
	var flags scanFlags
	var out string
	var withLabels bool

	cmd := &cobra.Command{
		Use:   "label",
		Short: "Label the parameter grid and summarize the viable island",
		Long: `Map the mass/angle grid to Yukawa parameters, evaluate every constraint
channel per cell, and emit the island summary JSON. An empty island emits null.

Example: scfscan label --model scale_breaking --breaking-mass 1000 --curve envelope.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}

			result, err := app.NewOverlapService(internal.DefaultLogger).Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			payload := interface{}(result.Summary)
			if withLabels {
				payload = result
			}
			if err := writeJSON(out, payload); err != nil {
				return err
			}
			if result.Summary == nil {
				return fmt.Errorf("no viable points on the scanned grid")
			}
			return nil
		},
	}

	flags.register(cmd, cfg)
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&withLabels, "with-labels", false, "Emit the full label grid, not just the island summary")

	return cmd
}

func newCalibrateCmd(cfg *config.Config) *cobra.Command {
	var method string
	var nBootstrap, window int
	var seed int64
	var poolMode, out, verifyPath string
	var skipSensitivity bool

	cmd := &cobra.Command{
		Use:   "calibrate [capture.csv...]",
		Short: "Derive the pooled epsilon_max bound from QRNG captures",
		Long: `Estimate the tilt bound per hardware source and pool across sources.
Without arguments the CAPTURE_FILE from the environment is used. With
--verify, the run is checked against a previously published document
instead of emitting a new one.

Example: scfscan calibrate anu.csv lfdr.csv --method bootstrap_95 --seed 42`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				if cfg.Paths.CaptureFile == "" {
					return fmt.Errorf("no capture files given and CAPTURE_FILE is unset")
				}
				paths = []string{cfg.Paths.CaptureFile}
			}
			sources := make([]ports.BitSource, len(paths))
			for i, path := range paths {
				sources[i] = &qrng.FileSource{Path: path}
			}

			req := app.CalibrationRequest{
				Method:          calibration.Method(method),
				NBootstrap:      nBootstrap,
				Seed:            seed,
				Window:          window,
				PoolMode:        poolMode,
				SkipSensitivity: skipSensitivity,
			}
			svc := app.NewCalibrationService(internal.DefaultLogger)

			if verifyPath != "" {
				prior, err := readCalibrationDocument(verifyPath)
				if err != nil {
					return err
				}
				if err := svc.VerifyAgainst(cmd.Context(), sources, prior, req); err != nil {
					if core.IsDeterminismError(err) {
						return fmt.Errorf("calibration does not reproduce %s: %w", verifyPath, err)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "calibration reproduces %s\n", verifyPath)
				return nil
			}

			doc, err := svc.Run(cmd.Context(), sources, req)
			if err != nil {
				return err
			}
			return writeJSON(out, doc)
		},
	}

	cmd.Flags().StringVar(&method, "method", cfg.Calibration.Method, "CI method: bootstrap_95, chi2_95, max_deviation")
	cmd.Flags().IntVar(&nBootstrap, "n-bootstrap", cfg.Calibration.NBootstrap, "Bootstrap resample count")
	cmd.Flags().Int64Var(&seed, "seed", cfg.Calibration.Seed, "Random seed for deterministic resampling")
	cmd.Flags().IntVar(&window, "window", cfg.Calibration.Window, "Block size for max_deviation")
	cmd.Flags().StringVar(&poolMode, "pool", cfg.Calibration.PoolMode, "Pooling mode: inverse_variance, max")
	cmd.Flags().BoolVar(&skipSensitivity, "skip-sensitivity", false, "Skip the sensitivity re-runs")
	cmd.Flags().StringVar(&verifyPath, "verify", "", "Check the run against this published calibration JSON")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")

	return cmd
}

func newPoolCmd(cfg *config.Config) *cobra.Command {
	var mode, out string

	cmd := &cobra.Command{
		Use:   "pool [records.json]",
		Short: "Pool per-source calibration records into one bound",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var records []calibration.Record
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parsing records %s: %w", args[0], err)
			}

			pooled, err := calibration.Pool(records, mode)
			if err != nil {
				return err
			}
			return writeJSON(out, pooled)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", cfg.Calibration.PoolMode, "Pooling mode: inverse_variance, max")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")

	return cmd
}

func newRobustnessCmd(cfg *config.Config) *cobra.Command {
	var flags scanFlags
	var scale float64
	var out string

	cmd := &cobra.Command{
		Use:   "robustness",
		Short: "Relabel the grid with every channel bound perturbed",
		Long: `Scale each channel bound up and down and check whether the dominant
channel survives. Verdict is robust, fragile, or empty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}

			rep, err := app.NewRobustnessService(internal.DefaultLogger).PerturbBounds(cmd.Context(), req, scale)
			if err != nil {
				return err
			}
			return writeJSON(out, rep)
		},
	}

	flags.register(cmd, cfg)
	cmd.Flags().Float64Var(&scale, "scale", analysis.DefaultBoundScale, "Fractional bound perturbation")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")

	return cmd
}

func newJitterCmd(cfg *config.Config) *cobra.Command {
	var flags scanFlags
	var trials int
	var sigma float64
	var seed int64
	var out string

	cmd := &cobra.Command{
		Use:   "jitter",
		Short: "Monte Carlo the island against envelope digitization noise",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.curveFile == "" {
				return fmt.Errorf("jitter requires --curve")
			}
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}

			env := req.Channels.FifthForce.Envelope
			result, err := app.NewRobustnessService(internal.DefaultLogger).JitterEnvelope(cmd.Context(), req, env, analysis.JitterConfig{
				Trials:     trials,
				SigmaLog10: sigma,
				Seed:       seed,
			})
			if err != nil {
				return err
			}
			return writeJSON(out, result)
		},
	}

	flags.register(cmd, cfg)
	cmd.Flags().IntVar(&trials, "trials", analysis.DefaultJitterTrials, "Monte Carlo trial count")
	cmd.Flags().Float64Var(&sigma, "sigma", analysis.DefaultJitterSigma, "Noise sigma in log10(alpha)")
	cmd.Flags().Int64Var(&seed, "seed", cfg.Calibration.Seed, "Random seed; trial t uses seed+t")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")

	return cmd
}

func newEnvelopeCmd(cfg *config.Config) *cobra.Command {
	var resolution int
	var sheet, out string

	cmd := &cobra.Command{
		Use:   "envelope [curve...]",
		Short: "Merge digitized exclusion curves into a single envelope CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			curves := make([]curve.Curve, 0, len(args))
			for _, path := range args {
				c, err := loadCurve(cmd, path, sheet)
				if err != nil {
					return err
				}
				curves = append(curves, c)
			}

			env, err := curve.MergeEnvelope(curves, resolution)
			if err != nil {
				return err
			}
			if err := curveio.WriteCSV(out, env); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d envelope points to %s\n", len(env), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&resolution, "resolution", curve.DefaultEnvelopeResolution, "Log-lambda bin count")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet for .xlsx inputs")
	cmd.Flags().StringVar(&out, "out", filepath.Join(cfg.Paths.OutputDir, "envelope.csv"), "Output envelope CSV")

	return cmd
}

func newValidateCurveCmd() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "validate-curve [curve]",
		Short: "Check a digitized exclusion curve for schema and digitization problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCurve(cmd, args[0], sheet)
			if err != nil {
				return err
			}

			rep := curve.Validate(c)
			if err := writeJSON("", rep); err != nil {
				return err
			}
			if !rep.OK {
				return fmt.Errorf("curve %s failed validation with %d errors", args[0], len(rep.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet for .xlsx inputs")

	return cmd
}

func newIngestCmd(cfg *config.Config) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "ingest [capture.csv]",
		Short: "Validate a QRNG capture and emit its provenance manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.Paths.CaptureFile
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no capture file given and CAPTURE_FILE is unset")
			}

			_, manifest, err := qrng.ReadCaptureFile(path)
			if err != nil {
				return err
			}
			return writeJSON(out, manifest)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")

	return cmd
}

func newSweepCmd(cfg *config.Config) *cobra.Command {
	var flags scanFlags
	var muMin, muMax float64
	var muPoints int
	var out string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Sweep the island against the symmetry-breaking mass",
		Long: `Run one labeling pass per breaking mass on a log-spaced axis and record
island presence, size, and dominant channel at each value.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}

			result, err := app.NewSweepService(internal.DefaultLogger).Run(cmd.Context(), app.SweepRequest{
				Scan:               req,
				BreakingMassMin:    muMin,
				BreakingMassMax:    muMax,
				BreakingMassPoints: muPoints,
			})
			if err != nil {
				return err
			}
			return writeJSON(out, result)
		},
	}

	flags.register(cmd, cfg)
	cmd.Flags().Float64Var(&muMin, "mu-min", app.DefaultBreakingMassMin, "Lowest breaking mass in GeV")
	cmd.Flags().Float64Var(&muMax, "mu-max", app.DefaultBreakingMassMax, "Highest breaking mass in GeV")
	cmd.Flags().IntVar(&muPoints, "mu-points", app.DefaultBreakingMassPoints, "Breaking-mass axis resolution")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")

	return cmd
}

func newCompareCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "compare [base.json] [other.json]",
		Short: "Diff two island summary documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := app.NewCompareService(internal.DefaultLogger)

			base, err := svc.LoadSummary(args[0])
			if err != nil {
				return err
			}
			other, err := svc.LoadSummary(args[1])
			if err != nil {
				return err
			}
			return writeJSON(out, svc.Compare(base, other))
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")

	return cmd
}

func newReportCmd() *cobra.Command {
	var robustnessPath, out string
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "report [calibration.json]",
		Short: "Render the calibration protocol document",
		Long: `Build the calibration protocol from a calibration document, optionally
appending a bound-perturbation section, as Markdown or HTML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readCalibrationDocument(args[0])
			if err != nil {
				return err
			}

			md := report.CalibrationProtocol(doc)
			if robustnessPath != "" {
				rdata, err := os.ReadFile(robustnessPath)
				if err != nil {
					return err
				}
				var rep analysis.RobustnessReport
				if err := json.Unmarshal(rdata, &rep); err != nil {
					return fmt.Errorf("parsing robustness report %s: %w", robustnessPath, err)
				}
				md += "\n" + report.RobustnessSection(&rep)
			}

			content := []byte(md)
			if asHTML {
				content = report.RenderHTML(md)
			}
			if out == "" {
				_, err = os.Stdout.Write(content)
				return err
			}
			return os.WriteFile(out, content, 0o644)
		},
	}

	cmd.Flags().StringVar(&robustnessPath, "robustness", "", "Robustness report JSON to append")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of Markdown")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")

	return cmd
}

// loadCurve dispatches on the file extension: workbooks go through the
// spreadsheet reader, everything else is treated as CSV.
func loadCurve(cmd *cobra.Command, path, sheet string) (curve.Curve, error) {
	var src ports.CurveSource
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		src = curveio.NewWorkbookFile(path, sheet)
	default:
		src = curveio.NewCSVFile(path)
	}
	return src.Load(cmd.Context())
}

func readCalibrationDocument(path string) (*calibration.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc calibration.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing calibration document %s: %w", path, err)
	}
	return &doc, nil
}

// writeJSON marshals indented JSON to the given file, or stdout when the
// path is empty.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
