package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	ffmpeg "github.com/linuxmatters/ffmpeg-statigo"
	"github.com/linuxmatters/subsonic/internal/audio"
	"github.com/linuxmatters/subsonic/internal/cli"
	"github.com/linuxmatters/subsonic/internal/export"
	"github.com/linuxmatters/subsonic/internal/logging"
	"github.com/linuxmatters/subsonic/internal/mains"
	"github.com/linuxmatters/subsonic/internal/processor"
	"github.com/linuxmatters/subsonic/internal/ui"
	"go.uber.org/zap"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version   bool     `short:"v" help:"Show version information"`
	Lower     float64  `help:"Lower edge of the band in Hz" default:"20" env:"SUBSONIC_LOWER"`
	Upper     float64  `help:"Upper edge of the band in Hz" default:"150" env:"SUBSONIC_UPPER"`
	Scale     float64  `help:"Multiplier applied to normalized energy" default:"1e6" env:"SUBSONIC_SCALE"`
	ChunkSize int      `name:"chunk-size" help:"Mono samples per FFT chunk" default:"16384" env:"SUBSONIC_CHUNK_SIZE"`
	Workers   int      `help:"Chunks transformed concurrently" default:"1" env:"SUBSONIC_WORKERS"`
	CSV       string   `name:"csv" type:"path" placeholder:"path" help:"Export ranked results as CSV" env:"SUBSONIC_CSV"`
	Report    string   `type:"path" placeholder:"path" help:"Write a detailed batch report" env:"SUBSONIC_REPORT"`
	Logs      bool     `help:"Write a structured debug log to subsonic-debug.log" env:"SUBSONIC_LOGS"`
	Mains     int      `help:"Mains frequency for the hum warning: 50, 60 or 0 to detect" default:"0" env:"SUBSONIC_MAINS"`
	Plain     bool     `help:"Print line-oriented progress instead of the interactive UI" env:"SUBSONIC_PLAIN"`
	Files     []string `arg:"" name:"files" help:"Audio files to analyse" type:"existingfile" optional:""`
}

// analysisConfig maps the flags onto the processor settings
func (c *CLI) analysisConfig() processor.Config {
	return processor.Config{
		Range:       processor.FrequencyRange{LowerHz: c.Lower, UpperHz: c.Upper},
		ScaleFactor: c.Scale,
		ChunkSize:   c.ChunkSize,
		Workers:     c.Workers,
	}
}

// Validate is called by kong after parsing
func (c *CLI) Validate() error {
	if c.Mains != 0 && c.Mains != 50 && c.Mains != 60 {
		return fmt.Errorf("--mains must be 50, 60 or 0, got %d", c.Mains)
	}
	return c.analysisConfig().Validate()
}

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is normal; flags and the real environment still apply
	_ = godotenv.Load()

	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("subsonic"),
		kong.Description("Rank audio tracks by low-frequency energy"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		return 0
	}

	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		_ = ctx.PrintUsage(false)
		return 1
	}

	// Keep the terminal clean while decoding
	ffmpeg.AVLogSetLevel(ffmpeg.AVLogError)

	logger, syncLog, err := logging.NewLogger(cliArgs.Logs, logging.DefaultLogFile)
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}
	defer syncLog()

	tracks := make([]processor.Track, 0, len(cliArgs.Files))
	for _, path := range cliArgs.Files {
		track, err := processor.NewTrack(path)
		if err != nil {
			cli.PrintError(fmt.Sprintf("Cannot read %s: %v", path, err))
			return 1
		}
		tracks = append(tracks, track)
	}

	cfg := cliArgs.analysisConfig()
	mainsHz := mains.Resolve(cliArgs.Mains)
	logger.Infow("starting batch",
		"tracks", len(tracks),
		"band", cfg.Range.String(),
		"scale", cfg.ScaleFactor,
		"chunk_size", cfg.ChunkSize,
		"workers", cfg.Workers,
		"mains_hz", mainsHz,
	)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		cfg:     cfg,
		tracks:  tracks,
		mainsHz: mainsHz,
		csvPath: cliArgs.CSV,
		logger:  logger,
	}

	start := time.Now()
	var outcome batchOutcome
	if cliArgs.Plain {
		outcome = a.runPlain(runCtx)
	} else {
		outcome, err = a.runTUI(runCtx)
		if err != nil {
			cli.PrintError(fmt.Sprintf("UI error: %v", err))
			return 1
		}
		if errors.Is(outcome.runErr, context.Canceled) {
			cli.PrintWarning("stopped early, remaining tracks were skipped")
		}
	}

	if cliArgs.Report != "" {
		reportData := logging.ReportData{
			StartTime: start,
			EndTime:   time.Now(),
			Config:    cfg,
			Batch:     outcome.batch,
			MainsHz:   mainsHz,
		}
		if err := logging.GenerateReport(cliArgs.Report, reportData); err != nil {
			cli.PrintError(err.Error())
			return 1
		}
	}

	return exitStatus(outcome)
}

// batchOutcome is what a front end hands back once the batch has ended
type batchOutcome struct {
	batch     *processor.BatchResult
	runErr    error // non-nil when the batch stopped before the last track
	exportErr error
}

// exitStatus is 0 only when every track was analysed and the export, if any,
// was written
func exitStatus(o batchOutcome) int {
	if o.batch == nil || o.runErr != nil || o.exportErr != nil || len(o.batch.Failures) > 0 {
		return 1
	}
	return 0
}

// app holds what both front ends need to drive a batch
type app struct {
	cfg     processor.Config
	tracks  []processor.Track
	mainsHz int
	csvPath string
	logger  *zap.SugaredLogger
}

func (a *app) newPipeline(reporter processor.Reporter) *processor.Pipeline {
	return processor.NewPipeline(a.cfg, audio.NewDecoder(), reporter, processor.WithLogger(a.logger))
}

// runBatch analyses every track and exports the history when asked
func (a *app) runBatch(ctx context.Context, pipeline *processor.Pipeline, obs processor.Observer) batchOutcome {
	batch, runErr := pipeline.Run(ctx, a.tracks, obs)
	out := batchOutcome{batch: batch, runErr: runErr}
	if runErr != nil {
		a.logger.Warnw("batch stopped early", "error", runErr, "completed", len(batch.Results))
	}

	if a.csvPath == "" {
		return out
	}
	if err := export.SaveCSV(a.csvPath, pipeline.History().Results()); err != nil {
		a.logger.Errorw("csv export failed", "path", a.csvPath, "error", err)
		out.exportErr = err
		return out
	}
	a.logger.Infow("csv exported", "path", a.csvPath, "rows", pipeline.History().Len())
	return out
}

func (a *app) runTUI(ctx context.Context) (batchOutcome, error) {
	model := ui.NewModel(a.tracks, a.cfg.Range, a.mainsHz, a.logger)
	p := tea.NewProgram(model)

	reporter := processor.ReporterFunc(func(id processor.TrackID, percent int) {
		p.Send(ui.ProgressMsg{ID: id, Percent: percent})
	})
	pipeline := a.newPipeline(reporter)

	// Quitting the UI stops the batch before the next track
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan batchOutcome, 1)
	go func() {
		out := a.runBatch(batchCtx, pipeline, &tuiObserver{p: p})
		msg := ui.AllCompleteMsg{Results: out.batch.Results, ExportErr: out.exportErr}
		if out.exportErr == nil {
			msg.ExportPath = a.csvPath
		}
		p.Send(msg)
		done <- out
	}()

	_, err := p.Run()
	cancel()
	return <-done, err
}

func (a *app) runPlain(ctx context.Context) batchOutcome {
	cli.PrintKeyValue("Band", a.cfg.Range.String())
	cli.PrintKeyValue("Tracks", fmt.Sprint(len(a.tracks)))
	if harmonics := mains.HarmonicsInBand(a.mainsHz, a.cfg.Range.LowerHz, a.cfg.Range.UpperHz); len(harmonics) > 0 {
		cli.PrintWarning(fmt.Sprintf("local mains hum (%d Hz) and its harmonics fall inside the band", a.mainsHz))
	}
	fmt.Println()

	pipeline := a.newPipeline(logging.NewPlainReporter(os.Stdout, a.tracks))
	out := a.runBatch(ctx, pipeline, nil)

	fmt.Println()
	logging.DisplayResults(os.Stdout, out.batch.Results, a.cfg.Range)
	logging.DisplayFailures(os.Stdout, out.batch.Failures)

	if out.exportErr != nil {
		cli.PrintError(fmt.Sprintf("CSV export failed: %v", out.exportErr))
	} else if a.csvPath != "" {
		fmt.Printf("\nResults exported to %s\n", a.csvPath)
	}
	if errors.Is(out.runErr, context.Canceled) {
		cli.PrintWarning("interrupted, remaining tracks were skipped")
	}
	return out
}

// tuiObserver forwards track lifecycle events to the UI
type tuiObserver struct {
	p *tea.Program
}

func (o *tuiObserver) TrackStarted(index int, track processor.Track) {
	o.p.Send(ui.FileStartMsg{FileIndex: index, FileName: track.Name})
}

func (o *tuiObserver) TrackFinished(index int, _ processor.Track, result *processor.AnalysisResult, err error) {
	o.p.Send(ui.FileCompleteMsg{FileIndex: index, Result: result, Error: err})
}
