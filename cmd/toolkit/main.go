// Command toolkit is the Developer Utility Toolkit CLI.
// It detects, converts, formats, validates and hashes data, works with
// sitemaps and images, and keeps a local history of its invocations.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/DevToolkit/core/transform"
	"github.com/FocuswithJustin/DevToolkit/internal/config"
	"github.com/FocuswithJustin/DevToolkit/internal/history"
	"github.com/FocuswithJustin/DevToolkit/internal/logging"

	// Register every built-in converter module.
	_ "github.com/FocuswithJustin/DevToolkit/internal/converters"
)

const version = "0.1.0"

// CLI defines the command-line interface for toolkit.
type CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"${log_level}"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"${log_format}"`
	NoHistory bool   `name:"no-history" help:"Do not record this invocation in the history log"`

	Analyze    AnalyzeCmd    `cmd:"" help:"Analyze and detect input format"`
	Convert    ConvertCmd    `cmd:"" help:"Convert data using one direct input->output transformation"`
	ConvertAll ConvertAllCmd `cmd:"" name:"convert-all" help:"Show all direct conversions for an input (interactive mode supported)"`
	Formats    FormatsCmd    `cmd:"" help:"List all currently available direct conversion pairs"`
	Format     FormatCmd     `cmd:"" help:"Format JSON or XML content"`
	Validate   ValidateCmd   `cmd:"" help:"Validate JSON or XML content"`
	Minify     MinifyCmd     `cmd:"" help:"Minify JSON or XML content"`
	Hash       HashCmd       `cmd:"" help:"Print a multi-algorithm hash report"`
	Image      ImageGroup    `cmd:"" help:"Image utilities"`
	Sitemap    SitemapGroup  `cmd:"" help:"Sitemap utilities"`
	Recent     RecentGroup   `cmd:"" help:"View and manage local command history"`
	Version    VersionCmd    `cmd:"" help:"Print version information"`
}

// ImageGroup contains image operations.
type ImageGroup struct {
	Pixelate PixelateCmd `cmd:"" help:"Pixelate an image"`
	QRCode   QRCodeCmd   `cmd:"" name:"qrcode" help:"Render text as a QR code PNG"`
}

// SitemapGroup contains sitemap operations.
type SitemapGroup struct {
	Generate SitemapGenerateCmd `cmd:"" help:"Generate sitemap.xml from URL and paths"`
	Fetch    SitemapFetchCmd    `cmd:"" help:"Fetch and list sitemap URLs"`
}

// RecentGroup contains history operations.
type RecentGroup struct {
	Show   RecentShowCmd   `cmd:"" help:"Show recent command history"`
	Clear  RecentClearCmd  `cmd:"" help:"Clear command history"`
	Export RecentExportCmd `cmd:"" help:"Export command history (jsonl, xz, gzip or sqlite)"`
}

// App carries the per-invocation state bound into every command's Run.
type App struct {
	ctx      context.Context
	cfg      config.Config
	stdin    *bufio.Reader
	stdout   io.Writer
	stderr   io.Writer
	registry *transform.Registry

	noHistory   bool
	historyOnce sync.Once
	history     *history.Manager
	historyErr  error
}

// exitStatus ends the invocation with a specific exit code and no further
// error output.
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// History opens the history log on first use.
func (a *App) History() (*history.Manager, error) {
	a.historyOnce.Do(func() {
		a.history, a.historyErr = history.Open(a.cfg.HistoryDir())
	})
	return a.history, a.historyErr
}

// record logs the outcome of command and appends it to the history log.
// History failures are logged and never fail the command.
func (a *App) record(command, status, details string, start time.Time) {
	logging.CommandResult(a.ctx, command, status, time.Since(start), "details", details)
	if a.noHistory {
		return
	}
	h, err := a.History()
	if err != nil {
		logging.WarnContext(a.ctx, "history_unavailable", "error", err.Error())
		return
	}
	if err := h.Add(command, status, details); err != nil {
		logging.WarnContext(a.ctx, "history_write_failed", "error", err.Error())
	}
}

// finish records success with details, or failure with the error message,
// and returns err unchanged.
func (a *App) finish(command string, start time.Time, details string, err error) error {
	if err != nil {
		a.record(command, history.StatusError, err.Error(), start)
		return err
	}
	a.record(command, history.StatusSuccess, details, start)
	return nil
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.stdout, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit code:
// 0 on success, 1 for failed validation or an empty registry, 2 for usage
// and processing errors.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	defer func() {
		if r := recover(); r != nil {
			status, ok := r.(exitStatus)
			if !ok {
				panic(r)
			}
			code = int(status)
		}
	}()

	var cli CLI
	vars := cfg.Vars()
	vars["version"] = version
	parser, err := kong.New(&cli,
		kong.Name("toolkit"),
		kong.Description("Developer Utility Toolkit.\n\n"+
			"Use 'toolkit formats' to view all supported direct conversions.\n"+
			"Use 'toolkit convert-all --ask --text <value>' for guided, multi-output conversion."),
		kong.Vars(vars),
		kong.Configuration(config.YAMLLoader, cfg.ConfigFile()),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitStatus(code)) }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	level, err := logging.ParseLevel(cli.LogLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	format, err := logging.ParseFormat(cli.LogFormat)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	logging.InitLoggerTo(stderr, level, format)

	ctx = logging.WithInvocationID(ctx, logging.NewInvocationID())
	logging.DebugContext(ctx, "command_start", "command", kctx.Command(), "home", cfg.Home)

	app := &App{
		ctx:       ctx,
		cfg:       cfg,
		stdin:     bufio.NewReader(stdin),
		stdout:    stdout,
		stderr:    stderr,
		registry:  transform.NewRegistry(),
		noHistory: cfg.NoHistory || cli.NoHistory,
	}

	if err := kctx.Run(app); err != nil {
		var status exitStatus
		if errors.As(err, &status) {
			return int(status)
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}
