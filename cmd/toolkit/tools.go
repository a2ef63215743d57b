package main

import (
	"fmt"
	"strings"
	"time"

	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/core/imaging"
	"github.com/FocuswithJustin/DevToolkit/core/sitemap"
	"github.com/FocuswithJustin/DevToolkit/core/sqlite"
	"github.com/FocuswithJustin/DevToolkit/internal/history"
	"github.com/FocuswithJustin/DevToolkit/internal/validation"
)

// PixelateCmd pixelates an image file.
type PixelateCmd struct {
	InputFile  string `name:"input-file" required:"" help:"Input image file path"`
	OutputName string `name:"output-name" help:"Output image filename" default:"pixelated.png"`
	OutputDir  string `name:"output-dir" help:"Output directory" default:"."`
	BlockSize  int    `name:"block-size" help:"Pixel block size" default:"8"`
}

func (c *PixelateCmd) Run(app *App) error {
	start := time.Now()

	target, err := validation.SafeOutputPath(c.OutputDir, c.OutputName)
	if err == nil {
		err = imaging.Pixelate(c.InputFile, target, c.BlockSize)
	}
	if err == nil {
		app.printf("Wrote output to %s\n", target)
	}
	return app.finish("image.pixelate", start, target, err)
}

// QRCodeCmd renders text as a QR code.
type QRCodeCmd struct {
	Text       string `required:"" help:"Text to encode"`
	OutputName string `name:"output-name" help:"Output image filename" default:"qrcode.png"`
	OutputDir  string `name:"output-dir" help:"Output directory" default:"."`
	Size       int    `help:"Image edge length in pixels" default:"256"`
}

func (c *QRCodeCmd) Run(app *App) error {
	start := time.Now()

	target, err := validation.SafeOutputPath(c.OutputDir, c.OutputName)
	if err == nil {
		err = imaging.QRCode(c.Text, c.Size, target)
	}
	if err == nil {
		app.printf("Wrote output to %s\n", target)
	}
	return app.finish("image.qrcode", start, target, err)
}

// SitemapGenerateCmd builds a sitemap from a base URL and paths.
type SitemapGenerateCmd struct {
	BaseURL   string   `name:"base-url" required:"" help:"Base website URL"`
	Path      []string `name:"path" sep:"none" help:"Path entries for sitemap (repeatable)"`
	PathsFile string   `name:"paths-file" help:"File containing one path per line"`

	OutputFlags `embed:""`
}

func (c *SitemapGenerateCmd) Run(app *App) error {
	start := time.Now()
	destination, err := c.generate(app)
	return app.finish("sitemap.generate", start, destination, err)
}

func (c *SitemapGenerateCmd) generate(app *App) (string, error) {
	paths := append([]string(nil), c.Path...)
	if c.PathsFile != "" {
		data, err := validation.ReadTextFile(c.PathsFile)
		if err != nil {
			return "", tkerrors.NewIO("read", c.PathsFile, err)
		}
		for _, line := range strings.Split(data, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				paths = append(paths, line)
			}
		}
	}
	if len(paths) == 0 {
		return "", tkerrors.NewValidation("", "Provide at least one --path or --paths-file entry")
	}

	xml, err := sitemap.Generate(c.BaseURL, paths)
	if err != nil {
		return "", err
	}
	return app.writeOrPrint(xml, c.Output, c.OutputDir)
}

// SitemapFetchCmd downloads a sitemap and prints its URLs.
type SitemapFetchCmd struct {
	URL     string `name:"url" required:"" help:"Sitemap URL"`
	Timeout int    `help:"Request timeout in seconds" default:"${http_timeout}"`
	Retries int    `help:"Retries on network errors and 5xx responses" default:"${http_retries}"`
}

func (c *SitemapFetchCmd) Run(app *App) error {
	start := time.Now()

	urls, err := sitemap.Fetch(app.ctx, c.URL, sitemap.FetchOptions{
		Timeout:   time.Duration(c.Timeout) * time.Second,
		Retries:   c.Retries,
		UserAgent: sitemap.UserAgent(version),
	})
	if err != nil {
		return app.finish("sitemap.fetch", start, "", err)
	}
	for _, u := range urls {
		app.println(u)
	}
	return app.finish("sitemap.fetch", start, fmt.Sprintf("%d urls", len(urls)), nil)
}

// RecentShowCmd prints the most recent history entries.
type RecentShowCmd struct {
	Limit int `help:"Maximum entries to display" default:"10"`
}

func (c *RecentShowCmd) Run(app *App) error {
	h, err := app.History()
	if err != nil {
		return err
	}
	entries, err := h.Recent(c.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		app.println("No history entries yet.")
		return nil
	}
	for _, entry := range entries {
		app.println(entry.String())
	}
	return nil
}

// RecentClearCmd truncates the history log.
type RecentClearCmd struct{}

func (c *RecentClearCmd) Run(app *App) error {
	h, err := app.History()
	if err != nil {
		return err
	}
	if err := h.Clear(); err != nil {
		return err
	}
	app.println("History cleared.")
	return nil
}

// RecentExportCmd writes the history log in another format.
type RecentExportCmd struct {
	Format    string `help:"Export format (jsonl, xz, gzip, sqlite); inferred from --out, else jsonl"`
	Out       string `help:"Output filename (defaults by format)"`
	OutputDir string `name:"output-dir" help:"Output directory" default:"."`
}

func (c *RecentExportCmd) format() (history.ExportFormat, error) {
	if c.Format != "" {
		return history.ParseExportFormat(c.Format)
	}
	if format, ok := history.FormatFromPath(c.Out); ok {
		return format, nil
	}
	return history.FormatJSONL, nil
}

func (c *RecentExportCmd) Run(app *App) error {
	format, err := c.format()
	if err != nil {
		return err
	}
	name := c.Out
	if name == "" {
		name = history.DefaultExportName(format)
	}
	target, err := validation.SafeOutputPath(c.OutputDir, name)
	if err != nil {
		return err
	}

	h, err := app.History()
	if err != nil {
		return err
	}
	n, err := h.Export(target, format)
	if err != nil {
		return err
	}
	app.printf("Exported %d entries to %s\n", n, target)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	info := sqlite.GetInfo()
	app.printf("toolkit %s\n", version)
	app.printf("sqlite driver: %s (%s, %s)\n", info.DriverName, info.DriverType, info.Package)
	return nil
}
