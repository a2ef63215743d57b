package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/FocuswithJustin/DevToolkit/core/detect"
	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/core/hashing"
	"github.com/FocuswithJustin/DevToolkit/core/jsontools"
	"github.com/FocuswithJustin/DevToolkit/core/transform"
	tkxml "github.com/FocuswithJustin/DevToolkit/core/xml"
	"github.com/FocuswithJustin/DevToolkit/internal/history"
	"github.com/FocuswithJustin/DevToolkit/internal/logging"
)

var errKind = tkerrors.NewValidation("", "kind must be json or xml")

// AnalyzeCmd detects the format of its input.
type AnalyzeCmd struct {
	InputFlags `embed:""`
}

func (c *AnalyzeCmd) Run(app *App) error {
	start := time.Now()
	result, err := c.analyze()
	if err == nil {
		app.println(result)
	}
	return app.finish("analyze", start, result, err)
}

func (c *AnalyzeCmd) analyze() (string, error) {
	// A file is classified by its extension alone.
	if c.File != "" {
		return detect.FromPath(c.File), nil
	}
	data, err := InputFlags{Text: c.Text}.load()
	if err != nil {
		return "", err
	}
	return detect.FromText(data), nil
}

// ConvertCmd runs one direct conversion per --to target.
type ConvertCmd struct {
	To   []string `name:"to" help:"Output type (repeatable)"`
	From string   `name:"from" help:"Input type (detected when omitted)"`

	InputFlags  `embed:""`
	OutputFlags `embed:""`
}

func (c *ConvertCmd) Run(app *App) error {
	start := time.Now()

	if len(c.To) == 0 {
		return app.finish("convert", start, "", tkerrors.NewValidation("", "At least one --to type is required"))
	}
	if c.Output != nil && len(c.To) > 1 {
		return app.finish("convert", start, "", tkerrors.NewValidation("", "Single output file can only be used with one --to type"))
	}
	data, err := c.load()
	if err != nil {
		return app.finish("convert", start, "", err)
	}

	source := transform.Normalize(c.From)
	if source == "" {
		source = detect.FromText(data)
	}
	targets := make([]string, len(c.To))
	for i, t := range c.To {
		targets[i] = transform.Normalize(t)
	}

	for i, target := range targets {
		converted, err := app.registry.Transform(data, source, target)
		if err == nil {
			var output *string
			if i == 0 {
				output = c.Output
			}
			if len(targets) > 1 {
				app.printf("[%s->%s]\n", source, target)
			}
			_, err = app.writeOrPrint(converted, output, c.OutputDir)
		}
		if err != nil {
			if i > 0 {
				details := fmt.Sprintf("%s->%s: %v", source, strings.Join(targets[:i], ","), err)
				app.record("convert", history.StatusPartial, details, start)
				return err
			}
			return app.finish("convert", start, "", err)
		}
	}
	return app.finish("convert", start, fmt.Sprintf("%s->%s", source, strings.Join(targets, ",")), nil)
}

// ConvertAllCmd prints every direct conversion available for the input.
type ConvertAllCmd struct {
	InputFlags `embed:""`

	From string `name:"from" help:"Input type override"`
	Ask  bool   `help:"Prompt to choose input type"`
}

func (c *ConvertAllCmd) Run(app *App) error {
	start := time.Now()
	details, err := c.convertAll(app)
	return app.finish("convert-all", start, details, err)
}

func (c *ConvertAllCmd) convertAll(app *App) (string, error) {
	data, err := c.load()
	if err != nil {
		return "", err
	}

	supported := app.registry.InputTypes()
	source := transform.Normalize(c.From)
	if source == "" {
		source = detect.FromText(data)
	}

	switch {
	case c.Ask:
		if source, err = app.promptForFormat(supported); err != nil {
			return "", err
		}
	case !contains(supported, source):
		app.printf("Detected '%s' is not directly convertible.\n", source)
		if source, err = app.promptForFormat(supported); err != nil {
			return "", err
		}
	}

	available := app.registry.Available(source)
	if len(available) == 0 {
		return "", tkerrors.NewValidation("", fmt.Sprintf("No available conversions for '%s'", source))
	}

	app.printf("Input format: %s\n", source)
	targets := make([]string, 0, len(available))
	for _, pair := range available {
		converted, err := app.registry.Transform(data, pair.Input, pair.Output)
		if err != nil {
			return "", err
		}
		app.println()
		app.printf("[%s->%s]\n", pair.Input, pair.Output)
		app.println(converted)
		targets = append(targets, pair.Output)
	}
	return fmt.Sprintf("%s->%s", source, strings.Join(targets, ",")), nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// FormatsCmd lists the registered conversion pairs.
type FormatsCmd struct {
	Verbose bool `short:"v" help:"Also list converter modules that failed to load"`
}

func (c *FormatsCmd) Run(app *App) error {
	byInput := map[string][]string{}
	var inputs []string
	for _, pair := range app.registry.Available("") {
		if _, ok := byInput[pair.Input]; !ok {
			inputs = append(inputs, pair.Input)
		}
		byInput[pair.Input] = append(byInput[pair.Input], pair.Output)
	}

	if len(inputs) == 0 {
		app.println("No converters registered.")
		c.printLoadErrors(app)
		return exitStatus(1)
	}

	for _, input := range inputs {
		app.printf("%s -> %s\n", input, strings.Join(byInput[input], ", "))
	}
	c.printLoadErrors(app)
	return nil
}

func (c *FormatsCmd) printLoadErrors(app *App) {
	if !c.Verbose {
		return
	}
	loadErrors := app.registry.LoadErrors()
	if len(loadErrors) == 0 {
		return
	}
	modules := make([]string, 0, len(loadErrors))
	for module := range loadErrors {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	app.println()
	app.println("Modules that failed to load:")
	for _, module := range modules {
		app.printf("  %s: %s\n", module, loadErrors[module])
	}
}

// KindFlag selects JSON or XML processing.
type KindFlag struct {
	Kind string `required:"" help:"json or xml"`
}

func (k KindFlag) normalized() (string, error) {
	kind := strings.ToLower(strings.TrimSpace(k.Kind))
	if kind != "json" && kind != "xml" {
		return "", errKind
	}
	return kind, nil
}

// FormatCmd pretty-prints JSON or XML.
type FormatCmd struct {
	KindFlag    `embed:""`
	InputFlags  `embed:""`
	OutputFlags `embed:""`
}

func (c *FormatCmd) Run(app *App) error {
	return runStructured(app, "format", c.KindFlag, c.InputFlags, c.OutputFlags,
		func(b []byte) ([]byte, error) { return jsontools.Format(b) },
		func(b []byte) ([]byte, error) { return tkxml.Format(b, tkxml.FormatOptions{}) },
	)
}

// MinifyCmd strips insignificant whitespace from JSON or XML.
type MinifyCmd struct {
	KindFlag    `embed:""`
	InputFlags  `embed:""`
	OutputFlags `embed:""`
}

func (c *MinifyCmd) Run(app *App) error {
	return runStructured(app, "minify", c.KindFlag, c.InputFlags, c.OutputFlags, jsontools.Minify, tkxml.Minify)
}

func runStructured(app *App, command string, kind KindFlag, in InputFlags, out OutputFlags, jsonFn, xmlFn func([]byte) ([]byte, error)) error {
	start := time.Now()

	data, err := in.load()
	if err != nil {
		return app.finish(command, start, "", err)
	}
	normalized, err := kind.normalized()
	if err != nil {
		return app.finish(command, start, "", err)
	}

	fn := jsonFn
	if normalized == "xml" {
		fn = xmlFn
	}
	result, err := fn([]byte(data))
	if err != nil {
		return app.finish(command, start, "", err)
	}

	destination, err := app.writeOrPrint(string(result), out.Output, out.OutputDir)
	return app.finish(command, start, normalized+":"+destination, err)
}

// ValidateCmd checks that JSON or XML parses.
type ValidateCmd struct {
	KindFlag   `embed:""`
	InputFlags `embed:""`
}

func (c *ValidateCmd) Run(app *App) error {
	start := time.Now()

	data, err := c.load()
	if err != nil {
		return app.finish("validate", start, "", err)
	}
	kind, err := c.normalized()
	if err != nil {
		return app.finish("validate", start, "", err)
	}

	var (
		ok      bool
		message string
	)
	if kind == "json" {
		if err := jsontools.Validate([]byte(data)); err != nil {
			message = err.Error()
		} else {
			ok, message = true, jsontools.ValidMessage
		}
	} else {
		result := tkxml.Validate([]byte(data))
		ok, message = result.Valid, result.Message()
	}

	app.println(message)
	if !ok {
		app.record("validate", history.StatusError, kind+":"+message, start)
		return exitStatus(1)
	}
	app.record("validate", history.StatusSuccess, kind+":"+message, start)
	return nil
}

// HashCmd prints the hash report of its input.
type HashCmd struct {
	InputFlags `embed:""`

	JSON bool `name:"json" help:"Print the report as a JSON array"`
}

func (c *HashCmd) Run(app *App) error {
	start := time.Now()

	data, err := c.loadBytes(false)
	if err != nil {
		return app.finish("hash", start, "", err)
	}

	var text *string
	if c.Text != nil {
		text = c.Text
	} else if s := string(data); utf8.Valid(data) {
		text = &s
	}

	report := hashing.Report(data, text)
	if c.JSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return app.finish("hash", start, "", fmt.Errorf("encoding report: %w", err))
		}
		app.println(string(out))
	} else {
		for _, entry := range report {
			app.printf("%s: %s\n", entry.Label, entry.Value)
		}
	}
	logging.DebugContext(app.ctx, "hash_report", "bytes", len(data), "entries", len(report))
	return app.finish("hash", start, fmt.Sprintf("%d bytes", len(data)), nil)
}
