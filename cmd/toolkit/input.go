package main

import (
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/internal/validation"
)

// Input errors shared by every command taking --text or --file.
var (
	errNoInput      = tkerrors.NewValidation("", "Provide either --text or --file")
	errTwoInputs    = tkerrors.NewValidation("", "Use only one input source: --text or --file")
	errMissingInput = tkerrors.NewNotFound("Input file", "")
)

// InputFlags selects the input of a command.
type InputFlags struct {
	Text *string `help:"Inline input text"`
	File string  `help:"Input file path"`
}

// load returns the input text. Exactly one of --text and --file must be
// given, and the file must be a readable UTF-8 file.
func (f InputFlags) load() (string, error) {
	data, err := f.loadBytes(true)
	return string(data), err
}

func (f InputFlags) loadBytes(utf8Only bool) ([]byte, error) {
	if f.Text == nil && f.File == "" {
		return nil, errNoInput
	}
	if f.Text != nil && f.File != "" {
		return nil, errTwoInputs
	}
	if f.Text != nil {
		return []byte(*f.Text), nil
	}

	info, err := os.Stat(f.File)
	if err != nil || !info.Mode().IsRegular() {
		return nil, errMissingInput
	}
	if utf8Only {
		text, err := validation.ReadTextFile(f.File)
		if err != nil {
			return nil, tkerrors.NewIO("read", f.File, err)
		}
		return []byte(text), nil
	}
	data, err := validation.ReadFile(f.File)
	if err != nil {
		return nil, tkerrors.NewIO("read", f.File, err)
	}
	return data, nil
}

// OutputFlags selects where a text result goes.
type OutputFlags struct {
	Output    *string `help:"Output filename"`
	OutputDir string  `name:"output-dir" help:"Output directory" default:"."`
}

// writeOrPrint prints content, or writes it to --output inside --output-dir
// when output is set. It returns the destination for the history log.
func (a *App) writeOrPrint(content string, output *string, outputDir string) (string, error) {
	if output == nil {
		a.println(content)
		return "stdout", nil
	}
	target, err := validation.SafeOutputPath(outputDir, *output)
	if err != nil {
		return "", err
	}
	if err := validation.WriteTextFile(target, content); err != nil {
		return "", tkerrors.NewIO("write", target, err)
	}
	a.printf("Wrote output to %s\n", target)
	return target, nil
}

// promptForFormat shows a numbered and lettered menu of options and reads
// the choice from stdin.
func (a *App) promptForFormat(options []string) (string, error) {
	a.println("Select input format:")
	for i, option := range options {
		a.printf("  %d) [%c] %s\n", i+1, rune('A'+i), option)
	}
	a.printf("Choice (number or letter): ")

	line, err := a.stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", tkerrors.NewIO("read", "stdin", err)
	}
	return chooseFormat(options, strings.TrimSpace(line))
}

func chooseFormat(options []string, choice string) (string, error) {
	if choice == "" {
		return "", tkerrors.NewValidation("", "Format choice is required")
	}
	if isDigits(choice) {
		index, err := strconv.Atoi(choice)
		if err == nil && index >= 1 && index <= len(options) {
			return options[index-1], nil
		}
		return "", tkerrors.NewValidation("", "Invalid numeric choice")
	}
	if r := []rune(choice); len(r) == 1 && unicode.IsLetter(r[0]) {
		index := int(unicode.ToUpper(r[0]) - 'A')
		if index >= 0 && index < len(options) {
			return options[index], nil
		}
	}
	return "", tkerrors.NewValidation("", "Invalid choice. Use a valid number or letter.")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
