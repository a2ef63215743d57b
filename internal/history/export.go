package history

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/core/sqlite"
	"github.com/FocuswithJustin/DevToolkit/internal/archive"
	"github.com/FocuswithJustin/DevToolkit/internal/validation"
)

// ExportFormat selects the layout written by Export.
type ExportFormat string

// Supported export formats.
const (
	FormatJSONL  ExportFormat = "jsonl"
	FormatXZ     ExportFormat = "xz"
	FormatGzip   ExportFormat = "gzip"
	FormatSQLite ExportFormat = "sqlite"
)

// ExportFormats lists the accepted format names.
var ExportFormats = []ExportFormat{FormatJSONL, FormatXZ, FormatGzip, FormatSQLite}

// ParseExportFormat validates a format name.
func ParseExportFormat(name string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range ExportFormats {
		if f == known {
			return f, nil
		}
	}
	return "", tkerrors.NewUnsupported("export format", fmt.Sprintf("%q (use jsonl, xz, gzip or sqlite)", name))
}

// DefaultExportName returns the file name used when no output is given.
func DefaultExportName(format ExportFormat) string {
	if format == FormatSQLite {
		return "history.db"
	}
	return FileName + compressionFor(format).Extension()
}

// FormatFromPath infers the export format from an output file name. It
// reports false when the suffix names no known format.
func FormatFromPath(path string) (ExportFormat, bool) {
	switch archive.CompressionFromPath(path) {
	case archive.XZ:
		return FormatXZ, true
	case archive.Gzip:
		return FormatGzip, true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return FormatJSONL, true
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, true
	}
	return "", false
}

const createTable = `CREATE TABLE history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	command TEXT NOT NULL,
	status TEXT NOT NULL,
	details TEXT NOT NULL
)`

// Export writes every readable entry to out, reads the file back and
// returns how many entries it holds. Malformed lines are dropped. An existing
// file at out is replaced.
func (m *Manager) Export(out string, format ExportFormat) (int, error) {
	entries, err := m.All()
	if err != nil {
		return 0, err
	}

	switch format {
	case FormatJSONL, FormatXZ, FormatGzip:
		var buf bytes.Buffer
		for _, e := range entries {
			line, err := encodeLine(e)
			if err != nil {
				return 0, err
			}
			buf.Write(line)
		}
		data, err := archive.Compress(buf.Bytes(), compressionFor(format))
		if err != nil {
			return 0, err
		}
		if err := validation.WriteFile(out, data); err != nil {
			return 0, tkerrors.NewIO("write", out, err)
		}
	case FormatSQLite:
		if err := exportSQLite(out, entries); err != nil {
			return 0, err
		}
	default:
		return 0, tkerrors.NewUnsupported("export format", string(format))
	}

	n, err := countExported(out, format)
	if err != nil {
		return 0, err
	}
	if n != len(entries) {
		return n, fmt.Errorf("export %s holds %d entries, want %d", out, n, len(entries))
	}
	return n, nil
}

// countExported reopens an export and counts its entries.
func countExported(out string, format ExportFormat) (int, error) {
	if format == FormatSQLite {
		db, err := sqlite.OpenReadOnly(out)
		if err != nil {
			return 0, tkerrors.NewIO("open", out, err)
		}
		defer db.Close()

		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
			return 0, fmt.Errorf("counting exported entries: %w", err)
		}
		return n, nil
	}

	c := compressionFor(format)
	data, err := archive.ReadFile(out, c)
	if err != nil {
		return 0, fmt.Errorf("verifying %s export: %w", c, err)
	}
	return bytes.Count(data, []byte("\n")), nil
}

func compressionFor(format ExportFormat) archive.Compression {
	switch format {
	case FormatXZ:
		return archive.XZ
	case FormatGzip:
		return archive.Gzip
	default:
		return archive.None
	}
}

func exportSQLite(out string, entries []Entry) (err error) {
	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		return tkerrors.NewIO("replace", out, err)
	}

	db, err := sqlite.Open(out)
	if err != nil {
		return tkerrors.NewIO("open", out, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = tkerrors.NewIO("close", out, cerr)
		}
	}()

	if _, err := db.Exec(createTable); err != nil {
		return fmt.Errorf("creating history table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO history (timestamp, command, status, details) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.Timestamp, e.Command, e.Status, e.Details); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert history entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}
	return nil
}
