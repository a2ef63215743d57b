package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/DevToolkit/core/sqlite"
	"github.com/FocuswithJustin/DevToolkit/internal/archive"
	"github.com/FocuswithJustin/DevToolkit/internal/history"
)

// Test helper functions

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TOOLKIT_HOME", home)
	t.Setenv("TOOLKIT_NO_HISTORY", "false")
	t.Setenv("TOOLKIT_LOG_LEVEL", "warn")
	t.Setenv("TOOLKIT_HTTP_RETRIES", "0")
	return home
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func readHistory(t *testing.T, home string) []history.Entry {
	t.Helper()
	m, err := history.Open(filepath.Join(home, "history"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	entries, err := m.All()
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	return entries
}

func lastEntry(t *testing.T, home string) history.Entry {
	t.Helper()
	entries := readHistory(t, home)
	if len(entries) == 0 {
		t.Fatal("history is empty")
	}
	return entries[len(entries)-1]
}

// Tests for analyze

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"json text", []string{"--text", `{"a": 1}`}, "json"},
		{"url text", []string{"--text", "https://example.com/x"}, "url"},
		{"binary text", []string{"--text", "01101000 01101001"}, "binary"},
		{"plain text", []string{"--text", "hello world"}, "text"},
		{"empty text", []string{"--text", "   "}, "empty"},
		{"yaml file", []string{"--file", "config.yaml"}, "yaml"},
		{"unknown file", []string{"--file", "archive.zip"}, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := setupHome(t)
			code, stdout, stderr := runCLI(t, "", append([]string{"analyze"}, tt.args...)...)
			if code != 0 {
				t.Fatalf("exit code = %d, stderr = %s", code, stderr)
			}
			if got := strings.TrimSpace(stdout); got != tt.want {
				t.Errorf("analyze = %q, want %q", got, tt.want)
			}
			entry := lastEntry(t, home)
			if entry.Command != "analyze" || entry.Status != history.StatusSuccess || entry.Details != tt.want {
				t.Errorf("history entry = %+v", entry)
			}
		})
	}
}

func TestAnalyzeRequiresInput(t *testing.T) {
	home := setupHome(t)
	code, _, stderr := runCLI(t, "", "analyze")
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "Error: Provide either --text or --file") {
		t.Errorf("stderr = %q", stderr)
	}
	if entry := lastEntry(t, home); entry.Status != history.StatusError {
		t.Errorf("history entry = %+v", entry)
	}
}

// Tests for convert

func TestConvertSingleTarget(t *testing.T) {
	setupHome(t)
	code, stdout, stderr := runCLI(t, "", "convert", "--to", "base64", "--text", "hello")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if stdout != "aGVsbG8=\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestConvertMultipleTargets(t *testing.T) {
	home := setupHome(t)
	code, stdout, stderr := runCLI(t, "", "convert", "--to", "base64", "--to", "HEX", "--text", "hello")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	want := "[text->base64]\naGVsbG8=\n[text->hex]\n68656c6c6f\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if entry := lastEntry(t, home); entry.Details != "text->base64,hex" {
		t.Errorf("history details = %q", entry.Details)
	}
}

func TestConvertExplicitSource(t *testing.T) {
	setupHome(t)
	code, stdout, stderr := runCLI(t, "", "convert", "--from", "Base64", "--to", "text", "--text", "aGk=")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if stdout != "hi\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestConvertToFile(t *testing.T) {
	setupHome(t)
	outDir := filepath.Join(t.TempDir(), "out")
	code, stdout, stderr := runCLI(t, "", "convert", "--to", "upper", "--text", "hello",
		"--output", "../escape.txt", "--output-dir", outDir)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}

	target := filepath.Join(outDir, "escape.txt")
	if !strings.Contains(stdout, "Wrote output to "+target) {
		t.Errorf("stdout = %q", stdout)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "HELLO" {
		t.Errorf("output file = %q", data)
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no targets", []string{"--text", "x"}, "At least one --to type is required"},
		{"output with two targets", []string{"--to", "a", "--to", "b", "--output", "o.txt", "--text", "x"}, "Single output file can only be used with one --to type"},
		{"two inputs", []string{"--to", "hex", "--text", "x", "--file", "y"}, "Use only one input source: --text or --file"},
		{"missing file", []string{"--to", "hex", "--file", "does-not-exist.txt"}, "Input file does not exist"},
		{"no transformer", []string{"--to", "xml", "--text", "hello"}, "No transformer registered for text -> xml"},
		{"invalid base64", []string{"--from", "base64", "--to", "text", "--text", "!!!"}, "Invalid base64 input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := setupHome(t)
			code, _, stderr := runCLI(t, "", append([]string{"convert"}, tt.args...)...)
			if code != 2 {
				t.Errorf("exit code = %d, want 2", code)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want %q", stderr, tt.wantErr)
			}
			entry := lastEntry(t, home)
			if entry.Status != history.StatusError || !strings.Contains(entry.Details, tt.wantErr) {
				t.Errorf("history entry = %+v", entry)
			}
		})
	}
}

func TestConvertPartial(t *testing.T) {
	home := setupHome(t)
	code, stdout, _ := runCLI(t, "", "convert", "--to", "hex", "--to", "json", "--text", "hello")
	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stdout, "68656c6c6f") {
		t.Errorf("first target should still be printed: %q", stdout)
	}
	entry := lastEntry(t, home)
	if entry.Status != history.StatusPartial || !strings.HasPrefix(entry.Details, "text->hex:") {
		t.Errorf("history entry = %+v", entry)
	}
}

// Tests for convert-all

func TestConvertAll(t *testing.T) {
	home := setupHome(t)
	code, stdout, stderr := runCLI(t, "", "convert-all", "--text", "hello")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "Input format: text\n") {
		t.Errorf("stdout = %q", stdout)
	}
	for _, want := range []string{"\n[text->base64]\naGVsbG8=\n", "\n[text->upper]\nHELLO\n", "\n[text->urlencode]\nhello\n"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q", want)
		}
	}
	if entry := lastEntry(t, home); entry.Details != "text->base64,binary,hex,lower,title,upper,urlencode" {
		t.Errorf("history details = %q", entry.Details)
	}
}

func TestConvertAllAsk(t *testing.T) {
	setupHome(t)

	// Options are sorted: base64 binary hex json text urlencode xml.
	for _, choice := range []string{"2\n", "b\n", " B "} {
		code, stdout, stderr := runCLI(t, choice, "convert-all", "--ask", "--text", "01101000 01101001")
		if code != 0 {
			t.Fatalf("choice %q: exit code = %d, stderr = %s", choice, code, stderr)
		}
		for _, want := range []string{"Select input format:", "  1) [A] base64", "  2) [B] binary", "Input format: binary", "[binary->text]\nhi\n"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("choice %q: stdout missing %q", choice, want)
			}
		}
	}
}

func TestConvertAllPromptsForUnconvertibleSource(t *testing.T) {
	setupHome(t)
	code, stdout, stderr := runCLI(t, "5\n", "convert-all", "--text", "https://example.com")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "Detected 'url' is not directly convertible.\nSelect input format:\n") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stdout, "Input format: text") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestConvertAllInvalidChoice(t *testing.T) {
	tests := []struct {
		stdin   string
		wantErr string
	}{
		{"", "Format choice is required"},
		{"99\n", "Invalid numeric choice"},
		{"0\n", "Invalid numeric choice"},
		{"z\n", "Invalid choice. Use a valid number or letter."},
		{"hex\n", "Invalid choice. Use a valid number or letter."},
	}

	for _, tt := range tests {
		setupHome(t)
		code, _, stderr := runCLI(t, tt.stdin, "convert-all", "--ask", "--text", "hello")
		if code != 2 {
			t.Errorf("stdin %q: exit code = %d, want 2", tt.stdin, code)
		}
		if !strings.Contains(stderr, tt.wantErr) {
			t.Errorf("stdin %q: stderr = %q, want %q", tt.stdin, stderr, tt.wantErr)
		}
	}
}

// Tests for formats

func TestFormats(t *testing.T) {
	home := setupHome(t)
	code, stdout, stderr := runCLI(t, "", "formats")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	want := strings.Join([]string{
		"base64 -> binary, text",
		"binary -> base64, hex, text",
		"hex -> binary, text",
		"json -> xml",
		"text -> base64, binary, hex, lower, title, upper, urlencode",
		"urlencode -> text",
		"xml -> json",
	}, "\n") + "\n"
	if stdout != want {
		t.Errorf("formats =\n%s\nwant\n%s", stdout, want)
	}
	if entries := readHistory(t, home); len(entries) != 0 {
		t.Errorf("formats should not be recorded, got %+v", entries)
	}
}

// Tests for format, validate and minify

func TestFormatJSON(t *testing.T) {
	home := setupHome(t)
	code, stdout, stderr := runCLI(t, "", "format", "--kind", "JSON", "--text", `{"b":1,"a":[1,2]}`)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	want := "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": 1\n}\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if entry := lastEntry(t, home); entry.Details != "json:stdout" {
		t.Errorf("history details = %q", entry.Details)
	}
}

func TestFormatXMLFromFile(t *testing.T) {
	setupHome(t)
	in := filepath.Join(t.TempDir(), "in.xml")
	if err := os.WriteFile(in, []byte("<root><a>1</a></root>"), 0644); err != nil {
		t.Fatal(err)
	}
	code, stdout, stderr := runCLI(t, "", "format", "--kind", "xml", "--file", in)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if stdout != "<root>\n  <a>1</a>\n</root>\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestFormatInvalidKind(t *testing.T) {
	setupHome(t)
	code, _, stderr := runCLI(t, "", "format", "--kind", "yaml", "--text", "a: 1")
	if code != 2 || !strings.Contains(stderr, "kind must be json or xml") {
		t.Errorf("exit code = %d, stderr = %q", code, stderr)
	}
}

func TestMinify(t *testing.T) {
	setupHome(t)
	code, stdout, _ := runCLI(t, "", "minify", "--kind", "json", "--text", "{ \"b\": 1,\n \"a\": \"<x>\" }")
	if code != 0 || stdout != "{\"a\":\"<x>\",\"b\":1}\n" {
		t.Errorf("json minify: code %d, stdout %q", code, stdout)
	}

	code, stdout, _ = runCLI(t, "", "minify", "--kind", "xml", "--text", "<root>\n  <a>1</a>\n</root>")
	if code != 0 || stdout != "<root><a>1</a></root>\n" {
		t.Errorf("xml minify: code %d, stdout %q", code, stdout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		kind       string
		text       string
		wantCode   int
		wantPrefix string
	}{
		{"valid json", "json", `{"a": 1}`, 0, "Valid JSON"},
		{"invalid json", "json", `{"a": }`, 1, "Invalid JSON: "},
		{"valid xml", "xml", "<a><b/></a>", 0, "Valid XML"},
		{"invalid xml", "xml", "<a>", 1, "Invalid XML: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := setupHome(t)
			code, stdout, _ := runCLI(t, "", "validate", "--kind", tt.kind, "--text", tt.text)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if !strings.HasPrefix(stdout, tt.wantPrefix) {
				t.Errorf("stdout = %q, want prefix %q", stdout, tt.wantPrefix)
			}
			entry := lastEntry(t, home)
			if !strings.HasPrefix(entry.Details, tt.kind+":"+tt.wantPrefix) {
				t.Errorf("history details = %q", entry.Details)
			}
			wantStatus := history.StatusSuccess
			if tt.wantCode != 0 {
				wantStatus = history.StatusError
			}
			if entry.Status != wantStatus {
				t.Errorf("history status = %q, want %q", entry.Status, wantStatus)
			}
		})
	}
}

// Tests for hash

func TestHash(t *testing.T) {
	setupHome(t)
	code, stdout, stderr := runCLI(t, "", "hash", "--text", "abc")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	for _, want := range []string{
		"SHA256 Hash Generator: ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad\n",
		"MD5 Hash Generator: 900150983cd24fb0d6963f7d28e17f72\n",
		"MD2 Hash Generator: Unavailable in this build\n",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q", want)
		}
	}
	if !strings.HasSuffix(stdout, "Checksum Calculator: 00000126\n") {
		t.Errorf("stdout should end with the checksum: %q", stdout)
	}
}

func TestHashJSONFromBinaryFile(t *testing.T) {
	setupHome(t)
	in := filepath.Join(t.TempDir(), "blob.bin")
	if err := os.WriteFile(in, []byte{0xff, 0xfe, 0x00}, 0644); err != nil {
		t.Fatal(err)
	}
	code, stdout, stderr := runCLI(t, "", "hash", "--json", "--file", in)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}

	var report []struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(report) != 27 {
		t.Errorf("report has %d entries, want 27", len(report))
	}
	if report[3].Label != "NTLM Hash Generator" || report[3].Value != "Unavailable: NTLM requires text input" {
		t.Errorf("NTLM entry = %+v", report[3])
	}
}

// Tests for image commands

func TestImagePixelate(t *testing.T) {
	home := setupHome(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")

	// A QR code is a convenient non-trivial input image.
	code, _, stderr := runCLI(t, "", "image", "qrcode", "--text", "pixelate me", "--output-dir", dir, "--output-name", "in.png", "--size", "64")
	if code != 0 {
		t.Fatalf("qrcode exit code = %d, stderr = %s", code, stderr)
	}

	outDir := filepath.Join(dir, "out")
	code, stdout, stderr := runCLI(t, "", "image", "pixelate", "--input-file", in, "--output-dir", outDir, "--block-size", "4")
	if code != 0 {
		t.Fatalf("pixelate exit code = %d, stderr = %s", code, stderr)
	}
	target := filepath.Join(outDir, "pixelated.png")
	if !strings.Contains(stdout, "Wrote output to "+target) {
		t.Errorf("stdout = %q", stdout)
	}

	out, err := os.Open(target)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	cfg, err := png.DecodeConfig(out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 64 {
		t.Errorf("output size = %dx%d, want 64x64", cfg.Width, cfg.Height)
	}

	entry := lastEntry(t, home)
	if entry.Command != "image.pixelate" || entry.Details != target {
		t.Errorf("history entry = %+v", entry)
	}
}

func TestImagePixelateErrors(t *testing.T) {
	setupHome(t)
	dir := t.TempDir()

	code, _, stderr := runCLI(t, "", "image", "pixelate", "--input-file", filepath.Join(dir, "none.png"), "--output-dir", dir)
	if code != 2 || !strings.Contains(stderr, "Input image does not exist") {
		t.Errorf("missing input: code %d, stderr %q", code, stderr)
	}

	code, _, stderr = runCLI(t, "", "image", "pixelate", "--input-file", "x.png", "--output-dir", dir, "--block-size", "0")
	if code != 2 || !strings.Contains(stderr, "Block size must be >= 1") {
		t.Errorf("block size: code %d, stderr %q", code, stderr)
	}
}

// Tests for sitemap commands

func TestSitemapGenerate(t *testing.T) {
	home := setupHome(t)
	pathsFile := filepath.Join(t.TempDir(), "paths.txt")
	if err := os.WriteFile(pathsFile, []byte("\ncontact\r\n  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCLI(t, "", "sitemap", "generate", "--base-url", "https://example.com",
		"--path", "/", "--path", "about,team", "--paths-file", pathsFile)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	for _, want := range []string{
		`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`,
		"<loc>https://example.com/</loc>",
		"<loc>https://example.com/about,team</loc>",
		"<loc>https://example.com/contact</loc>",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if entry := lastEntry(t, home); entry.Command != "sitemap.generate" || entry.Details != "stdout" {
		t.Errorf("history entry = %+v", entry)
	}
}

func TestSitemapGenerateErrors(t *testing.T) {
	setupHome(t)

	code, _, stderr := runCLI(t, "", "sitemap", "generate", "--base-url", "https://example.com")
	if code != 2 || !strings.Contains(stderr, "Provide at least one --path or --paths-file entry") {
		t.Errorf("no paths: code %d, stderr %q", code, stderr)
	}

	code, _, stderr = runCLI(t, "", "sitemap", "generate", "--base-url", "ftp://example.com", "--path", "a")
	if code != 2 || !strings.Contains(stderr, "URL must be a valid http/https URL") {
		t.Errorf("bad base: code %d, stderr %q", code, stderr)
	}
}

func TestSitemapFetch(t *testing.T) {
	home := setupHome(t)
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc></url>
  <url><loc> https://example.com/about </loc></url>
</urlset>`))
	}))
	defer server.Close()

	code, stdout, stderr := runCLI(t, "", "sitemap", "fetch", "--url", server.URL+"/sitemap.xml", "--timeout", "5")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if stdout != "https://example.com/\nhttps://example.com/about\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if userAgent != "developer-utility-toolkit/"+version {
		t.Errorf("User-Agent = %q", userAgent)
	}
	if entry := lastEntry(t, home); entry.Details != "2 urls" {
		t.Errorf("history details = %q", entry.Details)
	}
}

func TestSitemapFetchHTTPError(t *testing.T) {
	setupHome(t)
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	code, _, stderr := runCLI(t, "", "sitemap", "fetch", "--url", server.URL)
	if code != 2 || !strings.Contains(stderr, "404") {
		t.Errorf("code %d, stderr %q", code, stderr)
	}
}

// Tests for recent commands

func TestRecentShow(t *testing.T) {
	setupHome(t)

	code, stdout, _ := runCLI(t, "", "recent", "show")
	if code != 0 || stdout != "No history entries yet.\n" {
		t.Errorf("empty history: code %d, stdout %q", code, stdout)
	}

	runCLI(t, "", "analyze", "--text", "{}")
	runCLI(t, "", "analyze", "--text", "hello")

	code, stdout, _ = runCLI(t, "", "recent", "show", "--limit", "1")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 1 || !strings.HasSuffix(lines[0], " | analyze | success | text") {
		t.Errorf("recent show = %q", stdout)
	}

	code, _, stderr := runCLI(t, "", "recent", "show", "--limit", "0")
	if code != 2 || !strings.Contains(stderr, "limit must be >= 1") {
		t.Errorf("limit 0: code %d, stderr %q", code, stderr)
	}
}

func TestRecentClear(t *testing.T) {
	home := setupHome(t)
	runCLI(t, "", "analyze", "--text", "hello")

	code, stdout, _ := runCLI(t, "", "recent", "clear")
	if code != 0 || stdout != "History cleared.\n" {
		t.Errorf("code %d, stdout %q", code, stdout)
	}
	if entries := readHistory(t, home); len(entries) != 0 {
		t.Errorf("history after clear = %+v", entries)
	}
}

func TestRecentExport(t *testing.T) {
	setupHome(t)
	runCLI(t, "", "analyze", "--text", "hello")
	runCLI(t, "", "hash", "--text", "hello")
	outDir := t.TempDir()

	for _, format := range []string{"jsonl", "xz", "gzip", "sqlite"} {
		code, stdout, stderr := runCLI(t, "", "recent", "export", "--format", format, "--output-dir", outDir)
		if code != 0 {
			t.Fatalf("%s: exit code = %d, stderr = %s", format, code, stderr)
		}
		if !strings.HasPrefix(stdout, "Exported 2 entries to ") {
			t.Errorf("%s: stdout = %q", format, stdout)
		}
	}
	for _, name := range []string{"history.jsonl", "history.jsonl.xz", "history.jsonl.gz", "history.db"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing export %s: %v", name, err)
		}
	}

	code, stdout, stderr := runCLI(t, "", "recent", "export", "--out", "backup.jsonl.gz", "--output-dir", outDir)
	if code != 0 || !strings.HasSuffix(stdout, "backup.jsonl.gz\n") {
		t.Fatalf("inferred format: code %d, stdout %q, stderr %q", code, stdout, stderr)
	}
	data, err := archive.ReadFile(filepath.Join(outDir, "backup.jsonl.gz"), archive.Gzip)
	if err != nil || bytes.Count(data, []byte("\n")) != 2 {
		t.Errorf("inferred gzip export = %q, %v", data, err)
	}

	code, _, stderr = runCLI(t, "", "recent", "export", "--format", "csv", "--output-dir", outDir)
	if code != 2 || !strings.Contains(stderr, "unsupported export format") {
		t.Errorf("csv: code %d, stderr %q", code, stderr)
	}
}

func TestNoHistory(t *testing.T) {
	home := setupHome(t)
	t.Setenv("TOOLKIT_NO_HISTORY", "true")
	runCLI(t, "", "analyze", "--text", "hello")

	t.Setenv("TOOLKIT_NO_HISTORY", "false")
	runCLI(t, "", "--no-history", "analyze", "--text", "hello")

	if entries := readHistory(t, home); len(entries) != 0 {
		t.Errorf("history should be empty, got %+v", entries)
	}
}

// Tests for configuration and the command surface

func TestConfigFileDefaults(t *testing.T) {
	home := setupHome(t)
	for _, text := range []string{"a", "b", "c"} {
		runCLI(t, "", "analyze", "--text", text)
	}
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("limit: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	code, stdout, _ := runCLI(t, "", "recent", "show")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if lines := strings.Split(strings.TrimSpace(stdout), "\n"); len(lines) != 2 {
		t.Errorf("config limit ignored: %q", stdout)
	}
}

func TestVersionAndHelp(t *testing.T) {
	setupHome(t)

	code, stdout, _ := runCLI(t, "", "version")
	info := sqlite.GetInfo()
	want := "toolkit " + version + "\nsqlite driver: " + info.DriverName + " (" + info.DriverType + ", " + info.Package + ")\n"
	if code != 0 || stdout != want {
		t.Errorf("version: code %d, stdout %q", code, stdout)
	}

	code, stdout, _ = runCLI(t, "", "--help")
	if code != 0 || !strings.Contains(stdout, "convert-all") {
		t.Errorf("help: code %d, stdout %q", code, stdout)
	}
}

func TestUsageErrors(t *testing.T) {
	setupHome(t)
	for _, args := range [][]string{
		{},
		{"bogus"},
		{"format", "--text", "x"},
		{"convert", "--unknown-flag"},
		{"--log-level", "loud", "version"},
	} {
		code, _, stderr := runCLI(t, "", args...)
		if code != 2 {
			t.Errorf("args %v: exit code = %d, want 2", args, code)
		}
		if !strings.HasPrefix(stderr, "Error: ") {
			t.Errorf("args %v: stderr = %q", args, stderr)
		}
	}
}
