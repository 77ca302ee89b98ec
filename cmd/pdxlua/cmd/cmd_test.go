package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spicery/pdxlua/pkg/grammar"
	"github.com/spicery/pdxlua/pkg/lexer"
)

// runCLI executes the root command with fresh flag values.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfgFile, verbose, inputFile, outputFile, exit0 = "", false, "", "", false
	parseFormat, replFormat, makeConfigFormat = "json", "json", "yaml"

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestTokensCommand(t *testing.T) {
	out, err := runCLI(t, `x = "hello world"`, "tokens")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 token lines, got %d: %q", len(lines), out)
	}
	expected := `{"kind":"literal","text":"\"hello world\"","literal":"string","value":"hello world","pos":{"line":1,"col":5}}`
	if lines[2] != expected {
		t.Errorf("Expected %s, got %s", expected, lines[2])
	}
}

func TestTokensCommandFiles(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "script.lua", "fn f ( ) # comment\n")
	config := writeFile(t, dir, "lexer.yaml", "comment: \"#\"\nkeyword:\n  - text: fn\n    keyword: function\n")
	output := filepath.Join(dir, "tokens.jsonl")

	if _, err := runCLI(t, "", "tokens", "--input", input, "--output", output, "--config", config); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 || !strings.Contains(lines[0], `"keyword":"function"`) {
		t.Errorf("Expected 4 tokens starting with function, got %q", data)
	}
}

func TestTokensCommandLexError(t *testing.T) {
	out, err := runCLI(t, "a \"open", "tokens")
	if !errors.Is(err, lexer.ErrUnterminatedString) {
		t.Fatalf("Expected ErrUnterminatedString, got %v", err)
	}
	if !strings.Contains(err.Error(), "LEXICAL ERROR at 1:3") {
		t.Errorf("Expected a lexical diagnostic, got %q", err.Error())
	}
	if !strings.Contains(out, `"text":"a"`) {
		t.Errorf("Expected the token before the error to be printed, got %q", out)
	}

	if _, err := runCLI(t, "a \"open", "tokens", "--exit0"); err != nil {
		t.Errorf("Expected --exit0 to suppress the error, got %v", err)
	}
}

func TestParseCommand(t *testing.T) {
	out, err := runCLI(t, "foo ( a , b )\n", "parse")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, `{"rule":"FUNCTION_CALL"`) {
		t.Errorf("Expected a FUNCTION_CALL line, got %q", out)
	}

	out, err = runCLI(t, "x = 1\ny = { k = v }\n", "parse", "--format", "yaml")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"- rule: ASSIGNMENT", "rule: TABLE", "text: v"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected YAML containing %q, got:\n%s", want, out)
		}
	}
}

func TestParseCommandErrors(t *testing.T) {
	out, err := runCLI(t, "x = 1\nlocal y = 2\n", "parse")
	if !errors.Is(err, grammar.ErrUnexpectedToken) {
		t.Fatalf("Expected ErrUnexpectedToken, got %v", err)
	}
	if !strings.Contains(err.Error(), "PARSE ERROR at 2:7") {
		t.Errorf("Expected a parse diagnostic, got %q", err.Error())
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("Expected the statement before the error, got %q", out)
	}

	if _, err := runCLI(t, "x = 1\nlocal y = 2\n", "parse", "--exit0"); err != nil {
		t.Errorf("Expected --exit0 to suppress the error, got %v", err)
	}
	if _, err := runCLI(t, "x = 1", "parse", "--format", "xml"); err == nil {
		t.Errorf("Expected an error for an unknown format")
	}
}

func TestParseCommandVerbose(t *testing.T) {
	var logs bytes.Buffer
	cfgFile, verbose, inputFile, outputFile, exit0 = "", false, "", "", false
	parseFormat = "json"
	rootCmd.SetIn(strings.NewReader("end\n"))
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(&logs)
	rootCmd.SetArgs([]string{"parse", "--verbose"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"msg=selected", "rule=BLOCK_END", "parse="} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("Expected logs containing %q, got:\n%s", want, logs.String())
		}
	}
}

func TestMakeConfigRoundTrip(t *testing.T) {
	for _, format := range []string{"yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			out, err := runCLI(t, "", "make-config", "--format", format)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			path := writeFile(t, t.TempDir(), "lexer."+format, out)
			file, err := lexer.LoadConfigFile(path)
			if err != nil {
				t.Fatalf("Failed to load generated config: %v", err)
			}
			cfg, err := lexer.ApplyConfigToDefaults(file)
			if err != nil {
				t.Fatalf("Failed to apply generated config: %v", err)
			}

			defaults := lexer.DefaultConfig()
			if !reflect.DeepEqual(cfg.SpecialChars, defaults.SpecialChars) || cfg.Comment != defaults.Comment {
				t.Errorf("Expected the defaults back, got %v %q", cfg.SpecialChars, cfg.Comment)
			}
		})
	}

	if _, err := runCLI(t, "", "make-config", "--format", "ini"); err == nil {
		t.Errorf("Expected an error for an unknown format")
	}
}

func TestMakeConfigWithAliases(t *testing.T) {
	config := writeFile(t, t.TempDir(), "lexer.toml", "[[keyword]]\ntext = \"fn\"\nkeyword = \"function\"\n")
	out, err := runCLI(t, "", "make-config", "--config", config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "text: fn") || !strings.Contains(out, "keyword: function") {
		t.Errorf("Expected the alias in the output, got:\n%s", out)
	}
}

func TestRenderSnippet(t *testing.T) {
	src := "x = 1\nlocal y = 2\nz = 3\n"
	got := renderSnippet(src, "PARSE ERROR", "", lexer.Position{Line: 2, Col: 7}, "bad")
	expected := "PARSE ERROR at 2:7: bad\n\n" +
		"   1 | x = 1\n" +
		"   2 | local y = 2\n" +
		"     |       ^\n" +
		"   3 | z = 3\n"
	if got != expected {
		t.Errorf("Expected:\n%s\ngot:\n%s", expected, got)
	}

	// Out-of-range positions are clamped.
	got = renderSnippet("a", "PARSE ERROR", "f.lua", lexer.Position{Line: 9, Col: 0}, "bad")
	if !strings.HasPrefix(got, "PARSE ERROR in f.lua at 1:1: bad") {
		t.Errorf("Expected a clamped header, got %q", got)
	}
}

func TestWithSourceLeavesOtherErrors(t *testing.T) {
	err := errors.New("plain")
	if withSource(err, "", "x") != err {
		t.Errorf("Expected a non-source error to pass through unchanged")
	}
}

// fakePrompter replays canned lines, then reports io.EOF.
type fakePrompter struct {
	lines   []string
	prompts []string
}

func (f *fakePrompter) Prompt(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func newTestSession(out, errOut io.Writer) *session {
	return &session{
		grammar: grammar.Dialect(),
		config:  lexer.DefaultConfig(),
		out:     out,
		errOut:  errOut,
		format:  "json",
		options: func() []grammar.Option { return nil },
	}
}

func TestReadByParseProbe(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		src     string
		prompts []string
	}{
		{"Complete line", []string{"x = 1"}, "x = 1", []string{promptMain}},
		{"Open call", []string{"foo (", "a ,", "b )"}, "foo ( a , b )", []string{promptMain, promptCont, promptCont}},
		{"Open string", []string{`x = "a`, `b"`}, `x = "a b"`, []string{promptMain, promptCont}},
		{"Open table", []string{"t = {", "k = 1 }"}, "t = { k = 1 }", []string{promptMain, promptCont}},
		{"Error ends entry", []string{"local y"}, "local y", []string{promptMain}},
		{"Command", []string{":quit"}, ":quit", []string{promptMain}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePrompter{lines: tt.lines}
			src, ok := newTestSession(io.Discard, io.Discard).readByParseProbe(p)
			if !ok {
				t.Fatalf("Expected an entry")
			}
			if src != tt.src {
				t.Errorf("Expected %q, got %q", tt.src, src)
			}
			if !reflect.DeepEqual(p.prompts, tt.prompts) {
				t.Errorf("Expected prompts %q, got %q", tt.prompts, p.prompts)
			}
		})
	}

	p := &fakePrompter{}
	if _, ok := newTestSession(io.Discard, io.Discard).readByParseProbe(p); ok {
		t.Errorf("Expected end of input to stop reading")
	}
}

func TestSessionRun(t *testing.T) {
	var out, errOut bytes.Buffer
	s := newTestSession(&out, &errOut)
	var history []string
	s.history = func(line string) { history = append(history, line) }

	p := &fakePrompter{lines: []string{"x = 1", "", "local y", ":help", "end", ":quit", "never read"}}
	s.run(p)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "ASSIGNMENT") || !strings.Contains(lines[1], "BLOCK_END") {
		t.Errorf("Expected ASSIGNMENT and BLOCK_END, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "PARSE ERROR at 1:7") {
		t.Errorf("Expected a parse diagnostic, got %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "unknown command") {
		t.Errorf("Expected an unknown command message, got %q", errOut.String())
	}
	if !reflect.DeepEqual(history, []string{"x = 1", "local y", "end"}) {
		t.Errorf("Expected history of parsed entries, got %q", history)
	}
	if len(p.lines) != 1 {
		t.Errorf("Expected :quit to stop the loop, %d lines left", len(p.lines))
	}
}
