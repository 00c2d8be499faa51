package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func parseNDJSON(t *testing.T, s string) []map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(s), "\n")
	out := make([]map[string]any, 0, len(lines))
	for _, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(ln), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", ln, err)
		}
		out = append(out, m)
	}
	return out
}

// fixture 返回 项目 glob、语言 glob。
func fixture(t *testing.T, source string, locales map[string]string) (string, string) {
	t.Helper()
	tmp := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmp, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(tmp, "i18n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmp, "src", "app.tsx"), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	for name, content := range locales {
		if err := os.WriteFile(filepath.Join(tmp, "i18n", name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(tmp, "src", "**", "*.tsx"), filepath.Join(tmp, "i18n", "*.json")
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := execute(context.Background(), args, stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	for _, args := range [][]string{{"-v"}, {"version"}} {
		code, out, _ := run(t, args...)
		if code != ExitOK {
			t.Fatalf("%v: unexpected code %d", args, code)
		}
		if !strings.Contains(out, "react-intl-lint 版本：") {
			t.Fatalf("%v: unexpected output: %q", args, out)
		}
	}
}

func TestMissingInputs(t *testing.T) {
	code, _, stderr := run(t)
	if code != ExitArg {
		t.Fatalf("unexpected code: %d", code)
	}
	if !strings.Contains(stderr, "--project") {
		t.Fatalf("unexpected stderr: %q", stderr)
	}

	code, out, _ := run(t, "--format", "ndjson")
	if code != ExitArg {
		t.Fatalf("unexpected code: %d", code)
	}
	events := parseNDJSON(t, out)
	if len(events) != 3 || events[1]["code"] != "arg_missing_inputs" || events[1]["next_action"] == "" {
		t.Fatalf("unexpected events: %#v", events)
	}
}

func TestArgErrors(t *testing.T) {
	cases := [][]string{
		{"--format", "xml", "-p", "a", "-l", "b"},
		{"--no-such-flag"},
		{"--max-file-size", "huge", "-p", "a", "-l", "b"},
		{"--log-level", "loud", "-p", "a", "-l", "b"},
		{"positional"},
	}
	for _, args := range cases {
		if code, _, _ := run(t, args...); code != ExitArg {
			t.Fatalf("%v: expected ExitArg, got %d", args, code)
		}
	}
}

func TestConfigErrors(t *testing.T) {
	if code, _, _ := run(t, "-p", "a", "-l", "b", "--zombie-keys", "loud"); code != ExitConfig {
		t.Fatalf("invalid severity: expected ExitConfig, got %d", code)
	}
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	code, out, _ := run(t, "--config", missing, "--format=json")
	if code != ExitConfig {
		t.Fatalf("missing config: expected ExitConfig, got %d", code)
	}
	if !strings.Contains(out, "config_invalid") {
		t.Fatalf("expected config_invalid event: %s", out)
	}
}

func TestNDJSONOutput(t *testing.T) {
	project, languages := fixture(t, "const a = t('common.save');\n", map[string]string{
		"en.json": `{"common": {"save": "Save"}}`,
		"fr.json": `{"common": {}}`,
	})
	code, out, _ := run(t, "-p", project, "-l", languages, "--format", "ndjson")
	if code != ExitViolation {
		t.Fatalf("expected ExitViolation, got %d", code)
	}
	events := parseNDJSON(t, out)
	if events[0]["type"] != "meta" || events[len(events)-1]["type"] != "summary" {
		t.Fatalf("unexpected event order: %#v", events)
	}
	var results []map[string]any
	for _, e := range events {
		if e["type"] == "result" {
			results = append(results, e)
		}
	}
	if len(results) != 1 || results[0]["rule"] != "keysOnViews" || results[0]["key"] != "common.save" {
		t.Fatalf("unexpected results: %#v", results)
	}
	if !strings.HasSuffix(results[0]["file"].(string), "fr.json") {
		t.Fatalf("unexpected file: %v", results[0]["file"])
	}
	if events[len(events)-1]["exit_code"] != float64(ExitViolation) {
		t.Fatalf("unexpected summary: %#v", events[len(events)-1])
	}
}

func TestTextOutputPass(t *testing.T) {
	project, languages := fixture(t, "const a = t('common.save');\n", map[string]string{
		"en.json": `{"common": {"save": "Save"}}`,
	})
	code, out, _ := run(t, "-p", project, "-l", languages, "--no-color")
	if code != ExitOK {
		t.Fatalf("expected ExitOK, got %d: %s", code, out)
	}
	if !strings.HasPrefix(out, "通过") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestYAMLOutputAndSeverityFlag(t *testing.T) {
	project, languages := fixture(t, "const a = t('common.save');\n", map[string]string{
		"en.json": `{"common": {"save": "Save", "title": ""}}`,
	})
	code, out, _ := run(t, "-p", project, "-l", languages, "--format", "yaml", "--empty-keys", "error", "--zombie-keys", "disable")
	if code != ExitViolation {
		t.Fatalf("expected ExitViolation, got %d", code)
	}
	var doc struct {
		Events []map[string]any `yaml:"events"`
	}
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	found := false
	for _, e := range doc.Events {
		if e["type"] == "result" {
			if e["rule"] != "emptyKeys" || e["severity"] != "error" {
				t.Fatalf("unexpected result: %#v", e)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an emptyKeys result: %s", out)
	}
}

func TestFatalNoProjectFiles(t *testing.T) {
	_, languages := fixture(t, "", map[string]string{"en.json": `{"a": "A"}`})
	project := filepath.Join(t.TempDir(), "**", "*.vue")
	code, out, _ := run(t, "-p", project, "-l", languages, "--no-color")
	if code != ExitInput {
		t.Fatalf("expected ExitInput, got %d", code)
	}
	if !strings.Contains(out, "致命错误") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestConfigFileAndMetrics(t *testing.T) {
	project, languages := fixture(t, "const a = t('common.save');\n", map[string]string{
		"en.json": `{"common": {"save": "Save"}, "old": {"legacy": "x"}}`,
	})
	dir := t.TempDir()
	cfg := filepath.Join(dir, "lint.yaml")
	content := "project: " + project + "\nlanguages: " + languages + "\nfixZombiesKeys: true\nrules:\n  zombieKeys: warning\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	metricsFile := filepath.Join(dir, "lint.prom")
	code, out, _ := run(t, "--config", cfg, "--format", "ndjson", "--metrics-file", metricsFile)
	if code != ExitOK {
		t.Fatalf("expected ExitOK, got %d: %s", code, out)
	}
	fixes := 0
	for _, e := range parseNDJSON(t, out) {
		if e["type"] == "fix" {
			fixes++
		}
	}
	if fixes != 1 {
		t.Fatalf("expected one fix event: %s", out)
	}
	b, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(b), "react_intl_lint_fixed_keys_total 1") {
		t.Fatalf("unexpected metrics:\n%s", b)
	}
}
