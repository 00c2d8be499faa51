package output

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestWriteNDJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	events := []map[string]any{{"type": "meta"}, {"type": "summary", "key": "a<b>"}}
	if err := Write(buf, FormatNDJSON, events); err != nil {
		t.Fatalf("write ndjson failed: %v", err)
	}
	out := strings.TrimSpace(buf.String())
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected lines: %q", out)
	}
	if !strings.Contains(lines[1], "a<b>") {
		t.Fatalf("html should not be escaped: %s", lines[1])
	}
}

func TestWriteJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	events := []map[string]any{{"type": "meta"}}
	if err := Write(buf, FormatJSON, events); err != nil {
		t.Fatalf("write json failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\"events\"") {
		t.Fatalf("unexpected json: %s", buf.String())
	}
}

func TestWriteYAML(t *testing.T) {
	buf := &bytes.Buffer{}
	events := []map[string]any{{"type": "result", "key": "common.save"}, {"type": "summary", "pass": false}}
	if err := Write(buf, FormatYAML, events); err != nil {
		t.Fatalf("write yaml failed: %v", err)
	}
	var back struct {
		Events []map[string]any `yaml:"events"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("yaml output not parseable: %v\n%s", err, buf.String())
	}
	if len(back.Events) != 2 || back.Events[0]["key"] != "common.save" || back.Events[1]["pass"] != false {
		t.Fatalf("unexpected yaml events: %#v", back.Events)
	}
}

func TestValidateFormat(t *testing.T) {
	for in, want := range map[string]string{"text": "text", "NDJSON": "ndjson", " json ": "json", "yml": "yaml"} {
		got, err := ValidateFormat(in)
		if err != nil || got != want {
			t.Fatalf("ValidateFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ValidateFormat("xml"); err == nil {
		t.Fatalf("expected format error")
	}
	if Machine(FormatText) || !Machine(FormatYAML) {
		t.Fatalf("unexpected Machine result")
	}
}

func TestWriteInvalidFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "bad", nil); err == nil {
		t.Fatalf("expected format error")
	}
}
