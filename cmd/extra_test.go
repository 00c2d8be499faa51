package cmd

import "testing"

func TestExitErrorString(t *testing.T) {
	if (&ExitError{Code: 2, Msg: "x"}).Error() != "x" {
		t.Fatalf("unexpected exit error msg")
	}
	if (&ExitError{Code: 2}).Error() == "" {
		t.Fatalf("empty code message")
	}
	if (&ExitError{Code: ExitConfig}).category() != "config" {
		t.Fatalf("unexpected category")
	}
}

func TestDetectFormatFromArgs(t *testing.T) {
	cases := []struct {
		in  []string
		out string
	}{
		{[]string{"--format", "ndjson"}, "ndjson"},
		{[]string{"--format=JSON"}, "json"},
		{[]string{"--format", "yml"}, "yaml"},
		{[]string{"--format", "text"}, ""},
		{[]string{"--format", "xml"}, ""},
		{[]string{"-p", "x"}, ""},
		{[]string{"--format"}, ""},
	}
	for _, c := range cases {
		if got := detectFormatFromArgs(c.in); got != c.out {
			t.Fatalf("detectFormatFromArgs(%v) = %q want %q", c.in, got, c.out)
		}
	}
}

func TestCliHintByCode(t *testing.T) {
	for _, code := range []string{"arg_missing_inputs", "invalid_output_format", "config_invalid", "unknown"} {
		h := cliHintByCode(code)
		if h.NextAction == "" || h.FixExample == "" || h.DocKey == "" {
			t.Fatalf("incomplete hint for %s: %+v", code, h)
		}
	}
}
