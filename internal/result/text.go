package result

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"react-intl-lint/internal/rules"
	"react-intl-lint/internal/textutil"
)

type TextOptions struct {
	NoColor bool
	// BaseDir 非空时路径显示为相对路径。
	BaseDir string
}

type palette struct {
	err, warn, dim, ok, fail func(a ...interface{}) string
}

func newPalette(noColor bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if noColor {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		err:  mk(color.Bold, color.FgRed),
		warn: mk(color.Bold, color.FgYellow),
		dim:  mk(color.FgHiBlack),
		ok:   mk(color.Bold, color.FgGreen),
		fail: mk(color.Bold, color.FgRed),
	}
}

// WriteText 输出对齐的结果表和汇总行。列宽按显示宽度计算，中文键名不会错位。
func WriteText(w io.Writer, m *CliModel, opts TextOptions) error {
	p := newPalette(opts.NoColor)
	if m.HasFatal() {
		_, err := fmt.Fprintln(w, p.fail(m.Summary()))
		return err
	}

	rows := make([][4]string, 0, len(m.Entries))
	var widths [4]int
	for _, e := range m.Entries {
		loc := displayPath(e.File, opts.BaseDir)
		if e.Direction == DirectionMissing && e.View != "" {
			loc = fmt.Sprintf("%s:%d:%d", displayPath(e.View, opts.BaseDir), e.Line, e.Column)
		}
		row := [4]string{e.Severity.String(), string(e.Rule), e.Key, loc}
		for i, cell := range row {
			if dw := textutil.DisplayWidth(cell); dw > widths[i] {
				widths[i] = dw
			}
		}
		rows = append(rows, row)
	}
	for i, row := range rows {
		e := m.Entries[i]
		sev := runewidth.FillRight(row[0], widths[0])
		switch e.Severity {
		case rules.SeverityError:
			sev = p.err(sev)
		case rules.SeverityWarning:
			sev = p.warn(sev)
		}
		line := strings.Join([]string{
			"  " + sev,
			runewidth.FillRight(row[1], widths[1]),
			runewidth.FillRight(row[2], widths[2]),
			p.dim(runewidth.FillRight(row[3], widths[3])),
		}, "  ")
		if e.Suggestion != "" {
			line += "  " + fmt.Sprintf("→ %s", e.Suggestion)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	summary := m.Summary()
	if m.Passed() {
		summary = p.ok(summary)
	} else {
		summary = p.fail(summary)
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

func displayPath(p, base string) string {
	if p == "" || base == "" || strings.Contains(p, "://") {
		return p
	}
	if rel, err := filepath.Rel(base, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p
}
