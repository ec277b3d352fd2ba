package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ppiankov/schemeqa/internal/model"
)

const maxCellWidth = 60

// renderAnswer prints the answer as terminal markdown, or verbatim when raw
func renderAnswer(w io.Writer, answer string, raw bool) {
	if raw {
		fmt.Fprintln(w, answer)
		return
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err == nil {
		if out, err := renderer.Render(answer); err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprintln(w, answer)
}

// newTable returns a light-style table writing to w. Headers keep the
// catalog's column names as written.
func newTable(w io.Writer) table.Writer {
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(style)
	return t
}

// detailColumns returns the key column followed by every attribute key in
// order of first appearance
func detailColumns(details []model.SchemeRecord) []string {
	keyColumn := details[0].KeyColumn
	if keyColumn == "" {
		keyColumn = model.DefaultKeyColumn
	}
	cols := []string{keyColumn}
	seen := map[string]bool{keyColumn: true}
	for _, rec := range details {
		for _, attr := range rec.Attributes {
			if !seen[attr.Key] {
				seen[attr.Key] = true
				cols = append(cols, attr.Key)
			}
		}
	}
	return cols
}

// renderDetails prints resolved scheme records as a table
func renderDetails(w io.Writer, details []model.SchemeRecord) {
	if len(details) == 0 {
		fmt.Fprintln(w, "No relevant schemes found.")
		return
	}

	cols := detailColumns(details)

	t := newTable(w)

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c
		configs[i] = table.ColumnConfig{Number: i + 1, WidthMax: maxCellWidth}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, rec := range details {
		row := make(table.Row, len(cols))
		row[0] = rec.Name
		for i, c := range cols[1:] {
			val, _ := rec.Get(c)
			row[i+1] = val
		}
		t.AppendRow(row)
	}
	t.Render()
}

// renderRecord prints one scheme as a two-column key/value table
func renderRecord(w io.Writer, rec model.SchemeRecord) {
	keyColumn := rec.KeyColumn
	if keyColumn == "" {
		keyColumn = model.DefaultKeyColumn
	}

	t := newTable(w)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
	t.AppendRow(table.Row{keyColumn, rec.Name})
	t.AppendSeparator()
	for _, attr := range rec.Attributes {
		t.AppendRow(table.Row{attr.Key, attr.Value})
	}
	t.Render()
}

// renderCategories prints the category index, flagging names missing from the table
func renderCategories(w io.Writer, index model.CategoryIndex, lookup func(string) (model.SchemeRecord, bool)) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Scheme", "In table"})
	for _, cat := range index {
		for i, scheme := range cat.Schemes {
			name := ""
			if i == 0 {
				name = cat.Name
			}
			status := "yes"
			if _, ok := lookup(scheme); !ok {
				status = "missing"
			}
			t.AppendRow(table.Row{name, scheme, status})
		}
		if len(cat.Schemes) == 0 {
			t.AppendRow(table.Row{cat.Name, "", ""})
		}
		t.AppendSeparator()
	}
	t.Render()
}

// indent prefixes every line of s
func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
