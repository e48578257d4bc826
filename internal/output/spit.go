// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/awsctlgo/internal/attrs"
	"github.com/staranto/awsctlgo/internal/config"
	"github.com/staranto/awsctlgo/internal/filters"
)

// Options are the rendering flags shared by every command.
type Options struct {
	Output string
	Filter string
	Sort   string
	Titles bool
	Color  bool
	Local  bool
}

// OptionsFrom reads the rendering flags from a command.
func OptionsFrom(cmd *cli.Command) Options {
	return Options{
		Output: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
		Local:  cmd.Bool("local"),
	}
}

// ResolveAttrs builds the attr list for a dataset.  Command defaults are
// extended by the user's spec the same way repeated --attrs entries extend
// each other.  Without command defaults the top level keys of the items are
// used, unless the user named columns of their own.
func ResolveAttrs(defaults string, spec string, dataset gjson.Result) (attrs.AttrList, error) {
	var al attrs.AttrList

	base := defaults
	if base == "" && !specIncludes(spec) {
		base = strings.Join(itemKeys(dataset), ",")
	}

	if err := al.Set(base); err != nil {
		return nil, err
	}
	if err := al.Set(spec); err != nil {
		return nil, err
	}
	if err := al.SetGlobalTransformSpec(); err != nil {
		return nil, err
	}

	return al, nil
}

// specIncludes reports whether spec names at least one column to show.
func specIncludes(spec string) bool {
	for _, s := range strings.Split(spec, ",") {
		key := strings.TrimSpace(strings.SplitN(s, ":", 2)[0])
		if key != "" && key != "*" && !strings.HasPrefix(key, "!") {
			return true
		}
	}
	return false
}

// itemKeys returns the top level keys of the items in order of first
// appearance.
func itemKeys(dataset gjson.Result) []string {
	seen := map[string]bool{}
	var keys []string
	for _, item := range dataset.Array() {
		item.ForEach(func(key, _ gjson.Result) bool {
			k := key.String()
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
			return true
		})
	}
	return keys
}

// SliceDiceSpit orchestrates filtering, transforming, sorting and rendering
// of the selected items according to the rendering options.
func SliceDiceSpit(items []string,
	attrList attrs.AttrList,
	opts Options,
	w io.Writer) error {

	// If raw, just dump it and go home.
	if opts.Output == "raw" {
		_, err := w.Write(RawItems(items))
		return err
	}

	dataset := Items(items)

	// Filter out the rows we don't want. Do it here so that the following
	// processes are slightly more efficient since they'll be working on a smaller
	// dataset.
	filteredDataset := filters.FilterDataset(dataset, attrList, opts.Filter)

	if opts.Local {
		for a := range attrList {
			attrList[a].TransformSpec += "t"
		}
	}

	// Transform each value in each row.
	for _, row := range filteredDataset {
		for i := range attrList {
			attr := &attrList[i]
			if attr.TransformSpec != "" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
	}

	SortDataset(filteredDataset, opts.Sort)

	switch opts.Output {
	case "json":
		out, err := orderedJSON(filteredDataset, attrList)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "yaml":
		out, err := yaml.Marshal(orderedYAML(filteredDataset, attrList))
		if err != nil {
			return fmt.Errorf("failed to render yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "text", "":
		TableWriter(filteredDataset, attrList, opts, w)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Output)
	}
}

// orderedYAML keeps the --attrs column order, which plain maps would lose.
func orderedYAML(rows []map[string]interface{}, attrList attrs.AttrList) []yaml.MapSlice {
	out := make([]yaml.MapSlice, 0, len(rows))
	for _, row := range rows {
		ms := yaml.MapSlice{}
		for _, attr := range attrList {
			if attr.Include {
				ms = append(ms, yaml.MapItem{Key: attr.OutputKey, Value: row[attr.OutputKey]})
			}
		}
		out = append(out, ms)
	}
	return out
}

func orderedJSON(rows []map[string]interface{}, attrList attrs.AttrList) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		first := true
		for _, attr := range attrList {
			if !attr.Include {
				continue
			}
			k, err := json.Marshal(attr.OutputKey)
			if err != nil {
				return nil, err
			}
			v, err := json.Marshal(row[attr.OutputKey])
			if err != nil {
				return nil, fmt.Errorf("failed to render json: %w", err)
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to render json: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// palette holds the table foreground colors, read from colors.title,
// colors.even and colors.odd.
type palette struct {
	title, even, odd string
}

func loadPalette() palette {
	p := palette{title: "#f6be00", even: "#ffffff", odd: "#00c8f0"}
	for key, dst := range map[string]*string{"title": &p.title, "even": &p.even, "odd": &p.odd} {
		*dst, _ = config.GetString("colors."+key, *dst)
	}
	return p
}

// borderless is a table with every border hidden.
func borderless() *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false)
}

// TableWriter renders the included columns of resultSet as a table.  Rows
// alternate colors when opts.Color is set, and every column after the first
// is padded by the config file's padding (default 2).
func TableWriter(resultSet []map[string]interface{}, attrs attrs.AttrList, opts Options, w io.Writer) {
	if len(resultSet) == 0 {
		return
	}

	var headers []string
	for _, attr := range attrs {
		if attr.Include {
			headers = append(headers, attr.OutputKey)
		}
	}

	rows := make([][]string, 0, len(resultSet))
	for _, result := range resultSet {
		row := make([]string, 0, len(headers))
		for _, attr := range attrs {
			if attr.Include {
				row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
			}
		}
		rows = append(rows, row)
	}

	base := lipgloss.NewStyle().Align(lipgloss.Left)
	title, even, odd := base, base, base
	if opts.Color {
		p := loadPalette()
		title = title.Foreground(lipgloss.Color(p.title))
		even = even.Foreground(lipgloss.Color(p.even))
		odd = odd.Foreground(lipgloss.Color(p.odd))
	}

	pad, _ := config.GetInt("padding", 2)
	log.Debugf("table padding %d", pad)

	t := borderless().
		StyleFunc(func(row, col int) lipgloss.Style {
			style := odd
			if row == table.HeaderRow {
				style = title
			} else if row%2 == 0 {
				style = even
			}
			if col > 0 {
				return style.PaddingLeft(pad)
			}
			return style
		}).
		Rows(rows...)

	if opts.Titles {
		// Without BorderHeader(false) lipgloss draws a rule under hidden headers.
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// DumpExamples renders a two column table of example invocations.
func DumpExamples(w io.Writer, examples [][2]string) {
	if len(examples) == 0 {
		return
	}

	t := borderless().Headers("Command", "Description").BorderHeader(false)
	for _, ex := range examples {
		t = t.Row(ex[0], ex[1])
	}
	fmt.Fprintln(w, t)
}

// InterfaceToString renders a decoded JSON value as a table cell.  Zero values
// become the optional empty value, "" by default.  Maps and slices are shown
// as compact JSON.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if value == nil || reflect.ValueOf(value).IsZero() {
		if len(emptyValue) > 0 {
			return emptyValue[0]
		}
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		// Sizes, counts and epoch values are all integral.
		return strconv.FormatFloat(v, 'f', 0, 64)
	case bool:
		return strconv.FormatBool(v)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(b)
}
