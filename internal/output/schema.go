// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
)

// Field is one addressable path in a response type, as reported by --schema.
type Field struct {
	Path string
	Kind string
}

const maxSchemaDepth = 4

var timeType = reflect.TypeOf(time.Time{})

// DumpSchema writes the sorted field paths of the items selected by prefix
// from the response type typ.  prefix is normally the command's --select, so
// the paths can be used directly with --attrs, --filter and --sort.  When the
// prefix does not resolve to a type the whole response is described.
func DumpSchema(w io.Writer, prefix string, typ reflect.Type) {
	if it, ok := SchemaFor(typ, prefix); ok && it.Kind() == reflect.Struct {
		typ = it
	} else {
		prefix = ""
	}

	fields := SchemaWalker("", typ, 0)
	if len(fields) == 0 {
		log.Debugf("no fields found for type: %s", typ)
		return
	}

	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Path < fields[j].Path
	})

	name := indirect(typ).Name()
	if prefix != "" && prefix != "*" {
		name = fmt.Sprintf("%s (%s)", name, prefix)
	}
	fmt.Fprintln(w, "Schema for", name, "--")

	width := 0
	for _, f := range fields {
		width = max(width, len(f.Path))
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%-*s  %s\n", width, f.Path, f.Kind)
	}
}

// SchemaFor resolves prefix inside typ and returns the type the items of that
// selection have.  A slice selection yields its element type.
func SchemaFor(typ reflect.Type, prefix string) (reflect.Type, bool) {
	typ = indirect(typ)
	if prefix == "" || prefix == "*" {
		return typ, true
	}

	for _, seg := range strings.Split(strings.Trim(prefix, "."), ".") {
		typ = indirect(elem(typ))
		if typ.Kind() != reflect.Struct {
			return nil, false
		}
		field, ok := typ.FieldByName(seg)
		if !ok {
			return nil, false
		}
		typ = indirect(field.Type)
	}

	return indirect(elem(typ)), true
}

// SchemaWalker recursively walks a struct type by exported Go field names,
// which are also the JSON keys of the marshalled response.
func SchemaWalker(holder string, typ reflect.Type, depth int) []Field {
	typ = indirect(typ)
	if typ.Kind() != reflect.Struct {
		return nil
	}

	fields := make([]Field, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() || sf.Name == metadataKey {
			continue
		}

		path := sf.Name
		if holder != "" {
			path = holder + "." + sf.Name
		}

		ft := indirect(sf.Type)
		fields = append(fields, Field{Path: path, Kind: kindOf(ft)})

		inner := indirect(elem(ft))
		if inner.Kind() == reflect.Struct && inner != timeType && depth < maxSchemaDepth {
			fields = append(fields, SchemaWalker(path, inner, depth+1)...)
		}
	}

	return fields
}

func kindOf(t reflect.Type) string {
	if t == timeType {
		return "time"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return "blob"
		}
		return "list of " + kindOf(indirect(t.Elem()))
	case reflect.Map:
		return "map"
	case reflect.Struct:
		return "object"
	default:
		return t.Kind().String()
	}
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func elem(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Slice || t.Kind() == reflect.Array {
		return t.Elem()
	}
	return t
}
