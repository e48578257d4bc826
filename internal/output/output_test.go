// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/awsctlgo/internal/config"
)

func TestSortDataset(t *testing.T) {
	testData := []map[string]interface{}{
		{"name": "zebra", "count": 3.0, "mutability": "MUTABLE"},
		{"name": "alpha", "count": 1.0, "mutability": "IMMUTABLE"},
		{"name": "beta", "count": 2.0, "mutability": "MUTABLE"},
	}

	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{
			name:      "ascending by name",
			spec:      "name",
			wantOrder: []string{"alpha", "beta", "zebra"},
		},
		{
			name:      "descending by name",
			spec:      "-name",
			wantOrder: []string{"zebra", "beta", "alpha"},
		},
		{
			name:      "ascending by count",
			spec:      "count",
			wantOrder: []string{"alpha", "beta", "zebra"},
		},
		{
			name:      "descending by count",
			spec:      "-count",
			wantOrder: []string{"zebra", "beta", "alpha"},
		},
		{
			name:      "case sensitive",
			spec:      "!name",
			wantOrder: []string{"alpha", "beta", "zebra"},
		},
		{
			name:      "multiple fields",
			spec:      "count,name",
			wantOrder: []string{"alpha", "beta", "zebra"},
		},
		{
			name:      "string field then descending name",
			spec:      "mutability,-name",
			wantOrder: []string{"alpha", "zebra", "beta"},
		},
		{
			name:      "descending and case sensitive prefixes combine",
			spec:      "!-name",
			wantOrder: []string{"zebra", "beta", "alpha"},
		},
		{
			name:      "empty spec",
			spec:      "",
			wantOrder: []string{"zebra", "alpha", "beta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]map[string]interface{}, len(testData))
			copy(data, testData)
			SortDataset(data, tt.spec)
			for i, expectedName := range tt.wantOrder {
				assert.Equal(t, expectedName, data[i]["name"], "at index %d", i)
			}
		})
	}
}

func TestSortDataset_CaseSensitivity(t *testing.T) {
	rows := func() []map[string]interface{} {
		return []map[string]interface{}{
			{"name": "beta"},
			{"name": "Alpha"},
			{"name": "alpha2"},
		}
	}

	insensitive := rows()
	SortDataset(insensitive, "name")
	assert.Equal(t, "Alpha", insensitive[0]["name"])
	assert.Equal(t, "alpha2", insensitive[1]["name"])

	// Upper case sorts before lower case byte-wise.
	sensitive := rows()
	SortDataset(sensitive, "!name")
	assert.Equal(t, "Alpha", sensitive[0]["name"])
	assert.Equal(t, "alpha2", sensitive[1]["name"])
	assert.Equal(t, "beta", sensitive[2]["name"])

	mixed := []map[string]interface{}{{"name": "b"}, {"name": "B"}, {"name": "a"}}
	SortDataset(mixed, "!name")
	assert.Equal(t, []interface{}{"B", "a", "b"}, []interface{}{mixed[0]["name"], mixed[1]["name"], mixed[2]["name"]})
}

func TestInterfaceToString(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		empty []string
		want  string
	}{
		{name: "tag", value: "latest", want: "latest"},
		{name: "int", value: 42, want: "42"},
		{name: "image size", value: float64(734003200), want: "734003200"},
		{name: "half rounds to even", value: 42.5, want: "42"},
		{name: "fraction rounds", value: 42.7, want: "43"},
		{name: "scan on push", value: true, want: "true"},
		{name: "false is empty", value: false, want: ""},
		{name: "nil", value: nil, want: ""},
		{name: "nil with dash", value: nil, empty: []string{"-"}, want: "-"},
		{name: "zero count with placeholder", value: float64(0), empty: []string{"N/A"}, want: "N/A"},
		{name: "image tags", value: []interface{}{"v1", "latest"}, want: `["v1","latest"]`},
		{name: "severity counts", value: map[string]interface{}{"HIGH": float64(2)}, want: `{"HIGH":2}`},
		{name: "empty tag list", value: []interface{}{}, empty: []string{"-"}, want: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterfaceToString(tt.value, tt.empty...))
		})
	}
}

type testImage struct {
	ImageDigest      *string
	ImageTags        []string
	ImageSizeInBytes *int64
	ImagePushedAt    *time.Time
	ScanStatus       *testScanStatus
	unexported       string
}

type testScanStatus struct {
	Status      string
	Description *string
}

type testDescribeImagesOutput struct {
	ImageDetails   []testImage
	NextToken      *string
	ResultMetadata struct{ Values map[string]string }
}

func TestSchemaWalker(t *testing.T) {
	fields := SchemaWalker("", reflect.TypeOf(testImage{}), 0)

	got := map[string]string{}
	for _, f := range fields {
		got[f.Path] = f.Kind
	}

	assert.Equal(t, map[string]string{
		"ImageDigest":            "string",
		"ImageTags":              "list of string",
		"ImageSizeInBytes":       "number",
		"ImagePushedAt":          "time",
		"ScanStatus":             "object",
		"ScanStatus.Status":      "string",
		"ScanStatus.Description": "string",
	}, got)
}

func TestSchemaFor(t *testing.T) {
	typ := reflect.TypeOf(&testDescribeImagesOutput{})

	it, ok := SchemaFor(typ, "ImageDetails")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(testImage{}), it)

	it, ok = SchemaFor(typ, "ImageDetails.ScanStatus")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(testScanStatus{}), it)

	it, ok = SchemaFor(typ, "*")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(testDescribeImagesOutput{}), it)

	_, ok = SchemaFor(typ, "Nope")
	assert.False(t, ok)
}

func TestDumpSchema(t *testing.T) {
	var buf bytes.Buffer
	DumpSchema(&buf, "ImageDetails", reflect.TypeOf(&testDescribeImagesOutput{}))
	out := buf.String()

	assert.Contains(t, out, "Schema for testImage (ImageDetails) --")
	assert.Contains(t, out, "ScanStatus.Status")
	assert.NotContains(t, out, "NextToken")

	// An unresolvable selection describes the whole response.
	buf.Reset()
	DumpSchema(&buf, "^RepositoryName", reflect.TypeOf(&testDescribeImagesOutput{}))
	out = buf.String()
	assert.Contains(t, out, "NextToken")
	assert.NotContains(t, out, "ResultMetadata")
}

func TestMarshal(t *testing.T) {
	digest := "sha256:aa"
	out, err := Marshal(&testDescribeImagesOutput{
		ImageDetails: []testImage{{ImageDigest: &digest, ImageTags: []string{"latest"}}},
	})
	require.NoError(t, err)

	assert.NotContains(t, string(out), "ResultMetadata")
	assert.True(t, strings.HasPrefix(string(out), `{"ImageDetails":`))
	assert.Contains(t, string(out), `"ImageDigest":"sha256:aa"`)
}

func TestSelect(t *testing.T) {
	page := []byte(`{"Repositories":[{"RepositoryName":"a"},{"RepositoryName":"b"}],` +
		`"Single":[{"RepositoryName":"c"}],"Token":"abc","Empty":[],"Nil":null}`)

	tests := []struct {
		name string
		path string
		want []string
	}{
		{name: "array of objects", path: "Repositories", want: []string{`{"RepositoryName":"a"}`, `{"RepositoryName":"b"}`}},
		{name: "single element array", path: "Single", want: []string{`{"RepositoryName":"c"}`}},
		{name: "collected key", path: "Repositories.RepositoryName", want: []string{`"a"`, `"b"`}},
		{name: "scalar", path: "Token", want: []string{`"abc"`}},
		{name: "leading dot", path: ".Token", want: []string{`"abc"`}},
		{name: "empty array", path: "Empty", want: nil},
		{name: "null", path: "Nil", want: nil},
		{name: "missing", path: "Missing", want: nil},
		{name: "whole page", path: "*", want: []string{string(page)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(page, tt.path))
		})
	}
}

func TestSelect_ShapeFollowsPath(t *testing.T) {
	onePage := []byte(`{"ImageDetails":[{"ImageDigest":"sha256:1","ImageTags":["a","b"]}]}`)
	twoPage := []byte(`{"ImageDetails":[{"ImageDigest":"sha256:2","ImageTags":["c"]},` +
		`{"ImageDigest":"sha256:3","ImageTags":["d","e"]}]}`)

	tests := []struct {
		name string
		page []byte
		path string
		want []string
	}{
		{name: "tags of one image", page: onePage, path: "ImageDetails.ImageTags", want: []string{`["a","b"]`}},
		{name: "tags of two images", page: twoPage, path: "ImageDetails.ImageTags", want: []string{`["c"]`, `["d","e"]`}},
		{name: "digest of one image", page: onePage, path: "ImageDetails.ImageDigest", want: []string{`"sha256:1"`}},
		{name: "digest of two images", page: twoPage, path: "ImageDetails.ImageDigest", want: []string{`"sha256:2"`, `"sha256:3"`}},
		{name: "index picks an image", page: twoPage, path: "ImageDetails.ImageTags[0]", want: []string{`"c"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.page, tt.path))
		})
	}
}

func TestItems(t *testing.T) {
	got := Items([]string{`{"a":1}`, `"token"`, `42`})
	require.True(t, got.IsArray())
	assert.Equal(t, `[{"a":1},{"value":"token"},{"value":42}]`, got.Raw)
}

func TestResolveAttrs(t *testing.T) {
	dataset := Items([]string{`{"RepositoryName":"a","RepositoryUri":"u","RegistryId":"1"}`, `{"RepositoryName":"b","CreatedAt":"t"}`})

	outputKeys := func(t *testing.T, defaults, spec string) []string {
		al, err := ResolveAttrs(defaults, spec, dataset)
		require.NoError(t, err)
		var out []string
		for _, a := range al {
			if a.Include {
				out = append(out, a.OutputKey)
			}
		}
		return out
	}

	assert.Equal(t, []string{"RepositoryName", "RepositoryUri", "RegistryId", "CreatedAt"}, outputKeys(t, "", ""))
	assert.Equal(t, []string{"RepositoryName", "RepositoryUri", "CreatedAt"}, outputKeys(t, "", "!RegistryId"))
	assert.Equal(t, []string{"RepositoryUri"}, outputKeys(t, "", "RepositoryUri"))
	assert.Equal(t, []string{"RepositoryName", "CreatedAt"}, outputKeys(t, "RepositoryName", "CreatedAt"))
	assert.Equal(t, []string{"name"}, outputKeys(t, "RepositoryName", "RepositoryName:name"))

	al, err := ResolveAttrs("RepositoryName", "*::u", dataset)
	require.NoError(t, err)
	assert.Equal(t, "u,", al[0].TransformSpec)
}

func TestSliceDiceSpit(t *testing.T) {
	items := []string{
		`{"RepositoryName":"web","ImageCount":3,"Mutability":"MUTABLE"}`,
		`{"RepositoryName":"api","ImageCount":12,"Mutability":"IMMUTABLE"}`,
		`{"RepositoryName":"batch","ImageCount":1,"Mutability":"MUTABLE"}`,
	}

	render := func(t *testing.T, spec string, opts Options) string {
		al, err := ResolveAttrs("", spec, Items(items))
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, SliceDiceSpit(items, al, opts, &buf))
		return buf.String()
	}

	t.Run("json keeps attr order and sorts", func(t *testing.T) {
		out := render(t, "Mutability,RepositoryName", Options{Output: "json", Sort: "-RepositoryName", Filter: "Mutability=MUTABLE"})
		assert.JSONEq(t, `[{"Mutability":"MUTABLE","RepositoryName":"web"},{"Mutability":"MUTABLE","RepositoryName":"batch"}]`, out)
		assert.Less(t, strings.Index(out, "Mutability"), strings.Index(out, "RepositoryName"))
	})

	t.Run("yaml", func(t *testing.T) {
		out := render(t, "RepositoryName:name:u", Options{Output: "yaml", Sort: "name"})
		assert.Equal(t, "- name: API\n- name: BATCH\n- name: WEB\n", out)
	})

	t.Run("numeric filter", func(t *testing.T) {
		out := render(t, "RepositoryName,ImageCount", Options{Output: "json", Filter: "ImageCount>2", Sort: "ImageCount"})
		assert.JSONEq(t, `[{"RepositoryName":"web","ImageCount":3},{"RepositoryName":"api","ImageCount":12}]`, out)
	})

	t.Run("text with titles", func(t *testing.T) {
		out := render(t, "RepositoryName,ImageCount", Options{Output: "text", Titles: true, Sort: "RepositoryName"})
		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		require.GreaterOrEqual(t, len(lines), 4)
		assert.Contains(t, lines[0], "RepositoryName")
		assert.Contains(t, lines[0], "ImageCount")
		assert.Contains(t, out, "api")
		assert.Contains(t, out, "12")
	})

	t.Run("raw ignores filters", func(t *testing.T) {
		out := render(t, "", Options{Output: "raw", Filter: "RepositoryName=web"})
		assert.Contains(t, out, `"batch"`)
		assert.Contains(t, out, `"api"`)
	})

	t.Run("unsupported output", func(t *testing.T) {
		al, _ := ResolveAttrs("", "", Items(items))
		err := SliceDiceSpit(items, al, Options{Output: "xml"}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("empty json is an empty list", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SliceDiceSpit(nil, nil, Options{Output: "json"}, &buf))
		assert.Equal(t, "[]\n", buf.String())
	})
}

func TestDumpExamples(t *testing.T) {
	var buf bytes.Buffer
	DumpExamples(&buf, [][2]string{{"awsctl ecr describe-repositories", "List repositories"}})
	assert.Contains(t, buf.String(), "describe-repositories")
	assert.Contains(t, buf.String(), "List repositories")

	buf.Reset()
	DumpExamples(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestLoadPalette(t *testing.T) {
	t.Cleanup(func() { config.Config = config.Type{} })

	config.Config = config.Type{Source: "test", Data: map[string]interface{}{"region": "us-east-1"}}
	assert.Equal(t, palette{title: "#f6be00", even: "#ffffff", odd: "#00c8f0"}, loadPalette())

	config.Config = config.Type{Source: "test", Data: map[string]interface{}{
		"colors": map[string]interface{}{"title": "#ff0000", "odd": "#0000ff"},
	}}
	assert.Equal(t, palette{title: "#ff0000", even: "#ffffff", odd: "#0000ff"}, loadPalette())
}

func BenchmarkSortDataset(b *testing.B) {
	testData := []map[string]interface{}{
		{"name": "zebra", "count": 3.0},
		{"name": "alpha", "count": 1.0},
		{"name": "beta", "count": 2.0},
	}

	spec := "name"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data := make([]map[string]interface{}, len(testData))
		copy(data, testData)
		SortDataset(data, spec)
	}
}

func BenchmarkInterfaceToString(b *testing.B) {
	values := []interface{}{
		"string",
		42,
		42.5,
		true,
		nil,
		[]string{"a", "b"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, v := range values {
			InterfaceToString(v)
		}
	}
}
