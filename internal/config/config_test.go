// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useFile points AWSCTL_CFG at a testdata file and loads it for namespace.
func useFile(t *testing.T, name string, namespace string) Type {
	t.Helper()

	p, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)
	t.Setenv("AWSCTL_CFG", p)

	Config = Type{}
	t.Cleanup(func() { Config = Type{} })

	cfg, err := Load(namespace)
	require.NoError(t, err)
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := useFile(t, "awsctl.yaml", "ecr")

	assert.Equal(t, "ecr", cfg.Namespace)
	assert.Equal(t, "awsctl.yaml", filepath.Base(cfg.Source))
	assert.Equal(t, cfg, Config)

	ecr, ok := cfg.Data["ecr"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "123456789012", ecr["registry-id"])
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg := useFile(t, "empty.yaml", "")
	assert.Empty(t, cfg.Data)

	got, err := GetString("region", "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", got)
}

func TestLoad_Errors(t *testing.T) {
	broken := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(broken, []byte("ecr: [unclosed\n"), 0o600))

	tests := []struct {
		name string
		cfg  string
		want string
	}{
		{name: "missing file", cfg: "/nonexistent/awsctl.yaml", want: "config file not found"},
		{name: "directory", cfg: "testdata", want: "points to a directory"},
		{name: "bad yaml", cfg: broken, want: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AWSCTL_CFG", tt.cfg)
			Config = Type{}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_StandardLocations(t *testing.T) {
	xdg, appdata, home := t.TempDir(), t.TempDir(), t.TempDir()
	write := func(dir, region string) string {
		p := filepath.Join(dir, FileName)
		require.NoError(t, os.WriteFile(p, []byte("region: "+region+"\n"), 0o600))
		return p
	}

	t.Setenv("AWSCTL_CFG", "")
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("APPDATA", appdata)
	t.Setenv("HOME", home)
	t.Cleanup(func() { Config = Type{} })

	_, err := Load()
	assert.ErrorIs(t, err, ErrNoConfigFile)

	want := write(home, "ap-south-1")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, want, cfg.Source)

	// XDG_CONFIG_HOME is searched before APPDATA and HOME.
	write(appdata, "eu-central-1")
	want = write(xdg, "ca-central-1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, want, cfg.Source)
	assert.Equal(t, "ca-central-1", cfg.Data["region"])

	// A directory named like the file is skipped.
	require.NoError(t, os.Remove(want))
	require.NoError(t, os.Mkdir(want, 0o700))
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(appdata, FileName), cfg.Source)
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		key       string
		def       []string
		want      string
		wantErr   error
	}{
		{name: "global", key: "profile", want: "dev"},
		{name: "service overrides global", namespace: "ecr", key: "region", want: "us-west-2"},
		{name: "other service", namespace: "ads", key: "region", want: "eu-west-1"},
		{name: "unknown service falls back", namespace: "ecs", key: "region", want: "us-east-1"},
		{name: "namespace without the key falls back", namespace: "ecr", key: "output", want: "text"},
		{name: "dotted path", key: "colors.title", want: "#f6be00"},
		{name: "default when missing", key: "colors.odd", def: []string{"#00c8f0"}, want: "#00c8f0"},
		{name: "missing without default", key: "endpoint-url"},
		{name: "quoted number is a string", key: "ecr.registry-id", want: "123456789012"},
		{name: "number is not a string", key: "padding", wantErr: errNotString},
		{name: "map is not a string", key: "cache", wantErr: errNotString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useFile(t, "awsctl.yaml", tt.namespace)

			got, err := GetString(tt.key, tt.def...)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.want == "":
				assert.ErrorContains(t, err, "no valid path found")
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		key       string
		def       []int
		want      int
		wantErr   bool
	}{
		{name: "cache clean hours", key: "cache.clean", want: 12},
		{name: "service padding", namespace: "ecr", key: "padding", want: 4},
		{name: "global padding", namespace: "ads", key: "padding", want: 2},
		{name: "operation setting", namespace: "ecr", key: "describe-images.max-items", want: 50},
		{name: "float truncates", key: "cache.max-age", want: 1},
		{name: "default when missing", key: "retries", def: []int{3}, want: 3},
		{name: "missing without default", key: "retries", wantErr: true},
		{name: "string is not an int", key: "region", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useFile(t, "awsctl.yaml", tt.namespace)

			got, err := GetInt(tt.key, tt.def...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetBool(t *testing.T) {
	useFile(t, "awsctl.yaml", "")

	got, err := GetBool("cache.enabled")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = GetBool("cache.compress", true)
	require.NoError(t, err)
	assert.True(t, got)

	_, err = GetBool("output")
	assert.ErrorIs(t, err, errNotBool)
}

func TestGetStringSlice(t *testing.T) {
	useFile(t, "awsctl.yaml", "")

	tests := []struct {
		name    string
		set     string
		want    []string
		wantErr bool
	}{
		{name: "list", set: "untagged", want: []string{"--tag-status UNTAGGED", "--sort -ImagePushedAt"}},
		{name: "scalar", set: "single", want: []string{"--output json"}},
		{name: "defaults", set: "defaults", want: []string{"--tag-status TAGGED"}},
		{name: "non-string element", set: "bad", wantErr: true},
		{name: "missing", set: "nightly", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetStringSlice("sets.ecr.describe-images." + tt.set)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := GetStringSlice("padding")
	assert.ErrorIs(t, err, errNotList)
}

// TestGet_LoadsOnDemand reads a value without an explicit Load, as the
// output package does when only a render flag needs the config.
func TestGet_LoadsOnDemand(t *testing.T) {
	p, err := filepath.Abs(filepath.Join("testdata", "awsctl.yaml"))
	require.NoError(t, err)
	t.Setenv("AWSCTL_CFG", p)
	Config = Type{Namespace: "ads"}
	t.Cleanup(func() { Config = Type{} })

	got, err := GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "json", got)
	assert.Equal(t, p, Config.Source)
}
