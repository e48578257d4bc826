// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
// no-cloc

package command

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/awsctlgo/internal/aws"
	"github.com/staranto/awsctlgo/internal/meta"
)

func TestCompletionTree(t *testing.T) {
	services := completionTree(NewApp(meta.Meta{}))
	require.Len(t, services, 2)
	assert.Equal(t, "ecr", services[0].Name)
	assert.Equal(t, "ads", services[1].Name)

	var found bool
	for _, op := range services[0].Ops {
		if op.Name != "describe-images" {
			continue
		}
		found = true
		assert.Contains(t, op.Flags, "--repository-name")
		assert.Contains(t, op.Flags, "-n")
		assert.Contains(t, op.Flags, "--max-items")
		assert.NotContains(t, op.Flags, "--force")
	}
	assert.True(t, found)
}

func TestWriteCompletion(t *testing.T) {
	app := NewApp(meta.Meta{})

	for _, shell := range []string{"bash", "zsh"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCompletion(&buf, app, shell))
			out := buf.String()
			assert.Contains(t, out, "awsctl")
			assert.Contains(t, out, "describe-images")
			assert.Contains(t, out, "start-import-task")
		})
	}

	var buf bytes.Buffer
	err := WriteCompletion(&buf, app, "fish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported shell")
}

func TestCompletionCommand(t *testing.T) {
	stdout, _, err := runApp(t, &aws.Clients{}, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "complete -F _awsctl awsctl")

	t.Setenv("SHELL", "/bin/sh")
	stdout, stderr, err := runApp(t, &aws.Clients{}, "completion")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "usage: awsctl completion")
}
