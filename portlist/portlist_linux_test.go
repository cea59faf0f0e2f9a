//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunEmptyDevFolder(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dev := t.TempDir()
	// Regular files are not character devices and must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dev, "ttyUSB0"), nil, 0o644))

	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dev", dev, "--sys", t.TempDir(), "--format", "json"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, "[]\n", stdout.String())
}
