//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGlobCandidates(t *testing.T) {
	dev := t.TempDir()
	for _, name := range []string{"ttyUSB1", "ttyUSB0", "ttyACM0", "ttyS0", "tty0", "console", "rfcomm3"} {
		require.NoError(t, os.WriteFile(filepath.Join(dev, name), nil, 0o644))
	}
	join := func(names ...string) []string {
		var res []string
		for _, n := range names {
			res = append(res, filepath.Join(dev, n))
		}
		return res
	}

	res, err := globCandidates(dev, DefaultPatterns, nil)
	require.NoError(t, err)
	require.Equal(t, join("rfcomm3", "ttyACM0", "ttyS0", "ttyUSB0", "ttyUSB1"), res)

	// overlapping patterns don't produce duplicates
	res, err = globCandidates(dev, []string{"ttyUSB*", "tty*USB0"}, nil)
	require.NoError(t, err)
	require.Equal(t, join("ttyUSB0", "ttyUSB1"), res)

	res, err = globCandidates(dev, DefaultPatterns, func(p string) bool {
		return filepath.Base(p) != "ttyS0"
	})
	require.NoError(t, err)
	require.Equal(t, join("rfcomm3", "ttyACM0", "ttyUSB0", "ttyUSB1"), res)

	res, err = globCandidates(filepath.Join(dev, "missing"), DefaultPatterns, nil)
	require.NoError(t, err)
	require.Empty(t, res)

	_, err = globCandidates(dev, []string{"[ttyS"}, nil)
	require.Error(t, err)
}
