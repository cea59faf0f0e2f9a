//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build !linux && !darwin

package enumerator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnsupportedPlatform(t *testing.T) {
	ports, err := ListPorts()
	require.Nil(t, ports)
	require.ErrorIs(t, err, ErrNotSupported)

	var perr *PortEnumerationError
	require.ErrorAs(t, err, &perr)
}
