//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatLocationID(t *testing.T) {
	test := func(locationID uint32, expected string) {
		require.Equal(t, expected, FormatLocationID(locationID), "locationID 0x%08X", locationID)
	}
	test(0x01200000, "1-2")
	test(0x01230000, "1-2.3")
	test(0x01000000, "1-0")
	test(0x14200000, "20-2")
	test(0x14230000, "20-2.3")
	test(0x14a31000, "20-10.3.1")
	test(0xfd143000, "253-1.4.3")
	test(0x01234567, "1-2.3.4.5.6.7")
	test(0x00000000, "0-0")
	// scanning stops at the first empty nibble
	test(0x01203000, "1-2")
}

func TestFormatLocationIDIsDeterministic(t *testing.T) {
	for _, id := range []uint32{0x01200000, 0x14230000, 0x01234567, 0xff100000} {
		first := FormatLocationID(id)
		for i := 0; i < 3; i++ {
			require.Equal(t, first, FormatLocationID(id))
		}
	}
}
