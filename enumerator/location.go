//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import "strconv"

// FormatLocationID converts a packed IOKit USB locationID into a dotted
// string. The top 8 bits hold the root port number, each following nibble
// a hub port number, up to the first zero nibble:
//
//	0x14200000 -> "20-2"
//	0x14230000 -> "20-2.3"
//	0x14000000 -> "20-0"
func FormatLocationID(locationID uint32) string {
	s := strconv.FormatUint(uint64(locationID>>24), 10) + "-" +
		strconv.FormatUint(uint64((locationID>>20)&0xf), 10)
	for locationID <<= 4; (locationID>>20)&0xf != 0; locationID <<= 4 {
		s += "." + strconv.FormatUint(uint64((locationID>>20)&0xf), 10)
	}
	return s
}
