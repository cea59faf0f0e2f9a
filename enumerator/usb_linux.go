//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"github.com/abakum/serialports/unixutils"
)

func nativeEnumerator(o *options) PortEnumerator {
	e := newSysfsEnumerator(o)
	e.isDevice = unixutils.IsCharDevice
	return e
}
