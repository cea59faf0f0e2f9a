//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build !linux && !darwin

package enumerator

import (
	"fmt"
	"runtime"
)

type unsupportedEnumerator struct{}

func (unsupportedEnumerator) ListPorts() ([]*PortInfo, error) {
	return nil, &PortEnumerationError{causedBy: fmt.Errorf("%s: %w", runtime.GOOS, ErrNotSupported)}
}

func nativeEnumerator(o *options) PortEnumerator {
	return unsupportedEnumerator{}
}
