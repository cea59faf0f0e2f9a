//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package serialports

import (
	"errors"

	"github.com/samber/lo"

	"github.com/abakum/serialports/enumerator"
)

// GetPortsList retrieve the list of available serial ports
func GetPortsList() ([]string, error) {
	return getPortsList(enumerator.NewEnumerator())
}

func getPortsList(e enumerator.PortEnumerator) ([]string, error) {
	ports, err := e.ListPorts()
	if err != nil {
		code := ErrorEnumeratingPorts
		if errors.Is(err, enumerator.ErrNotSupported) {
			code = FunctionNotImplemented
		}
		return nil, &PortError{code: code, causedBy: err}
	}
	return lo.Map(ports, func(port *enumerator.PortInfo, _ int) string {
		return port.Device
	}), nil
}

// PortError is a platform independent error type for serial ports
type PortError struct {
	code     PortErrorCode
	causedBy error
}

// PortErrorCode is a code to easily identify the type of error
type PortErrorCode int

const (
	// ErrorEnumeratingPorts an error occurred while listing serial port
	ErrorEnumeratingPorts PortErrorCode = iota
	// FunctionNotImplemented the requested function is not implemented
	FunctionNotImplemented
)

// EncodedErrorString returns a string explaining the error code
func (e PortError) EncodedErrorString() string {
	switch e.code {
	case ErrorEnumeratingPorts:
		return "Could not enumerate serial ports"
	case FunctionNotImplemented:
		return "Function not implemented"
	default:
		return "Other error"
	}
}

// Error returns the complete error code with details on the cause of the error
func (e PortError) Error() string {
	if e.causedBy != nil {
		return e.EncodedErrorString() + ": " + e.causedBy.Error()
	}
	return e.EncodedErrorString()
}

// Unwrap returns the cause of the error
func (e PortError) Unwrap() error {
	return e.causedBy
}

// Code returns an identifier for the kind of error occurred
func (e PortError) Code() PortErrorCode {
	return e.code
}
