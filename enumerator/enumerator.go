//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// PortType identifies the bus or subsystem that owns a serial port.
type PortType int

const (
	// UnknownPort the subsystem could not be determined
	UnknownPort PortType = iota
	// USBPort the port is backed by a USB or USB-serial device
	USBPort
	// PlatformPort the port is registered through the platform PNP mechanism
	PlatformPort
	// BusPort the port is backed by an on-chip bus (e.g. AMBA) controller
	BusPort
	// NativePort the port is built into the machine and the OS has no
	// further metadata about it
	NativePort
)

// String returns the name of the port type
func (t PortType) String() string {
	switch t {
	case USBPort:
		return "UsbPort"
	case PlatformPort:
		return "PnpPort"
	case BusPort:
		return "AmbaPort"
	case NativePort:
		return "NativePort"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (t PortType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// PortInfo contains detailed information about a serial port.
// Use ListPorts function to retrieve it.
type PortInfo struct {
	// Device is the path of the device node, for example /dev/ttyUSB0
	Device string
	// Name is the basename of the device node. It is empty on platforms
	// that have no basename distinct from the device path.
	Name        string
	Description string
	HardwareID  string
	Type        PortType

	// USB is set only when Type is USBPort
	USB *USBInfo
}

// IsUSB returns true if the port is backed by a USB device
func (p *PortInfo) IsUSB() bool {
	return p.Type == USBPort && p.USB != nil
}

// USBInfo contains the descriptor attributes of the USB device that owns
// a port. Empty strings mean that the OS exposes no value.
type USBInfo struct {
	VID          uint16
	PID          uint16
	SerialNumber string
	Manufacturer string
	Product      string
	Interface    string

	// Location is the dotted position of the device in the USB hub
	// hierarchy: root port, then one segment per hub level.
	Location string
}

// HardwareID returns the canonical identifier of the USB device in the form
// "USB VID:PID=XXXX:XXXX SER=<serial> LOCATION=<location>". The SER and
// LOCATION segments are present only if the respective value is known.
func (u *USBInfo) HardwareID() string {
	var b strings.Builder
	fmt.Fprintf(&b, "USB VID:PID=%04X:%04X", u.VID, u.PID)
	if u.SerialNumber != "" {
		b.WriteString(" SER=" + u.SerialNumber)
	}
	if u.Location != "" {
		b.WriteString(" LOCATION=" + u.Location)
	}
	return b.String()
}

// Description returns a human readable description of the USB device:
// "<interface> - <product>" if both are known, the product if only that is
// known, otherwise fallback.
func (u *USBInfo) Description(fallback string) string {
	switch {
	case u.Interface != "" && u.Product != "":
		return u.Interface + " - " + u.Product
	case u.Product != "":
		return u.Product
	default:
		return fallback
	}
}

// PortEnumerator lists the serial ports available on the system in a
// single pass.
type PortEnumerator interface {
	ListPorts() ([]*PortInfo, error)
}

// DeviceClassifier resolves the subsystem of a single device node. It
// returns false if the node is not a real serial port.
type DeviceClassifier interface {
	Classify(device string) (*PortInfo, bool)
}

// NewEnumerator returns the PortEnumerator for the current platform.
func NewEnumerator(opts ...Option) PortEnumerator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return nativeEnumerator(o)
}

// ListPorts retrieve the list of serial ports with details like USB VID/PID.
// Please note that this function may not be available on all OS:
// in that case a PortEnumerationError is returned.
func ListPorts(opts ...Option) ([]*PortInfo, error) {
	return NewEnumerator(opts...).ListPorts()
}

// Option configures an enumerator. Options that do not apply to the
// current platform are ignored.
type Option func(*options)

type options struct {
	logger    zerolog.Logger
	devFolder string
	sysFolder string
	patterns  []string
}

func defaultOptions() *options {
	return &options{
		logger:    zerolog.Nop(),
		devFolder: DefaultDevFolder,
		sysFolder: DefaultSysFolder,
		patterns:  DefaultPatterns,
	}
}

// WithLogger sets the logger used to report skipped devices and
// unreadable attributes. By default nothing is logged.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDevFolder sets the folder where device nodes are searched.
func WithDevFolder(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.devFolder = dir
		}
	}
}

// WithSysFolder sets the root of the sysfs tree.
func WithSysFolder(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.sysFolder = dir
		}
	}
}

// WithPatterns sets the glob patterns, relative to the device folder,
// used to find candidate device nodes.
func WithPatterns(patterns ...string) Option {
	return func(o *options) {
		if len(patterns) > 0 {
			o.patterns = append([]string(nil), patterns...)
		}
	}
}

// ErrNotSupported is the cause of the enumeration errors returned on
// platforms without a native backend.
var ErrNotSupported = errors.New("not supported on this platform")

// PortEnumerationError is the error type for serial ports enumeration
type PortEnumerationError struct {
	causedBy error
}

// Error returns the complete error code with details on the cause of the error
func (e PortEnumerationError) Error() string {
	reason := "Error while enumerating serial ports"
	if e.causedBy != nil {
		reason += ": " + e.causedBy.Error()
	}
	return reason
}

// Unwrap returns the underlying cause of the error
func (e PortEnumerationError) Unwrap() error {
	return e.causedBy
}
