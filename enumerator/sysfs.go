//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// sysfsEnumerator classifies device nodes by walking the sysfs tree
// rooted at sysFolder.
type sysfsEnumerator struct {
	devFolder string
	sysFolder string
	patterns  []string
	isDevice  func(string) bool
	log       zerolog.Logger
}

func newSysfsEnumerator(o *options) *sysfsEnumerator {
	return &sysfsEnumerator{
		devFolder: o.devFolder,
		sysFolder: o.sysFolder,
		patterns:  o.patterns,
		log:       o.logger,
	}
}

// ListPorts classifies every candidate device node and returns the ones
// that are real serial ports.
func (e *sysfsEnumerator) ListPorts() ([]*PortInfo, error) {
	candidates, err := globCandidates(e.devFolder, e.patterns, e.isDevice)
	if err != nil {
		return nil, &PortEnumerationError{causedBy: err}
	}
	ports := []*PortInfo{}
	for _, device := range candidates {
		if port, ok := e.Classify(device); ok {
			ports = append(ports, port)
		}
	}
	return ports, nil
}

// Classify implements DeviceClassifier.
func (e *sysfsEnumerator) Classify(device string) (*PortInfo, bool) {
	name := filepath.Base(device)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		e.log.Debug().Str("device", device).Msg("no basename, skipping")
		return nil, false
	}

	deviceDir, err := filepath.EvalSymlinks(filepath.Join(e.sysFolder, "class", "tty", name, "device"))
	if err != nil {
		e.log.Debug().Str("device", device).Err(err).Msg("no device registration")
		deviceDir = ""
	}

	subsystem := ""
	if deviceDir != "" {
		if link, err := filepath.EvalSymlinks(filepath.Join(deviceDir, "subsystem")); err == nil {
			subsystem = filepath.Base(link)
		} else {
			e.log.Debug().Str("device", device).Err(err).Msg("no subsystem")
		}
	}

	// Virtual ports registered by the platform bus are placeholders.
	if subsystem == "platform" {
		e.log.Debug().Str("device", device).Msg("platform device, skipping")
		return nil, false
	}

	port := &PortInfo{
		Device: device,
		Name:   name,
		Type:   UnknownPort,
	}
	switch subsystem {
	case "usb", "usb-serial":
		ifaceDir := deviceDir
		if subsystem == "usb-serial" {
			ifaceDir = filepath.Dir(deviceDir)
		}
		usb := e.readUSBInfo(filepath.Dir(ifaceDir), ifaceDir)
		port.Type = USBPort
		port.USB = usb
		port.Description = usb.Description(name)
		port.HardwareID = usb.HardwareID()
	case "pnp":
		port.Type = PlatformPort
		port.Description = name
		port.HardwareID = e.readAttr(deviceDir, "id")
	case "amba":
		port.Type = BusPort
		port.Description = name
		port.HardwareID = filepath.Base(deviceDir)
	default:
		e.log.Debug().Str("device", device).Str("subsystem", subsystem).Msg("unknown subsystem")
	}
	return port, true
}

// readUSBInfo reads the descriptor of the USB device in usbDir. The
// interface name is read from ifaceDir.
func (e *sysfsEnumerator) readUSBInfo(usbDir, ifaceDir string) *USBInfo {
	return &USBInfo{
		VID:          e.readHexAttr(usbDir, "idVendor"),
		PID:          e.readHexAttr(usbDir, "idProduct"),
		SerialNumber: e.readAttr(usbDir, "serial"),
		Manufacturer: e.readAttr(usbDir, "manufacturer"),
		Product:      e.readAttr(usbDir, "product"),
		Interface:    e.readAttr(ifaceDir, "interface"),
		Location:     filepath.Base(usbDir),
	}
}

// readAttr returns the trimmed content of a sysfs attribute file, or an
// empty string if the file is missing or doesn't contain valid text.
func (e *sysfsEnumerator) readAttr(dir, attr string) string {
	data, err := os.ReadFile(filepath.Join(dir, attr))
	if err != nil {
		e.log.Debug().Str("dir", dir).Str("attr", attr).Err(err).Msg("attribute not available")
		return ""
	}
	if !utf8.Valid(data) {
		e.log.Debug().Str("dir", dir).Str("attr", attr).Msg("attribute is not valid UTF-8")
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readHexAttr reads a 16-bit hex attribute, returns 0 on failure.
func (e *sysfsEnumerator) readHexAttr(dir, attr string) uint16 {
	s := strings.TrimPrefix(e.readAttr(dir, attr), "0x")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		e.log.Debug().Str("dir", dir).Str("attr", attr).Err(err).Msg("invalid hex attribute")
		return 0
	}
	return uint16(v)
}
