//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package enumerator

import (
	"github.com/rs/zerolog"
)

const (
	serialBSDServiceClass = "IOSerialBSDClient"
	serviceRegistryPlane  = "IOService"
)

var (
	usbDeviceClasses    = []string{"IOUSBDevice", "IOUSBHostDevice"}
	usbInterfaceClasses = []string{"IOUSBInterface", "IOUSBHostInterface"}
)

// registryEntry is a handle to an object of the IOKit registry. It is the
// only way the registry backend touches the OS: implementations own the
// foreign calls and return plain Go values.
type registryEntry interface {
	// Class returns the class name of the object, "" on failure.
	Class() string
	// Parent returns the parent of the entry in the given plane. The
	// returned entry must be released by the caller.
	Parent(plane string) (registryEntry, bool)
	// StringProperty returns the string value of a property.
	StringProperty(key string) (string, bool)
	// IntProperty returns the value of a numeric property decoded as an
	// unsigned integer of the given bit width (16 or 32).
	IntProperty(key string, bits int) (uint32, bool)
	Release()
}

// registry gives access to the services of the IOKit registry.
type registry interface {
	// MatchingServices returns all the services of the given class. The
	// returned entries must be released by the caller.
	MatchingServices(class string) ([]registryEntry, error)
}

// registryEnumerator lists serial ports from the IOKit registry.
type registryEnumerator struct {
	reg registry
	log zerolog.Logger
}

// ListPorts returns a record for every serial BSD service that exposes a
// callout device.
func (e *registryEnumerator) ListPorts() ([]*PortInfo, error) {
	services, err := e.reg.MatchingServices(serialBSDServiceClass)
	if err != nil {
		return nil, &PortEnumerationError{causedBy: err}
	}
	defer releaseAll(services)

	ports := []*PortInfo{}
	for _, service := range services {
		device, ok := service.StringProperty("IOCalloutDevice")
		if !ok {
			e.log.Debug().Str("class", service.Class()).Msg("service without callout device, skipping")
			continue
		}
		ports = append(ports, e.portInfo(device, service))
	}
	return ports, nil
}

func (e *registryEnumerator) portInfo(device string, service registryEntry) *PortInfo {
	usbDevice, ok := findAncestor(service, usbDeviceClasses)
	if !ok {
		return &PortInfo{
			Device:      device,
			Description: "n/a",
			HardwareID:  "n/a",
			Type:        NativePort,
		}
	}
	defer usbDevice.Release()

	usb := e.readUSBInfo(usbDevice)
	return &PortInfo{
		Device:      device,
		Description: usb.Description(""),
		HardwareID:  usb.HardwareID(),
		Type:        USBPort,
		USB:         usb,
	}
}

func (e *registryEnumerator) readUSBInfo(usbDevice registryEntry) *USBInfo {
	vid, _ := usbDevice.IntProperty("idVendor", 16)
	pid, _ := usbDevice.IntProperty("idProduct", 16)
	usb := &USBInfo{
		VID:          uint16(vid),
		PID:          uint16(pid),
		SerialNumber: stringProperty(usbDevice, "USB Serial Number"),
		Manufacturer: stringProperty(usbDevice, "USB Vendor Name"),
		Product:      stringProperty(usbDevice, "USB Product Name"),
	}
	if locationID, ok := usbDevice.IntProperty("locationID", 32); ok {
		usb.Location = FormatLocationID(locationID)
		usb.Interface = e.interfaceName(locationID)
	} else {
		e.log.Debug().Str("product", usb.Product).Msg("USB device without locationID")
	}
	return usb
}

// interfaceName scans the serial services again looking for the USB
// interface located at locationID and returns its name.
func (e *registryEnumerator) interfaceName(locationID uint32) string {
	services, err := e.reg.MatchingServices(serialBSDServiceClass)
	if err != nil {
		e.log.Debug().Err(err).Msg("interface lookup failed")
		return ""
	}
	defer releaseAll(services)

	for _, service := range services {
		if _, ok := service.StringProperty("IOCalloutDevice"); !ok {
			continue
		}
		iface, ok := findAncestor(service, usbInterfaceClasses)
		if !ok {
			continue
		}
		ifaceLocation, hasLocation := iface.IntProperty("locationID", 32)
		name := stringProperty(iface, "USB Interface Name")
		iface.Release()
		if hasLocation && ifaceLocation == locationID {
			return name
		}
	}
	return ""
}

// findAncestor walks up the service plane from entry (excluded) and
// returns the nearest ancestor whose class is one of classes. The
// intermediate entries are released, the returned one must be released by
// the caller.
func findAncestor(entry registryEntry, classes []string) (registryEntry, bool) {
	current := entry
	for {
		parent, ok := current.Parent(serviceRegistryPlane)
		if current != entry {
			current.Release()
		}
		if !ok {
			return nil, false
		}
		class := parent.Class()
		for _, c := range classes {
			if class == c {
				return parent, true
			}
		}
		current = parent
	}
}

func stringProperty(entry registryEntry, key string) string {
	s, _ := entry.StringProperty(key)
	return s
}

func releaseAll(entries []registryEntry) {
	for _, entry := range entries {
		entry.Release()
	}
}
