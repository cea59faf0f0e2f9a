//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

/*
Package serialports lists the serial ports available on the host.

The canonical import for this library is github.com/abakum/serialports so
the import line is the following:

	import "github.com/abakum/serialports"

The names of the ports can be obtained with the GetPortsList function:

	ports, err := serialports.GetPortsList()
	if err != nil {
		log.Fatal(err)
	}
	if len(ports) == 0 {
		log.Fatal("No serial ports found!")
	}
	for _, port := range ports {
		fmt.Printf("Found port: %v\n", port)
	}

The enumerator subpackage returns a detailed record for every port: its
type (USB, PNP, AMBA, native), a description, a hardware ID and, for USB
ports, the USB descriptor:

	ports, err := enumerator.ListPorts()
	for _, port := range ports {
		if port.IsUSB() {
			fmt.Printf("%s %04x:%04x\n", port.Device, port.USB.VID, port.USB.PID)
		}
	}

Enumeration is supported on Linux, through sysfs, and on macOS, through the
IOKit registry. On other platforms GetPortsList fails with a PortError whose
Code is FunctionNotImplemented.

The portlist command prints the same information from the shell.
*/
package serialports
