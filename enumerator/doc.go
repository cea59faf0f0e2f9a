//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

/*
Package enumerator discovers the serial ports of the host and classifies
them by the subsystem that owns them.

The list of ports, with the USB descriptor of the owning device when there
is one, can be retrieved with the ListPorts function:

	ports, err := enumerator.ListPorts()
	if err != nil {
		log.Fatal(err)
	}
	for _, port := range ports {
		fmt.Printf("%s: %s [%s]\n", port.Device, port.Description, port.HardwareID)
	}

On Linux the device nodes matching a few well known names in /dev are
resolved through sysfs; nodes registered by the platform bus are placeholders
and are skipped. On macOS the serial services are read from the IOKit
registry, with or without cgo. Other systems return a PortEnumerationError.

A port backed by a USB device carries a USBInfo whose HardwareID has the
form:

	USB VID:PID=0403:6001 SER=A6004CCF LOCATION=1-1.2

The enumeration is a single synchronous pass: nothing is cached and every
call returns freshly allocated records.
*/
package enumerator // import "github.com/abakum/serialports/enumerator"
