//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build linux || darwin || freebsd || openbsd

package unixutils

import (
	"golang.org/x/sys/unix"
)

// DeviceNode contains the result of a stat call on a device node.
type DeviceNode struct {
	mode uint32
}

// StatDevice performs a stat system call on path, following symlinks.
func StatDevice(path string) (DeviceNode, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return DeviceNode{}, err
	}
	return DeviceNode{mode: uint32(st.Mode)}, nil
}

// IsCharDevice test if the node is a character device.
func (d DeviceNode) IsCharDevice() bool {
	return d.mode&unix.S_IFMT == unix.S_IFCHR
}

// IsCharDevice test if path is a character device node.
// Any error is reported as false.
func IsCharDevice(path string) bool {
	d, err := StatDevice(path)
	if err != nil {
		return false
	}
	return d.IsCharDevice()
}
