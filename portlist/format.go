//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"howett.net/plist"

	"github.com/abakum/serialports/enumerator"
)

var writers = map[string]func(io.Writer, []*enumerator.PortInfo) error{
	"text":  writeText,
	"table": writeTable,
	"json":  writeJSON,
	"plist": writePlist,
}

// portRecord is the serialized form of a port.
type portRecord struct {
	Device      string     `json:"device" plist:"device"`
	Name        string     `json:"name,omitempty" plist:"name,omitempty"`
	Description string     `json:"description" plist:"description"`
	HardwareID  string     `json:"hwid" plist:"hwid"`
	Type        string     `json:"port_type" plist:"port_type"`
	USB         *usbRecord `json:"usb,omitempty" plist:"usb,omitempty"`
}

type usbRecord struct {
	VID          string `json:"vid" plist:"vid"`
	PID          string `json:"pid" plist:"pid"`
	SerialNumber string `json:"serial_number,omitempty" plist:"serial_number,omitempty"`
	Location     string `json:"location,omitempty" plist:"location,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty" plist:"manufacturer,omitempty"`
	Product      string `json:"product,omitempty" plist:"product,omitempty"`
	Interface    string `json:"interface,omitempty" plist:"interface,omitempty"`
}

func newRecords(ports []*enumerator.PortInfo) []portRecord {
	return lo.Map(ports, func(port *enumerator.PortInfo, _ int) portRecord {
		r := portRecord{
			Device:      port.Device,
			Name:        port.Name,
			Description: port.Description,
			HardwareID:  port.HardwareID,
			Type:        port.Type.String(),
		}
		if port.IsUSB() {
			r.USB = &usbRecord{
				VID:          fmt.Sprintf("%04x", port.USB.VID),
				PID:          fmt.Sprintf("%04x", port.USB.PID),
				SerialNumber: port.USB.SerialNumber,
				Location:     port.USB.Location,
				Manufacturer: port.USB.Manufacturer,
				Product:      port.USB.Product,
				Interface:    port.USB.Interface,
			}
		}
		return r
	})
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// writeText dumps every port as a block of aligned "key: value" lines.
func writeText(w io.Writer, ports []*enumerator.PortInfo) error {
	for _, port := range ports {
		fmt.Fprintf(w, "Device: %s\n", port.Device)
		fmt.Fprintf(w, "             name: %s\n", port.Name)
		fmt.Fprintf(w, "      description: %s\n", port.Description)
		fmt.Fprintf(w, "             hwid: %s\n", port.HardwareID)
		fmt.Fprintf(w, "        port_type: %s\n", port.Type)
		if port.IsUSB() {
			usb := port.USB
			fmt.Fprintf(w, "              vid: %04x\n", usb.VID)
			fmt.Fprintf(w, "              pid: %04x\n", usb.PID)
			fmt.Fprintf(w, "    serial_number: %s\n", orNone(usb.SerialNumber))
			fmt.Fprintf(w, "         location: %s\n", orNone(usb.Location))
			fmt.Fprintf(w, "     manufacturer: %s\n", orNone(usb.Manufacturer))
			fmt.Fprintf(w, "          product: %s\n", orNone(usb.Product))
			fmt.Fprintf(w, "        interface: %s\n", orNone(usb.Interface))
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, ports []*enumerator.PortInfo) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Device", "Type", "Description", "Hardware ID"})
	for _, port := range ports {
		t.AppendRow(table.Row{port.Device, port.Type.String(), port.Description, port.HardwareID})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeJSON(w io.Writer, ports []*enumerator.PortInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newRecords(ports))
}

func writePlist(w io.Writer, ports []*enumerator.PortInfo) error {
	enc := plist.NewEncoderForFormat(w, plist.XMLFormat)
	enc.Indent("\t")
	return enc.Encode(newRecords(ports))
}
