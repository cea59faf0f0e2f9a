//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/abakum/serialports/enumerator"
	"github.com/abakum/serialports/internal/config"
)

func samplePorts() []*enumerator.PortInfo {
	usb := &enumerator.USBInfo{
		VID:          0x0403,
		PID:          0x6001,
		SerialNumber: "A6004CCF",
		Location:     "1-1.2",
		Manufacturer: "FTDI",
		Product:      "FT232R USB UART",
	}
	return []*enumerator.PortInfo{
		{
			Device:      "/dev/ttyS0",
			Name:        "ttyS0",
			Description: "ttyS0",
			HardwareID:  "PNP0501",
			Type:        enumerator.PlatformPort,
		},
		{
			Device:      "/dev/ttyUSB0",
			Name:        "ttyUSB0",
			Description: usb.Description("ttyUSB0"),
			HardwareID:  usb.HardwareID(),
			Type:        enumerator.USBPort,
			USB:         usb,
		},
		{
			Device:      "/dev/ttyACM0",
			Name:        "ttyACM0",
			Description: "ttyACM0",
			HardwareID:  "USB VID:PID=2341:0043",
			Type:        enumerator.USBPort,
			USB:         &enumerator.USBInfo{VID: 0x2341, PID: 0x0043},
		},
	}
}

func devices(ports []*enumerator.PortInfo) []string {
	res := []string{}
	for _, p := range ports {
		res = append(res, p.Device)
	}
	return res
}

func TestParseID(t *testing.T) {
	v, err := parseID("vid", "")
	require.NoError(t, err)
	require.Equal(t, -1, v)

	v, err = parseID("vid", "0403")
	require.NoError(t, err)
	require.Equal(t, 0x0403, v)

	v, err = parseID("vid", "0x2341")
	require.NoError(t, err)
	require.Equal(t, 0x2341, v)

	v, err = parseID("pid", "0XFFFF")
	require.NoError(t, err)
	require.Equal(t, 0xffff, v)

	_, err = parseID("pid", "10000")
	require.Error(t, err)
	_, err = parseID("pid", "zz")
	require.ErrorContains(t, err, `invalid pid "zz"`)
}

func TestFilter(t *testing.T) {
	ports := samplePorts()

	f, err := newFilter(false, "", "")
	require.NoError(t, err)
	require.Equal(t, devices(ports), devices(f.apply(ports)))

	f, err = newFilter(true, "", "")
	require.NoError(t, err)
	require.Equal(t, []string{"/dev/ttyUSB0", "/dev/ttyACM0"}, devices(f.apply(ports)))

	// A vendor filter implies USB only.
	f, err = newFilter(false, "2341", "")
	require.NoError(t, err)
	require.True(t, f.usbOnly)
	require.Equal(t, []string{"/dev/ttyACM0"}, devices(f.apply(ports)))

	f, err = newFilter(false, "0403", "6001")
	require.NoError(t, err)
	require.Equal(t, []string{"/dev/ttyUSB0"}, devices(f.apply(ports)))

	f, err = newFilter(false, "0403", "0043")
	require.NoError(t, err)
	require.Empty(t, f.apply(ports))
	require.NotNil(t, f.apply(nil))

	_, err = newFilter(false, "nope", "")
	require.Error(t, err)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeText(&buf, samplePorts()[:2]))
	require.Equal(t, `Device: /dev/ttyS0
             name: ttyS0
      description: ttyS0
             hwid: PNP0501
        port_type: PnpPort

Device: /dev/ttyUSB0
             name: ttyUSB0
      description: FT232R USB UART
             hwid: USB VID:PID=0403:6001 SER=A6004CCF LOCATION=1-1.2
        port_type: UsbPort
              vid: 0403
              pid: 6001
    serial_number: A6004CCF
         location: 1-1.2
     manufacturer: FTDI
          product: FT232R USB UART
        interface: None

`, buf.String())

	buf.Reset()
	require.NoError(t, writeText(&buf, nil))
	require.Empty(t, buf.String())
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, samplePorts()))
	out := buf.String()
	require.Contains(t, out, "DEVICE")
	require.Contains(t, out, "HARDWARE ID")
	require.Contains(t, out, "/dev/ttyUSB0")
	require.Contains(t, out, "USB VID:PID=0403:6001 SER=A6004CCF LOCATION=1-1.2")
	require.Contains(t, out, "PnpPort")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, samplePorts()))

	var records []portRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 3)
	require.Nil(t, records[0].USB)
	require.Equal(t, "PnpPort", records[0].Type)
	require.NotNil(t, records[1].USB)
	require.Equal(t, "0403", records[1].USB.VID)
	require.Equal(t, "6001", records[1].USB.PID)
	require.Equal(t, "1-1.2", records[1].USB.Location)
	require.Empty(t, records[2].USB.SerialNumber)
	require.NotContains(t, buf.String(), `"interface"`)

	buf.Reset()
	require.NoError(t, writeJSON(&buf, nil))
	require.Equal(t, "[]\n", buf.String())
}

func TestWritePlist(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePlist(&buf, samplePorts()))
	require.Contains(t, buf.String(), "<plist")

	var records []portRecord
	_, err := plist.Unmarshal(buf.Bytes(), &records)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "/dev/ttyUSB0", records[1].Device)
	require.Equal(t, "UsbPort", records[1].Type)
	require.Equal(t, "FTDI", records[1].USB.Manufacturer)
	require.Nil(t, records[0].USB)
}

func TestWritersFormats(t *testing.T) {
	for _, format := range []string{"text", "table", "json", "plist"} {
		require.Contains(t, writers, format)
	}
	require.NotContains(t, writers, "xml")
}

func TestApplyFlags(t *testing.T) {
	f := &flags{}
	cmd := newCommand(f)
	require.NoError(t, cmd.ParseFlags([]string{"--dev", "/tmp/dev", "-p", "ttyUSB*", "-p", "ttyACM*", "-f", "json"}))

	cfg := config.Defaults()
	cfg.SysFolder = "/from/config"
	cfg.USBOnly = true
	applyFlags(cmd, f, &cfg)
	require.Equal(t, "/tmp/dev", cfg.DevFolder)
	require.Equal(t, "/from/config", cfg.SysFolder)
	require.Equal(t, []string{"ttyUSB*", "ttyACM*"}, cfg.Patterns)
	require.Equal(t, "json", cfg.Format)
	require.True(t, cfg.USBOnly)

	require.NoError(t, cmd.ParseFlags([]string{"--usb-only=false"}))
	applyFlags(cmd, f, &cfg)
	require.False(t, cfg.USBOnly)
}

func TestRunRejectsBadInput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for _, args := range [][]string{
		{"--format", "yaml"},
		{"--vid", "xyz"},
		{"extra-arg"},
	} {
		cmd := newRootCommand()
		var stdout, stderr bytes.Buffer
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetArgs(args)
		require.Error(t, cmd.Execute(), args)
		require.Empty(t, stdout.String(), args)
	}
}

func TestRunWithConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"format": "bogus"}`), 0o644))

	cmd := newRootCommand()
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", cfgPath})
	require.Error(t, cmd.Execute())
	require.Contains(t, stderr.String(), `unknown format "bogus"`)
}
