//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// portlist is a tool to list all the available serial ports.
// Just run it and it will produce an output like:
//
//	$ go run ./portlist
//	Device: /dev/ttyUSB0
//	             name: ttyUSB0
//	      description: FT232R USB UART
//	             hwid: USB VID:PID=0403:6001 SER=A6004CCF LOCATION=1-1.2
//	        port_type: UsbPort
//	              vid: 0403
//	              pid: 6001
//	    serial_number: A6004CCF
//	         location: 1-1.2
//	     manufacturer: FTDI
//	          product: FT232R USB UART
//	        interface: None
//
// Use --format to get a table, JSON or a property list instead.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/abakum/serialports/enumerator"
	"github.com/abakum/serialports/internal/config"
)

type flags struct {
	configPath string
	devFolder  string
	sysFolder  string
	patterns   []string
	format     string
	usbOnly    bool
	vid        string
	pid        string
	verbose    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	return newCommand(&flags{})
}

func newCommand(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "portlist",
		Short:         "List the serial ports of this host",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd, f)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
			}
			return err
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "configuration file")
	fl.StringVar(&f.devFolder, "dev", "", "folder of the device nodes (default "+enumerator.DefaultDevFolder+")")
	fl.StringVar(&f.sysFolder, "sys", "", "mount point of sysfs (default "+enumerator.DefaultSysFolder+")")
	fl.StringSliceVarP(&f.patterns, "pattern", "p", nil, "device node glob pattern, may be repeated")
	fl.StringVarP(&f.format, "format", "f", "", "output format: text, table, json or plist (default text)")
	fl.BoolVar(&f.usbOnly, "usb-only", false, "list only USB ports")
	fl.StringVar(&f.vid, "vid", "", "list only ports with this USB vendor ID (hex)")
	fl.StringVar(&f.pid, "pid", "", "list only ports with this USB product ID (hex)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log skipped devices and unreadable attributes")
	return cmd
}

func run(cmd *cobra.Command, f *flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, f, &cfg)

	write, ok := writers[cfg.Format]
	if !ok {
		return fmt.Errorf("unknown format %q", cfg.Format)
	}
	filter, err := newFilter(cfg.USBOnly, f.vid, f.pid)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), f.verbose)
	ports, err := enumerator.ListPorts(
		enumerator.WithLogger(logger),
		enumerator.WithDevFolder(cfg.DevFolder),
		enumerator.WithSysFolder(cfg.SysFolder),
		enumerator.WithPatterns(cfg.Patterns...),
	)
	if err != nil {
		return err
	}
	ports = filter.apply(ports)
	logger.Debug().Int("count", len(ports)).Msg("enumeration done")
	return write(cmd.OutOrStdout(), ports)
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("dev") {
		cfg.DevFolder = f.devFolder
	}
	if fl.Changed("sys") {
		cfg.SysFolder = f.sysFolder
	}
	if fl.Changed("pattern") {
		cfg.Patterns = f.patterns
	}
	if fl.Changed("format") {
		cfg.Format = f.format
	}
	if fl.Changed("usb-only") {
		cfg.USBOnly = f.usbOnly
	}
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()
}

// filter selects ports by USB identifiers.
type filter struct {
	usbOnly bool
	vid     int
	pid     int
}

// newFilter parses the hex vid and pid, empty strings match everything.
func newFilter(usbOnly bool, vid, pid string) (*filter, error) {
	f := &filter{usbOnly: usbOnly, vid: -1, pid: -1}
	var err error
	if f.vid, err = parseID("vid", vid); err != nil {
		return nil, err
	}
	if f.pid, err = parseID("pid", pid); err != nil {
		return nil, err
	}
	if f.vid >= 0 || f.pid >= 0 {
		f.usbOnly = true
	}
	return f, nil
}

func parseID(name, s string) (int, error) {
	if s == "" {
		return -1, nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return int(v), nil
}

func (f *filter) apply(ports []*enumerator.PortInfo) []*enumerator.PortInfo {
	return lo.Filter(ports, func(port *enumerator.PortInfo, _ int) bool {
		return f.match(port)
	})
}

func (f *filter) match(port *enumerator.PortInfo) bool {
	if f.usbOnly && !port.IsUSB() {
		return false
	}
	if f.vid >= 0 && int(port.USB.VID) != f.vid {
		return false
	}
	return f.pid < 0 || int(port.USB.PID) == f.pid
}
