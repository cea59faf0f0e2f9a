//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build darwin && !cgo

package enumerator

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
	"unsafe"

	"github.com/ebitengine/purego"
)

var libraryLoadError = lib.Load()

func nativeEnumerator(o *options) PortEnumerator {
	return &registryEnumerator{reg: ioKitRegistry{}, log: o.logger}
}

// ioKitRegistry implements registry by calling IOKit through purego.
type ioKitRegistry struct{}

func (ioKitRegistry) MatchingServices(serviceType string) ([]registryEntry, error) {
	if libraryLoadError != nil {
		return nil, fmt.Errorf("loading IOKit: %w", libraryLoadError)
	}
	matcher := lib.IOServiceMatching(serviceType)
	if matcher == 0 {
		return nil, errors.New("IOServiceMatching returned a NULL dictionary")
	}
	i, err := getMatchingServices(matcher)
	if err != nil {
		return nil, err
	}
	defer i.Release()

	var services []registryEntry
	tries := 0
	for tries < 5 {
		// Extract all elements from iterator
		if service, ok := i.Next(); ok {
			services = append(services, io_registry_entry_t(service))
			continue
		}
		// If the list of services is empty or the iterator is still valid return the result
		if len(services) == 0 || i.IsValid() {
			return services, nil
		}
		// Otherwise empty the result and retry
		releaseAll(services)
		services = services[:0]
		i.Reset()
		tries++
	}
	// Give up if the iteration continues to fail...
	return nil, fmt.Errorf("IOServiceGetMatchingServices failed, data changed while iterating")
}

// getMatchingServices look up registered IOService objects that match a matching dictionary.
// The matching dictionary is consumed by the call.
func getMatchingServices(matcher cfMutableDictionaryRef) (io_iterator_t, error) {
	var i io_iterator_t
	res := lib.IOServiceGetMatchingServices(lib.kIOMasterPortDefault, cfDictionaryRef(matcher), &i)
	if res.Failed() {
		return 0, fmt.Errorf("IOServiceGetMatchingServices failed (code %d)", res)
	}
	return i, nil
}

type library struct {
	// IOKit
	kIOMasterPortDefault uintptr

	IOIteratorIsValid               func(io_iterator_t) bool
	IOIteratorNext                  func(io_iterator_t) io_object_t
	IOIteratorReset                 func(io_iterator_t)
	IOObjectGetClass                func(io_object_t, *io_name_t) kern_return_t
	IOObjectRelease                 func(io_object_t) kern_return_t
	IORegistryEntryCreateCFProperty func(io_registry_entry_t, cfStringRef, cfAllocatorRef, uint32) cfTypeRef
	IORegistryEntryGetParentEntry   func(io_registry_entry_t, string, *io_registry_entry_t) kern_return_t
	IOServiceGetMatchingServices    func(uintptr, cfDictionaryRef, *io_iterator_t) kern_return_t
	IOServiceMatching               func(string) cfMutableDictionaryRef

	// CoreFoundation
	kCFAllocatorDefault cfAllocatorRef

	CFGetTypeID               func(cfTypeRef) cfTypeID
	CFNumberGetTypeID         func() cfTypeID
	CFNumberGetValue          func(cfNumberRef, cfNumberType, unsafe.Pointer) bool
	CFRelease                 func(cfTypeRef)
	CFStringCreateWithCString func(cfAllocatorRef, string, cfStringEncoding) cfStringRef
	CFStringGetCString        func(cfStringRef, *byte, cfIndex, cfStringEncoding) bool
	CFStringGetCStringPtr     func(cfStringRef, cfStringEncoding) string
	CFStringGetTypeID         func() cfTypeID
}

var lib library

func (l *library) Load() error {
	if err := l.loadIOKit(); err != nil {
		return err
	}
	if err := l.loadCF(); err != nil {
		return err
	}
	return nil
}

func (l *library) loadIOKit() error {
	iokitLib, err := purego.Dlopen("/System/Library/Frameworks/IOKit.framework/IOKit", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return err
	}

	l.kIOMasterPortDefault = 0 // MACH_PORT_NULL selects the default main port

	purego.RegisterLibFunc(&l.IOIteratorIsValid, iokitLib, "IOIteratorIsValid")
	purego.RegisterLibFunc(&l.IOIteratorNext, iokitLib, "IOIteratorNext")
	purego.RegisterLibFunc(&l.IOIteratorReset, iokitLib, "IOIteratorReset")
	purego.RegisterLibFunc(&l.IOObjectGetClass, iokitLib, "IOObjectGetClass")
	purego.RegisterLibFunc(&l.IOObjectRelease, iokitLib, "IOObjectRelease")
	purego.RegisterLibFunc(&l.IORegistryEntryCreateCFProperty, iokitLib, "IORegistryEntryCreateCFProperty")
	purego.RegisterLibFunc(&l.IORegistryEntryGetParentEntry, iokitLib, "IORegistryEntryGetParentEntry")
	purego.RegisterLibFunc(&l.IOServiceGetMatchingServices, iokitLib, "IOServiceGetMatchingServices")
	purego.RegisterLibFunc(&l.IOServiceMatching, iokitLib, "IOServiceMatching")
	return nil
}

func (l *library) loadCF() error {
	cfLib, err := purego.Dlopen("/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation", purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return err
	}

	ptr, err := purego.Dlsym(cfLib, "kCFAllocatorDefault")
	if err != nil {
		return err
	}
	l.kCFAllocatorDefault = *((*cfAllocatorRef)(unsafe.Pointer(ptr)))

	purego.RegisterLibFunc(&l.CFGetTypeID, cfLib, "CFGetTypeID")
	purego.RegisterLibFunc(&l.CFNumberGetTypeID, cfLib, "CFNumberGetTypeID")
	purego.RegisterLibFunc(&l.CFNumberGetValue, cfLib, "CFNumberGetValue")
	purego.RegisterLibFunc(&l.CFRelease, cfLib, "CFRelease")
	purego.RegisterLibFunc(&l.CFStringCreateWithCString, cfLib, "CFStringCreateWithCString")
	purego.RegisterLibFunc(&l.CFStringGetCString, cfLib, "CFStringGetCString")
	purego.RegisterLibFunc(&l.CFStringGetCStringPtr, cfLib, "CFStringGetCStringPtr")
	purego.RegisterLibFunc(&l.CFStringGetTypeID, cfLib, "CFStringGetTypeID")
	return nil
}

func (l *library) GoString(buf []byte) string {
	i := bytes.IndexByte(buf, 0)
	if i < 0 {
		return string(buf)
	}
	return string(buf[:i])
}

func (l *library) ToCFString(s string) cfStringRef {
	return l.CFStringCreateWithCString(l.kCFAllocatorDefault, s, kCFStringEncodingUTF8)
}

type (
	kern_return_t       int32
	io_name_t           [128]byte
	io_object_t         uint32
	io_iterator_t       io_object_t
	io_registry_entry_t io_object_t
)

const (
	KERN_SUCCESS kern_return_t = 0
)

func (r kern_return_t) Failed() bool {
	return r != KERN_SUCCESS
}

func (s *io_name_t) AsPtr() *byte {
	return &s[0]
}

func (s *io_name_t) String() string {
	return lib.GoString(s[:])
}

func (o io_object_t) Release() {
	lib.IOObjectRelease(o)
}

func (o io_object_t) GetClass() string {
	var class io_name_t
	if lib.IOObjectGetClass(o, &class).Failed() {
		return ""
	}
	return class.String()
}

// IsValid checks if an iterator is still valid.
// Some iterators will be made invalid if changes are made to the
// structure they are iterating over. This function checks the iterator
// is still valid and should be called when Next returns zero.
// An invalid iterator can be Reset and the iteration restarted.
func (i io_iterator_t) IsValid() bool {
	return lib.IOIteratorIsValid(i)
}

func (i io_iterator_t) Next() (io_object_t, bool) {
	o := lib.IOIteratorNext(i)
	if o == 0 {
		return 0, false
	}
	return o, true
}

func (i io_iterator_t) Reset() {
	lib.IOIteratorReset(i)
}

func (i io_iterator_t) Release() {
	io_object_t(i).Release()
}

// io_registry_entry_t implements registryEntry

func (e io_registry_entry_t) Parent(plane string) (registryEntry, bool) {
	var parent io_registry_entry_t
	if lib.IORegistryEntryGetParentEntry(e, plane, &parent).Failed() {
		return nil, false
	}
	return parent, true
}

func (e io_registry_entry_t) createCFProperty(key string) (cfTypeRef, bool) {
	k := lib.ToCFString(key)
	defer k.Release()
	property := lib.IORegistryEntryCreateCFProperty(e, k, lib.kCFAllocatorDefault, 0)
	return property, property != 0
}

func (e io_registry_entry_t) StringProperty(key string) (string, bool) {
	property, ok := e.createCFProperty(key)
	if !ok {
		return "", false
	}
	defer property.Release()
	if lib.CFGetTypeID(property) != lib.CFStringGetTypeID() {
		return "", false
	}

	str := lib.CFStringGetCStringPtr(cfStringRef(property), kCFStringEncodingUTF8)
	if str == "" {
		// CFStringGetCStringPtr may return NULL, retrieve the string by copy
		var buf [1024]byte
		if !lib.CFStringGetCString(cfStringRef(property), &buf[0], cfIndex(len(buf)), kCFStringEncodingUTF8) {
			return "", false
		}
		str = lib.GoString(buf[:])
	}
	if !utf8.ValidString(str) {
		return "", false
	}
	str = strings.TrimSpace(str)
	return str, str != ""
}

func (e io_registry_entry_t) IntProperty(key string, bits int) (uint32, bool) {
	property, ok := e.createCFProperty(key)
	if !ok {
		return 0, false
	}
	defer property.Release()
	if lib.CFGetTypeID(property) != lib.CFNumberGetTypeID() {
		return 0, false
	}

	// Out of range values are truncated to the requested width: the
	// conversion result is ignored, as descriptor fields are unsigned.
	switch bits {
	case 16:
		var res uint16
		lib.CFNumberGetValue(cfNumberRef(property), kCFNumberSInt16Type, unsafe.Pointer(&res))
		return uint32(res), true
	case 32:
		var res uint32
		lib.CFNumberGetValue(cfNumberRef(property), kCFNumberSInt32Type, unsafe.Pointer(&res))
		return res, true
	}
	return 0, false
}

func (e io_registry_entry_t) Release() {
	io_object_t(e).Release()
}

func (e io_registry_entry_t) Class() string {
	return io_object_t(e).GetClass()
}

type (
	cfIndex          int
	cfStringEncoding uint32
	cfTypeID         uint
	cfTypeRef        uintptr

	cfAllocatorRef         cfTypeRef
	cfDictionaryRef        cfTypeRef
	cfMutableDictionaryRef cfTypeRef
	cfNumberRef            cfTypeRef
	cfNumberType           cfIndex
	cfStringRef            cfTypeRef
)

const (
	kCFNumberSInt16Type cfNumberType = 2
	kCFNumberSInt32Type cfNumberType = 3
)

const (
	kCFStringEncodingUTF8 cfStringEncoding = 0x08000100
)

func (t cfTypeRef) Release() {
	lib.CFRelease(t)
}

func (s cfStringRef) Release() {
	cfTypeRef(s).Release()
}
