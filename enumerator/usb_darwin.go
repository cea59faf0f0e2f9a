//
// Copyright 2014-2024 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

//go:build darwin && cgo

package enumerator

// #cgo LDFLAGS: -framework CoreFoundation -framework IOKit
// #include <IOKit/IOKitLib.h>
// #include <CoreFoundation/CoreFoundation.h>
// #include <stdlib.h>
import "C"
import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
	"unsafe"
)

func nativeEnumerator(o *options) PortEnumerator {
	return &registryEnumerator{reg: ioKitRegistry{}, log: o.logger}
}

// ioKitRegistry implements registry through cgo calls to IOKit.
type ioKitRegistry struct{}

func (ioKitRegistry) MatchingServices(serviceType string) ([]registryEntry, error) {
	matcher, err := serviceMatching(serviceType)
	if err != nil {
		return nil, err
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
			services = append(services, service)
			continue
		}
		// If iterator is still valid return the result
		if i.IsValid() {
			return services, nil
		}
		// Otherwise empty the result and retry
		releaseAll(services)
		services = nil
		i.Reset()
		tries++
	}
	// Give up if the iteration continues to fail...
	return nil, fmt.Errorf("IOServiceGetMatchingServices failed, data changed while iterating")
}

// serviceMatching create a matching dictionary that specifies an IOService class match.
func serviceMatching(serviceType string) (C.CFMutableDictionaryRef, error) {
	t := C.CString(serviceType)
	defer C.free(unsafe.Pointer(t))
	matcher := C.IOServiceMatching(t)
	if matcher == 0 {
		return 0, errors.New("IOServiceMatching returned a NULL dictionary")
	}
	return matcher, nil
}

// getMatchingServices look up registered IOService objects that match a matching dictionary.
// The matching dictionary is consumed by the call.
func getMatchingServices(matcher C.CFMutableDictionaryRef) (ioIterator, error) {
	var i C.io_iterator_t
	err := C.IOServiceGetMatchingServices(C.kIOMasterPortDefault, C.CFDictionaryRef(matcher), &i)
	if err != C.KERN_SUCCESS {
		return ioIterator{}, fmt.Errorf("IOServiceGetMatchingServices failed (code %d)", err)
	}
	return ioIterator{i}, nil
}

func cfStringCreate(s string) C.CFStringRef {
	c := C.CString(s)
	defer C.free(unsafe.Pointer(c))
	return C.CFStringCreateWithCString(C.kCFAllocatorDefault, c, C.kCFStringEncodingUTF8)
}

// ioIterator

type ioIterator struct {
	ioiterator C.io_iterator_t
}

// IsValid checks if an iterator is still valid.
// Some iterators will be made invalid if changes are made to the
// structure they are iterating over. This function checks the iterator
// is still valid and should be called when Next returns zero.
// An invalid iterator can be Reset and the iteration restarted.
func (me ioIterator) IsValid() bool {
	return C.IOIteratorIsValid(me.ioiterator) != 0
}

func (me ioIterator) Reset() {
	C.IOIteratorReset(me.ioiterator)
}

func (me ioIterator) Next() (ioObject, bool) {
	res := C.IOIteratorNext(me.ioiterator)
	return ioObject{C.io_object_t(res)}, res != 0
}

func (me ioIterator) Release() {
	C.IOObjectRelease(C.io_object_t(me.ioiterator))
}

// ioObject implements registryEntry

type ioObject struct {
	ioobject C.io_object_t
}

func (me ioObject) Release() {
	C.IOObjectRelease(me.ioobject)
}

func (me ioObject) Class() string {
	var class [128]C.char
	if C.IOObjectGetClass(me.ioobject, &class[0]) != C.KERN_SUCCESS {
		return ""
	}
	return C.GoString(&class[0])
}

func (me ioObject) Parent(plane string) (registryEntry, bool) {
	cPlane := C.CString(plane)
	defer C.free(unsafe.Pointer(cPlane))
	var parent C.io_registry_entry_t
	if C.IORegistryEntryGetParentEntry(C.io_registry_entry_t(me.ioobject), cPlane, &parent) != C.KERN_SUCCESS {
		return nil, false
	}
	return ioObject{C.io_object_t(parent)}, true
}

func (me ioObject) createCFProperty(key string) (C.CFTypeRef, bool) {
	k := cfStringCreate(key)
	defer C.CFRelease(C.CFTypeRef(k))
	property := C.IORegistryEntryCreateCFProperty(C.io_registry_entry_t(me.ioobject), k, C.kCFAllocatorDefault, 0)
	return property, property != 0
}

func (me ioObject) StringProperty(key string) (string, bool) {
	property, ok := me.createCFProperty(key)
	if !ok {
		return "", false
	}
	defer C.CFRelease(property)
	if C.CFGetTypeID(property) != C.CFStringGetTypeID() {
		return "", false
	}

	var s string
	if ptr := C.CFStringGetCStringPtr(C.CFStringRef(property), C.kCFStringEncodingUTF8); ptr != nil {
		s = C.GoString(ptr)
	} else {
		// in certain circumstances CFStringGetCStringPtr may return NULL
		// and we must retrieve the string by copy
		var buff [1024]C.char
		if C.CFStringGetCString(C.CFStringRef(property), &buff[0], C.CFIndex(len(buff)), C.kCFStringEncodingUTF8) == 0 {
			return "", false
		}
		s = C.GoString(&buff[0])
	}
	if !utf8.ValidString(s) {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func (me ioObject) IntProperty(key string, bits int) (uint32, bool) {
	property, ok := me.createCFProperty(key)
	if !ok {
		return 0, false
	}
	defer C.CFRelease(property)
	if C.CFGetTypeID(property) != C.CFNumberGetTypeID() {
		return 0, false
	}

	// Out of range values are truncated to the requested width: the
	// conversion result is ignored, as descriptor fields are unsigned.
	number := C.CFNumberRef(property)
	switch bits {
	case 16:
		var res C.SInt16
		C.CFNumberGetValue(number, C.kCFNumberSInt16Type, unsafe.Pointer(&res))
		return uint32(uint16(res)), true
	case 32:
		var res C.SInt32
		C.CFNumberGetValue(number, C.kCFNumberSInt32Type, unsafe.Pointer(&res))
		return uint32(res), true
	}
	return 0, false
}
