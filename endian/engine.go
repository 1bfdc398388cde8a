// Package endian provides the byte order engine used to lay records out in a
// backing file.
//
// Backing files carry no header, so the byte order is a property of the host
// that wrote them. By default every container uses the native engine; a
// fixed engine can be chosen when backing files move between machines:
//
//	engine := endian.GetNativeEngine()
//	engine.PutUint64(buf, math.Float64bits(v))
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

var nativeEngine = detectNative()

// detectNative inspects the lowest-addressed byte of a known 16-bit value.
func detectNative() EndianEngine {
	var probe uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&probe))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// GetNativeEngine returns the engine matching the host byte order.
func GetNativeEngine() EndianEngine {
	return nativeEngine
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// IsNative reports whether engine lays bytes out in host order, which lets
// callers copy record memory directly instead of converting value by value.
func IsNative(engine EndianEngine) bool {
	return engine == nativeEngine
}
