package pulse

import "unsafe"

// AsByteSlice views value as raw bytes, e.g. to upload a uniform struct.
// The slice aliases value and must not outlive it.
func AsByteSlice[T any](value *T) []byte {
	var zeroT T

	n := unsafe.Sizeof(zeroT)
	ptr := (*byte)(unsafe.Pointer(value))

	return unsafe.Slice(ptr, n)
}
