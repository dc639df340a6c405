// Package wire implements the proto3 wire-format primitives: VARINT,
// ZigZag VARINT, I32, I64, and LEN framing. It knows nothing about
// schemas, scalar kinds, or validation; it only turns already-checked
// values into bytes.
//
// The encoders append to a Buffer rather than allocate a new slice per
// call, the same shape protobuf3.Buffer uses; every append here is a
// pure function of its inputs, with no decode-side state to track.
package wire

import "math"

// Type identifies the wire representation chosen for a field's tag.
type Type uint8

const (
	Varint Type = 0
	I64    Type = 1
	Len    Type = 2
	I32    Type = 5
)

// Buffer accumulates encoded bytes. The zero value is ready to use.
type Buffer struct {
	buf []byte
}

// NewBuffer returns a Buffer, optionally pre-seeded with b.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{buf: b}
}

// Bytes returns the accumulated bytes.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len reports the number of bytes accumulated so far.
func (b *Buffer) Len() int { return len(b.buf) }

// Reset empties the buffer for reuse.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

// AppendRaw appends p verbatim, used for _unknown_fields passthrough.
func (b *Buffer) AppendRaw(p []byte) {
	b.buf = append(b.buf, p...)
}

// Tag returns the tag value (fieldID << 3) | wireType. It does not
// encode it; AppendTag writes it as a VARINT.
func Tag(fieldID int, wt Type) uint64 {
	return uint64(fieldID)<<3 | uint64(wt)
}

// AppendTag appends the VARINT-encoded tag for (fieldID, wt).
func (b *Buffer) AppendTag(fieldID int, wt Type) {
	b.AppendVarint(Tag(fieldID, wt))
}

// AppendVarint appends x as a base-128 little-endian VARINT: 7 bits
// per byte, continuation bit set on every byte but the last. Zero
// encodes as a single 0x00 byte.
func (b *Buffer) AppendVarint(x uint64) {
	for x >= 1<<7 {
		b.buf = append(b.buf, byte(x&0x7f|0x80))
		x >>= 7
	}
	b.buf = append(b.buf, byte(x))
}

// SizeVarint returns the number of bytes AppendVarint(x) would write.
func SizeVarint(x uint64) int {
	n := 1
	for x >= 1<<7 {
		x >>= 7
		n++
	}
	return n
}

// AppendZigzag64 ZigZag-encodes a signed 64-bit value and appends the
// resulting VARINT. Uses the canonical XOR form (n<<1) ^ (n>>63),
// which — unlike the source formula 2(-n)-1 this spec was ported from
// — doesn't overflow at INT64_MIN the way 2*(-n)-1 would.
func (b *Buffer) AppendZigzag64(n int64) {
	b.AppendVarint(uint64(n<<1) ^ uint64(n>>63))
}

// AppendZigzag32 is the 32-bit analogue of AppendZigzag64.
func (b *Buffer) AppendZigzag32(n int32) {
	b.AppendVarint(uint64(uint32(n<<1) ^ uint32(n>>31)))
}

// AppendFixed32 appends the little-endian 4-byte representation of x.
func (b *Buffer) AppendFixed32(x uint32) {
	b.buf = append(b.buf,
		byte(x),
		byte(x>>8),
		byte(x>>16),
		byte(x>>24),
	)
}

// AppendFixed64 appends the little-endian 8-byte representation of x.
func (b *Buffer) AppendFixed64(x uint64) {
	b.buf = append(b.buf,
		byte(x),
		byte(x>>8),
		byte(x>>16),
		byte(x>>24),
		byte(x>>32),
		byte(x>>40),
		byte(x>>48),
		byte(x>>56),
	)
}

// AppendFloat32 appends the IEEE-754 bit pattern of f, little-endian.
func (b *Buffer) AppendFloat32(f float32) {
	b.AppendFixed32(math.Float32bits(f))
}

// AppendFloat64 appends the IEEE-754 bit pattern of f, little-endian.
func (b *Buffer) AppendFloat64(f float64) {
	b.AppendFixed64(math.Float64bits(f))
}

// AppendLen writes the VARINT length of payload followed by payload
// itself, unchanged. The caller is responsible for the preceding tag.
func (b *Buffer) AppendLen(payload []byte) {
	b.AppendVarint(uint64(len(payload)))
	b.buf = append(b.buf, payload...)
}

// MaxLenPayload is a soft guard on LEN payload size (2^32 bytes),
// kept for parity with the reference implementation; proto3 itself
// does not mandate a limit here.
const MaxLenPayload = 1 << 32
