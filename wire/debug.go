package wire

import (
	"encoding/binary"
	"fmt"
)

// DebugPrint dumps the wire-format bytes in b to stdout with a header
// naming s, one line per tag/wire-type/value it can decode. It knows
// nothing about any schema — field numbers are printed, not names —
// and it stops at the first malformed tag rather than attempting
// recovery. Ported from protobuf3.Buffer.DebugPrint for manual
// debugging only; Encode never calls it.
func DebugPrint(s string, b []byte) {
	fmt.Printf("\n--- %s ---\n", s)
	i := 0
	for i < len(b) {
		start := i
		tag, n := decodeVarint(b[i:])
		if n == 0 {
			fmt.Printf("%3d: malformed tag\n", start)
			return
		}
		i += n
		fieldID := tag >> 3
		wt := Type(tag & 7)

		switch wt {
		case Varint:
			v, n := decodeVarint(b[i:])
			if n == 0 {
				fmt.Printf("%3d: field=%d varint: malformed\n", start, fieldID)
				return
			}
			i += n
			fmt.Printf("%3d: field=%-3d varint %d\n", start, fieldID, v)
		case I32:
			if i+4 > len(b) {
				fmt.Printf("%3d: field=%d i32: truncated\n", start, fieldID)
				return
			}
			v := binary.LittleEndian.Uint32(b[i : i+4])
			i += 4
			fmt.Printf("%3d: field=%-3d i32 %d\n", start, fieldID, v)
		case I64:
			if i+8 > len(b) {
				fmt.Printf("%3d: field=%d i64: truncated\n", start, fieldID)
				return
			}
			v := binary.LittleEndian.Uint64(b[i : i+8])
			i += 8
			fmt.Printf("%3d: field=%-3d i64 %d\n", start, fieldID, v)
		case Len:
			length, n := decodeVarint(b[i:])
			if n == 0 || i+n+int(length) > len(b) {
				fmt.Printf("%3d: field=%d len: malformed\n", start, fieldID)
				return
			}
			i += n
			payload := b[i : i+int(length)]
			i += int(length)
			fmt.Printf("%3d: field=%-3d len [%d] % x\n", start, fieldID, length, payload)
		default:
			fmt.Printf("%3d: field=%d unknown wire=%d\n", start, fieldID, wt)
			return
		}
	}
}

// decodeVarint reads a base-128 VARINT from the front of b, returning
// the decoded value and the number of bytes consumed (0 on error).
// This exists solely to support DebugPrint; it is not a decoder for
// production use.
func decodeVarint(b []byte) (uint64, int) {
	var x uint64
	var shift uint
	for i, c := range b {
		if i == 10 {
			return 0, 0
		}
		x |= uint64(c&0x7f) << shift
		if c < 0x80 {
			return x, i + 1
		}
		shift += 7
	}
	return 0, 0
}
