package wire

import "testing"

func TestDebugPrintDoesNotPanic(t *testing.T) {
	b := NewBuffer(nil)
	b.AppendTag(1, Varint)
	b.AppendVarint(1540)
	b.AppendTag(2, Len)
	b.AppendLen([]byte("fuz"))
	DebugPrint("smoke", b.Bytes())
}

func TestDecodeVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 40}
	for _, want := range cases {
		b := NewBuffer(nil)
		b.AppendVarint(want)
		got, n := decodeVarint(b.Bytes())
		if n != len(b.Bytes()) || got != want {
			t.Fatalf("decodeVarint(%v) = (%d, %d), want (%d, %d)", b.Bytes(), got, n, want, len(b.Bytes()))
		}
	}
}
