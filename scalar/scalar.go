// Package scalar implements the proto3 scalar type registry: one
// entry per scalar kind, each supplying a validator
// (type and range checks over both the native-number and wide-integer
// host representations), a value encoder, and a Packed flag.
//
// The registry is a table of closures, the same shape protobuf3 uses
// for its enc_ptr_*/enc_slice_* family (one function per scalar kind,
// looked up instead of switched on), generalized here to run off a
// dynamic Kind name instead of a Go struct field's reflected type.
package scalar

import (
	"fmt"
	"math"

	"github.com/protobuf3-go/proto3/wire"
)

// Kind is the registry entry for one proto3 scalar type.
type Kind struct {
	Name string
	// Packed reports whether this kind may be packed when repeated.
	// False for string and bytes; true for every other scalar kind.
	Packed   bool
	wireType wire.Type
	// validate checks fieldName's value v and returns the normalized
	// Go value to encode, or an error with the exact wording the
	// scalar validation matrix mandates.
	validate func(fieldName string, v any) (any, error)
	// encodeValue appends only the value bytes for v (no tag), so
	// that packed emission can call it directly without stripping a
	// tag off a fully-framed encoding — this module keeps value
	// emission and tag+value emission as separate functions instead.
	encodeValue func(b *wire.Buffer, v any)
}

// WireType reports the wire type this kind encodes with.
func (k *Kind) WireType() wire.Type { return k.wireType }

// Validate type- and range-checks v for field fieldName, returning the
// normalized value ready for EncodeValue/Encode.
func (k *Kind) Validate(fieldName string, v any) (any, error) {
	return k.validate(fieldName, v)
}

// EncodeValue appends v's wire-format value bytes (no tag) to b. v
// must already have passed Validate.
func (k *Kind) EncodeValue(b *wire.Buffer, v any) {
	k.encodeValue(b, v)
}

// Encode appends the full tag+value encoding of v for fieldID to b.
func (k *Kind) Encode(b *wire.Buffer, fieldID int, v any) {
	b.AppendTag(fieldID, k.wireType)
	k.encodeValue(b, v)
}

var registry map[string]*Kind

func register(k *Kind) {
	if registry == nil {
		registry = make(map[string]*Kind)
	}
	registry[k.Name] = k
}

// Lookup returns the registry entry for name, or nil if name does not
// name a scalar kind.
func Lookup(name string) *Kind { return registry[name] }

// IsScalar reports whether name is a known proto3 scalar kind.
func IsScalar(name string) bool { return registry[name] != nil }

func typeErr(fieldName, kindName string, v any) error {
	return fmt.Errorf("Field %q of %s type gets %T type value. Unsupported or colliding types", fieldName, kindName, v)
}

func notIntegerNumber(fieldName string, f float64) error {
	return fmt.Errorf("Input number value %f for %q is not integer", f, fieldName)
}

func rangeErr(fieldName, kindName string, v any) error {
	label := kindName
	if kindName == "uint64" {
		label = "uint_64"
	}
	return fmt.Errorf("Input data for %q field is %v and do not fit in %q", fieldName, v, label)
}

// toSigned64 normalizes a native-number or wide-integer input for a
// signed integer kind to an int64, performing the integrality check
// required for native numbers ("Validation rules common to integer
// kinds").
func toSigned64(fieldName, kindName string, v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		if math.Ceil(x) != x {
			return 0, notIntegerNumber(fieldName, x)
		}
		return int64(x), nil
	case int64:
		return x, nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, rangeErr(fieldName, kindName, x)
		}
		return int64(x), nil
	default:
		return 0, typeErr(fieldName, kindName, v)
	}
}

// toUnsigned64 is toSigned64's counterpart for unsigned integer kinds.
// Lower-bound comparison is skipped for unsigned wide inputs since
// uint64 cannot represent a negative value.
func toUnsigned64(fieldName, kindName string, v any) (uint64, error) {
	switch x := v.(type) {
	case float64:
		if math.Ceil(x) != x {
			return 0, notIntegerNumber(fieldName, x)
		}
		if x < 0 {
			return 0, rangeErr(fieldName, kindName, x)
		}
		return uint64(x), nil
	case int64:
		if x < 0 {
			return 0, rangeErr(fieldName, kindName, x)
		}
		return uint64(x), nil
	case uint64:
		return x, nil
	default:
		return 0, typeErr(fieldName, kindName, v)
	}
}

func init() {
	registerInt32()
	registerInt64()
	registerUint32()
	registerUint64()
	registerSint32()
	registerSint64()
	registerBool()
	registerFixed32()
	registerSfixed32()
	registerFixed64()
	registerSfixed64()
	registerFloat()
	registerDouble()
	registerString()
	registerBytes()
}

func registerInt32() {
	register(&Kind{
		Name:     "int32",
		Packed:   true,
		wireType: wire.Varint,
		validate: func(fieldName string, v any) (any, error) {
			n, err := toSigned64(fieldName, "int32", v)
			if err != nil {
				return nil, err
			}
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, rangeErr(fieldName, "int32", n)
			}
			return n, nil
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendVarint(uint64(v.(int64)))
		},
	})
}

func registerInt64() {
	register(&Kind{
		Name:     "int64",
		Packed:   true,
		wireType: wire.Varint,
		validate: func(fieldName string, v any) (any, error) {
			return toSigned64(fieldName, "int64", v)
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendVarint(uint64(v.(int64)))
		},
	})
}

func registerUint32() {
	register(&Kind{
		Name:     "uint32",
		Packed:   true,
		wireType: wire.Varint,
		validate: func(fieldName string, v any) (any, error) {
			n, err := toUnsigned64(fieldName, "uint32", v)
			if err != nil {
				return nil, err
			}
			if n > math.MaxUint32 {
				return nil, rangeErr(fieldName, "uint32", n)
			}
			return n, nil
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendVarint(v.(uint64))
		},
	})
}

func registerUint64() {
	register(&Kind{
		Name:     "uint64",
		Packed:   true,
		wireType: wire.Varint,
		validate: func(fieldName string, v any) (any, error) {
			return toUnsigned64(fieldName, "uint64", v)
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendVarint(v.(uint64))
		},
	})
}

func registerSint32() {
	register(&Kind{
		Name:     "sint32",
		Packed:   true,
		wireType: wire.Varint,
		validate: func(fieldName string, v any) (any, error) {
			n, err := toSigned64(fieldName, "sint32", v)
			if err != nil {
				return nil, err
			}
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, rangeErr(fieldName, "sint32", n)
			}
			return n, nil
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendZigzag32(int32(v.(int64)))
		},
	})
}

func registerSint64() {
	register(&Kind{
		Name:     "sint64",
		Packed:   true,
		wireType: wire.Varint,
		validate: func(fieldName string, v any) (any, error) {
			return toSigned64(fieldName, "sint64", v)
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendZigzag64(v.(int64))
		},
	})
}

func registerBool() {
	register(&Kind{
		Name:     "bool",
		Packed:   true,
		wireType: wire.Varint,
		validate: func(fieldName string, v any) (any, error) {
			bv, ok := v.(bool)
			if !ok {
				return nil, typeErr(fieldName, "bool", v)
			}
			return bv, nil
		},
		encodeValue: func(b *wire.Buffer, v any) {
			if v.(bool) {
				b.AppendVarint(1)
			} else {
				b.AppendVarint(0)
			}
		},
	})
}

func registerFixed32() {
	register(&Kind{
		Name:     "fixed32",
		Packed:   true,
		wireType: wire.I32,
		validate: func(fieldName string, v any) (any, error) {
			n, err := toUnsigned64(fieldName, "fixed32", v)
			if err != nil {
				return nil, err
			}
			if n > math.MaxUint32 {
				return nil, rangeErr(fieldName, "fixed32", n)
			}
			return n, nil
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendFixed32(uint32(v.(uint64)))
		},
	})
}

func registerSfixed32() {
	register(&Kind{
		Name:     "sfixed32",
		Packed:   true,
		wireType: wire.I32,
		validate: func(fieldName string, v any) (any, error) {
			n, err := toSigned64(fieldName, "sfixed32", v)
			if err != nil {
				return nil, err
			}
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, rangeErr(fieldName, "sfixed32", n)
			}
			return n, nil
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendFixed32(uint32(int32(v.(int64))))
		},
	})
}

func registerFixed64() {
	register(&Kind{
		Name:     "fixed64",
		Packed:   true,
		wireType: wire.I64,
		validate: func(fieldName string, v any) (any, error) {
			return toUnsigned64(fieldName, "fixed64", v)
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendFixed64(v.(uint64))
		},
	})
}

func registerSfixed64() {
	register(&Kind{
		Name:     "sfixed64",
		Packed:   true,
		wireType: wire.I64,
		validate: func(fieldName string, v any) (any, error) {
			n, err := toSigned64(fieldName, "sfixed64", v)
			if err != nil {
				return nil, err
			}
			if n < -(1<<63-1) || n > (1<<62-1)*2 {
				// sfixed64's range is asymmetric: [-(2^63-1), 2^63-2].
				return nil, rangeErr(fieldName, "sfixed64", n)
			}
			return n, nil
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendFixed64(uint64(v.(int64)))
		},
	})
}

func registerFloat() {
	const maxFloat32 = 3.4028234e38
	register(&Kind{
		Name:     "float",
		Packed:   true,
		wireType: wire.I32,
		validate: func(fieldName string, v any) (any, error) {
			f, ok := v.(float64)
			if !ok {
				if f32, ok := v.(float32); ok {
					f = float64(f32)
				} else {
					return nil, typeErr(fieldName, "float", v)
				}
			}
			if math.IsInf(f, 0) || f > maxFloat32 || f < -maxFloat32 {
				return nil, fmt.Errorf("Input data for %q field is 'inf' and do not fit in %q", fieldName, "float")
			}
			return float32(f), nil
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendFloat32(v.(float32))
		},
	})
}

func registerDouble() {
	const maxFloat64 = 1.7976931348623157e308
	register(&Kind{
		Name:     "double",
		Packed:   true,
		wireType: wire.I64,
		validate: func(fieldName string, v any) (any, error) {
			f, ok := v.(float64)
			if !ok {
				return nil, typeErr(fieldName, "double", v)
			}
			if math.IsInf(f, 0) || f > maxFloat64 || f < -maxFloat64 {
				return nil, fmt.Errorf("Input data for %q field is 'inf' and do not fit in %q", fieldName, "double")
			}
			return f, nil
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendFloat64(v.(float64))
		},
	})
}

func registerString() {
	register(&Kind{
		Name:     "string",
		Packed:   false,
		wireType: wire.Len,
		validate: func(fieldName string, v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, typeErr(fieldName, "string", v)
			}
			if uint64(len(s)) > wire.MaxLenPayload {
				return nil, fmt.Errorf("Too long string to be encoded")
			}
			return s, nil
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendLen([]byte(v.(string)))
		},
	})
}

func registerBytes() {
	register(&Kind{
		Name:     "bytes",
		Packed:   false,
		wireType: wire.Len,
		validate: func(fieldName string, v any) (any, error) {
			bs, ok := v.([]byte)
			if !ok {
				return nil, typeErr(fieldName, "bytes", v)
			}
			if uint64(len(bs)) > wire.MaxLenPayload {
				return nil, fmt.Errorf("Too long string to be encoded")
			}
			return bs, nil
		},
		encodeValue: func(b *wire.Buffer, v any) {
			b.AppendLen(v.([]byte))
		},
	})
}
