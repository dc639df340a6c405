package proto3

import (
	"fmt"
	"math"
	"sort"

	"github.com/protobuf3-go/proto3/scalar"
	"github.com/protobuf3-go/proto3/schema"
	"github.com/protobuf3-go/proto3/wire"
)

// unknownFieldsKey is the sentinel data key whose value is a sequence
// of pre-encoded byte chunks to be concatenated verbatim into the
// output, letting callers round-trip fields a newer schema introduced.
const unknownFieldsKey = "_unknown_fields"

// encodeMessageBody walks data against msg's field table and appends
// each field's wire-format encoding to buf. It never emits an outer
// tag or length prefix; callers that need the message framed as a
// nested field (LEN, with a tag) do that themselves.
//
// Fields are encoded in ascending field-id order rather than input
// map iteration order. proto3 places no ordering constraint on
// fields on the wire, and Go's map iteration order is randomized, so
// some deterministic order is needed for reproducible output.
// Ascending field id is what protolite's wire-message.go sorts by
// before encoding (entries sorted by field.Number) — this module
// follows that.
func encodeMessageBody(s *schema.Schema, msg *schema.Message, data map[string]any, buf *wire.Buffer) error {
	type entry struct {
		field *schema.Field
		value any
	}
	entries := make([]entry, 0, len(data))
	var unknown [][]byte

	for key, value := range data {
		if key == unknownFieldsKey {
			chunks, ok := value.([][]byte)
			if !ok {
				return fmt.Errorf("%q value for message %q must be [][]byte", unknownFieldsKey, msg.Name)
			}
			unknown = chunks
			continue
		}
		field, ok := msg.FieldByName[key]
		if !ok {
			return fmt.Errorf("Wrong field name %q", key)
		}
		entries = append(entries, entry{field, value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].field.ID < entries[j].field.ID })

	for _, e := range entries {
		if err := encodeField(s, e.field, e.value, buf); err != nil {
			return err
		}
	}
	for _, chunk := range unknown {
		buf.AppendRaw(chunk)
	}
	return nil
}

// encodeField dispatches a single field value to the scalar, enum,
// message, or repeated path.
func encodeField(s *schema.Schema, field *schema.Field, value any, buf *wire.Buffer) error {
	if field.Repeated {
		return encodeRepeatedField(s, field, value, buf)
	}
	if k := scalar.Lookup(field.Type); k != nil {
		norm, err := k.Validate(field.Name, value)
		if err != nil {
			return err
		}
		k.Encode(buf, field.ID, norm)
		return nil
	}
	if enumDef, ok := s.Enum(field.Type); ok {
		return encodeEnumField(enumDef, field, value, buf)
	}
	if nestedMsg, ok := s.Message(field.Type); ok {
		mdata, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("message value for field %q must be map[string]any, got %T", field.Name, value)
		}
		nested := wire.NewBuffer(nil)
		if err := encodeMessageBody(s, nestedMsg, mdata, nested); err != nil {
			return err
		}
		if err := appendLenFramedField(buf, field.ID, nested.Bytes()); err != nil {
			return err
		}
		return nil
	}
	// Unreachable if schema-build succeeded: every field type is
	// scalar, a declared enum, or a declared message (schema.NewSchema
	// rejects anything else at build time).
	return fmt.Errorf("programming error: field %q has unresolved type %q", field.Name, field.Type)
}

func appendLenFramedField(buf *wire.Buffer, fieldID int, payload []byte) error {
	if uint64(len(payload)) > wire.MaxLenPayload {
		return fmt.Errorf("Too long string to be encoded")
	}
	buf.AppendTag(fieldID, wire.Len)
	buf.AppendLen(payload)
	return nil
}

// encodeEnumField implements the enum path: a numeric value is
// validated and emitted as int32 directly (open-enum semantics —
// unknown numeric values are preserved); a string value is looked up
// by symbolic name and rejected if undefined.
func encodeEnumField(enumDef *schema.Enum, field *schema.Field, value any, buf *wire.Buffer) error {
	if name, ok := value.(string); ok {
		id, ok := enumDef.IDByValue[name]
		if !ok {
			return fmt.Errorf("'%s' is not defined in '%s' enum", name, enumDef.Name)
		}
		int32Kind := scalar.Lookup("int32")
		int32Kind.Encode(buf, field.ID, int64(id))
		return nil
	}
	int32Kind := scalar.Lookup("int32")
	norm, err := int32Kind.Validate(field.Name, value)
	if err != nil {
		return err
	}
	int32Kind.Encode(buf, field.ID, norm)
	return nil
}

// encodeRepeatedField implements the repeated path: validates the
// dense 1-based array shape, then either packs scalar elements into
// one LEN frame (calling EncodeValue directly, with no tag stripping
// needed) or emits each element with its own repeated tag for
// string/bytes, enums, and nested messages.
func encodeRepeatedField(s *schema.Schema, field *schema.Field, value any, buf *wire.Buffer) error {
	arr, err := denseArray(field.Name, value)
	if err != nil {
		return err
	}

	if k := scalar.Lookup(field.Type); k != nil {
		if k.Packed {
			payload := wire.NewBuffer(nil)
			for _, elem := range arr {
				norm, err := k.Validate(field.Name, elem)
				if err != nil {
					return err
				}
				k.EncodeValue(payload, norm)
			}
			return appendLenFramedField(buf, field.ID, payload.Bytes())
		}
		for _, elem := range arr {
			norm, err := k.Validate(field.Name, elem)
			if err != nil {
				return err
			}
			k.Encode(buf, field.ID, norm)
		}
		return nil
	}

	if enumDef, ok := s.Enum(field.Type); ok {
		for _, elem := range arr {
			if err := encodeEnumField(enumDef, field, elem, buf); err != nil {
				return err
			}
		}
		return nil
	}

	if nestedMsg, ok := s.Message(field.Type); ok {
		for _, elem := range arr {
			mdata, ok := elem.(map[string]any)
			if !ok {
				return fmt.Errorf("message value for field %q must be map[string]any, got %T", field.Name, elem)
			}
			nested := wire.NewBuffer(nil)
			if err := encodeMessageBody(s, nestedMsg, mdata, nested); err != nil {
				return err
			}
			if err := appendLenFramedField(buf, field.ID, nested.Bytes()); err != nil {
				return err
			}
		}
		return nil
	}

	return fmt.Errorf("programming error: field %q has unresolved type %q", field.Name, field.Type)
}

// denseArray normalizes a repeated-field value into an ordered slice.
//
// A native Go []any is accepted directly — a slice is inherently
// dense and 1-based in effect, so no further validation is needed.
//
// A map[any]any is accepted as a keyed-table shape (the dynamically
// indexed collection a scripting-language table would produce): every
// key must be an integral number, the minimum key must be 1, and the
// maximum key must equal the element count (no holes, no extra keys).
// The first failing key is reported.
func denseArray(fieldName string, value any) ([]any, error) {
	switch v := value.(type) {
	case []any:
		return v, nil
	case map[any]any:
		return denseArrayFromTable(fieldName, v)
	default:
		return nil, fmt.Errorf("For repeated fields table data are needed")
	}
}

func denseArrayFromTable(fieldName string, table map[any]any) ([]any, error) {
	type keyed struct {
		idx int64
		val any
	}
	entries := make([]keyed, 0, len(table))
	for k, v := range table {
		idx, err := tableKeyIndex(fieldName, k)
		if err != nil {
			return nil, err
		}
		entries = append(entries, keyed{idx, v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })

	n := int64(len(entries))
	if n == 0 {
		return nil, nil
	}
	if entries[0].idx != 1 {
		return nil, fmt.Errorf("repeated field %q must have minimum index 1", fieldName)
	}
	out := make([]any, n)
	for i, e := range entries {
		want := int64(i) + 1
		if e.idx != want {
			return nil, fmt.Errorf("repeated field %q has inconsistent keys (expected %d, got %d)", fieldName, want, e.idx)
		}
		out[i] = e.val
	}
	if entries[n-1].idx != n {
		return nil, fmt.Errorf("repeated field %q has inconsistent keys (maximum index does not equal element count)", fieldName)
	}
	return out, nil
}

func tableKeyIndex(fieldName string, key any) (int64, error) {
	switch k := key.(type) {
	case int:
		return int64(k), nil
	case int64:
		return k, nil
	case float64:
		if math.Ceil(k) != k {
			return 0, fmt.Errorf("repeated field %q contains a non-integer key %v", fieldName, k)
		}
		return int64(k), nil
	default:
		return 0, fmt.Errorf("repeated field %q contains non-numeric key %v", fieldName, key)
	}
}
