// Package proto3 encodes dynamically-described proto3 messages to the
// protocol buffers wire format. There is no .proto text parser and no
// decoder: callers build a Schema in Go from Message/Enum definitions,
// then call Protocol.Encode with a name and a map of field values.
package proto3

import (
	"fmt"

	"github.com/protobuf3-go/proto3/schema"
	"github.com/protobuf3-go/proto3/wire"
)

// FieldSpec is one field entry of a Message definition: a type name
// (optionally "repeated "-prefixed) and a field id.
type FieldSpec = schema.FieldSpec

// Def is a Message or Enum definition, as returned by Message and Enum.
type Def = schema.Def

// Message declares a message type: name, and a map of field name to
// FieldSpec. Field types may forward-reference message and enum names
// not yet declared; Protocol resolves them once every definition in
// the protocol is known.
func Message(name string, fields map[string]FieldSpec) (*schema.Message, error) {
	return schema.NewMessage(name, fields)
}

// Enum declares an enum type: name, and a map of member name to
// int32 id. Exactly one member must have id 0, per proto3's
// open-enum default-value rule.
func Enum(name string, members map[string]int32) (*schema.Enum, error) {
	return schema.NewEnum(name, members)
}

// Protocol is a resolved, read-only set of message and enum
// definitions, ready to encode values against. Build one with
// NewProtocol; it is safe for concurrent use once built, since Encode
// never mutates it.
type Protocol struct {
	schema *schema.Schema
}

// NewProtocol resolves defs into a Protocol. It rejects duplicate
// names, direct self-recursion, and any field type that is neither a
// scalar kind nor a name present in defs. Field and enum ids are not
// checked here; Message and Enum reject bad ids when the definitions
// are built.
func NewProtocol(defs []Def) (*Protocol, error) {
	s, err := schema.NewSchema(defs)
	if err != nil {
		return nil, err
	}
	return &Protocol{schema: s}, nil
}

// MessageNames lists every message name known to the protocol.
func (p *Protocol) MessageNames() []string { return p.schema.MessageNames() }

// EnumNames lists every enum name known to the protocol.
func (p *Protocol) EnumNames() []string { return p.schema.EnumNames() }

// Encode serializes data as an instance of the message named name,
// returning the encoded bytes. data maps field name to value; see
// package encode.go for the scalar/enum/message/repeated dispatch
// rules.
//
// Encode rejects an attempt to encode an enum name directly — enums
// only exist as field values, never as a top-level message — and any
// name not declared in the protocol at all.
func (p *Protocol) Encode(name string, data map[string]any) ([]byte, error) {
	if msg, ok := p.schema.Message(name); ok {
		buf := wire.NewBuffer(nil)
		if err := encodeMessageBody(p.schema, msg, data, buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if _, ok := p.schema.Enum(name); ok {
		return nil, fmt.Errorf("Attempt to encode enum %q as a top level message", name)
	}
	return nil, fmt.Errorf("no message or enum named %q", name)
}
