// Package schema implements the proto3 schema model: Field, Message
// and Enum definitions, and the two-phase Protocol builder that
// resolves forward references and rejects duplicate names, duplicate
// ids, out-of-range ids, and self-recursive message fields.
//
// The two-phase discipline — register every definition's name first,
// then walk fields resolving each referenced type name against that
// name table — follows protolite/registry.go's buildSymbolTable
// (registerNames pass, then resolveMessageFields pass), adapted from
// a .proto-text-driven registry to one driven directly by Go-level
// constructors, and cross-checked against the builder/resolve split
// in jhump-protoreflect/desc/builder.
package schema

import (
	"fmt"
	"strings"

	"github.com/protobuf3-go/proto3/scalar"
)

// Field is one field of a Message.
type Field struct {
	Name     string
	Type     string // scalar kind name, enum name, or message name
	ID       int
	Repeated bool
}

// Message is a proto3 message definition: two indexes over the same
// field set, one by name and one by wire id.
type Message struct {
	Name        string
	FieldByName map[string]*Field
	FieldByID   map[int]*Field
}

func (*Message) isDef() {}

// Enum is a proto3 enum definition.
type Enum struct {
	Name      string
	IDByValue map[string]int32
	ValueByID map[int32]string
}

func (*Enum) isDef() {}

// Def is implemented by *Message and *Enum; it is the element type of
// the list passed to NewSchema.
type Def interface {
	isDef()
	defName() string
}

func (m *Message) defName() string { return m.Name }
func (e *Enum) defName() string    { return e.Name }

// FieldSpec is one field entry passed to NewMessage: a type spec
// (optionally prefixed with "repeated ") and a field id.
type FieldSpec struct {
	Type string
	ID   int
}

const (
	minFieldID = 1
	maxFieldID = 1<<29 - 1
	reservedLo = 19000
	reservedHi = 19999
)

// NewMessage builds a Message definition from a name and a map of
// field name to FieldSpec, parsing the "repeated " prefix off each
// type spec and validating field id uniqueness and range. It does not
// resolve field type references; that happens in NewSchema once every
// definition's name is known.
func NewMessage(name string, fields map[string]FieldSpec) (*Message, error) {
	m := &Message{
		Name:        name,
		FieldByName: make(map[string]*Field, len(fields)),
		FieldByID:   make(map[int]*Field, len(fields)),
	}
	for fieldName, spec := range fields {
		typ := spec.Type
		repeated := false
		if rest, ok := strings.CutPrefix(typ, "repeated "); ok {
			repeated = true
			typ = rest
		}
		if err := validateFieldID(spec.ID); err != nil {
			return nil, fmt.Errorf("message %q field %q: %w", name, fieldName, err)
		}
		if _, dup := m.FieldByID[spec.ID]; dup {
			return nil, fmt.Errorf("Double definition of id %d in message %q", spec.ID, name)
		}
		f := &Field{Name: fieldName, Type: typ, ID: spec.ID, Repeated: repeated}
		m.FieldByName[fieldName] = f
		m.FieldByID[spec.ID] = f
	}
	return m, nil
}

func validateFieldID(id int) error {
	if id < minFieldID || id > maxFieldID {
		return fmt.Errorf("field id %d is out of allowed range [%d, %d]", id, minFieldID, maxFieldID)
	}
	if id >= reservedLo && id <= reservedHi {
		return fmt.Errorf("field id %d falls in the reserved range [%d, %d]", id, reservedLo, reservedHi)
	}
	return nil
}

// NewEnum builds an Enum definition from a name and a map of member
// name to integer id. Each id must validate as int32, ids must be
// unique, and the enum must declare an id-0 member (proto3 default).
func NewEnum(name string, members map[string]int32) (*Enum, error) {
	e := &Enum{
		Name:      name,
		IDByValue: make(map[string]int32, len(members)),
		ValueByID: make(map[int32]string, len(members)),
	}
	hasZero := false
	for member, id := range members {
		if _, err := scalar.Lookup("int32").Validate(member, int64(id)); err != nil {
			return nil, fmt.Errorf("enum %q member %q: %w", name, member, err)
		}
		if _, dup := e.ValueByID[id]; dup {
			return nil, fmt.Errorf("Double definition of id %d in enum %q", id, name)
		}
		if id == 0 {
			hasZero = true
		}
		e.IDByValue[member] = id
		e.ValueByID[id] = member
	}
	if !hasZero {
		return nil, fmt.Errorf("enum %q definition does not contain a field with id = 0", name)
	}
	return e, nil
}

// Schema is the validated, read-only lookup table produced by
// NewSchema. It is safe to share across goroutines once built, since
// nothing mutates it afterward.
type Schema struct {
	messages map[string]*Message
	enums    map[string]*Enum
}

// Message looks up a message definition by name.
func (s *Schema) Message(name string) (*Message, bool) {
	m, ok := s.messages[name]
	return m, ok
}

// Enum looks up an enum definition by name.
func (s *Schema) Enum(name string) (*Enum, bool) {
	e, ok := s.enums[name]
	return e, ok
}

// MessageNames lists every message name in the schema.
func (s *Schema) MessageNames() []string {
	names := make([]string, 0, len(s.messages))
	for name := range s.messages {
		names = append(names, name)
	}
	return names
}

// EnumNames lists every enum name in the schema.
func (s *Schema) EnumNames() []string {
	names := make([]string, 0, len(s.enums))
	for name := range s.enums {
		names = append(names, name)
	}
	return names
}

// NewSchema builds a Schema from a list of message and enum
// definitions:
//
//  1. Register every definition's name, rejecting duplicate names
//     across messages and enums.
//  2. Classify every field's type as scalar or as a registered
//     message/enum name. Since all names are registered before any
//     field is checked, forward references resolve regardless of
//     definition order; names that match nothing are recorded pending.
//  3. Reject a field whose type equals its own message's name
//     (direct recursion).
//  4. Report the first pending name, if any, as undeclared.
func NewSchema(defs []Def) (*Schema, error) {
	s := &Schema{
		messages: make(map[string]*Message),
		enums:    make(map[string]*Enum),
	}
	for _, def := range defs {
		name := def.defName()
		if _, dup := s.messages[name]; dup {
			return nil, fmt.Errorf("Double definition of name %q", name)
		}
		if _, dup := s.enums[name]; dup {
			return nil, fmt.Errorf("Double definition of name %q", name)
		}
		switch d := def.(type) {
		case *Message:
			s.messages[name] = d
		case *Enum:
			s.enums[name] = d
		}
	}

	// Collect unresolved type names while rejecting direct self-recursion.
	type pendingRef struct {
		msgName, fieldName, typeName string
	}
	var pending []pendingRef
	for _, m := range s.messages {
		for _, f := range m.FieldByName {
			if scalar.IsScalar(f.Type) {
				continue
			}
			if f.Type == m.Name {
				return nil, fmt.Errorf("message %q cannot have field %q of its own type %q", m.Name, f.Name, f.Type)
			}
			if _, ok := s.messages[f.Type]; ok {
				continue
			}
			if _, ok := s.enums[f.Type]; ok {
				continue
			}
			pending = append(pending, pendingRef{m.Name, f.Name, f.Type})
		}
	}
	for _, p := range pending {
		if _, ok := s.messages[p.typeName]; ok {
			continue
		}
		if _, ok := s.enums[p.typeName]; ok {
			continue
		}
		return nil, fmt.Errorf("type %q referenced by field %q of message %q is not declared", p.typeName, p.fieldName, p.msgName)
	}

	return s, nil
}
