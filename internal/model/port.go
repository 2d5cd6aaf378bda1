package model

import "github.com/vk/gridopt/internal/expression"

// PortField is one quantity carried by a port type.
type PortField struct {
	Name string
}

// PortType is a named set of fields. Two ports can only be connected when
// they share the same type.
type PortType struct {
	ID     string
	Fields []PortField
}

// NewPortType returns a port type with the given field names.
func NewPortType(id string, fields ...string) PortType {
	pt := PortType{ID: id, Fields: make([]PortField, 0, len(fields))}
	for _, f := range fields {
		pt.Fields = append(pt.Fields, PortField{Name: f})
	}
	return pt
}

// HasField reports whether the type declares a field called name.
func (pt PortType) HasField(name string) bool {
	for _, f := range pt.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Equal compares port types by identity and fields.
func (pt PortType) Equal(other PortType) bool {
	if pt.ID != other.ID || len(pt.Fields) != len(other.Fields) {
		return false
	}
	for i := range pt.Fields {
		if pt.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}

// ModelPort is a port declared on a model.
type ModelPort struct {
	PortType PortType
	PortName string
}

// PortFieldID names one field of one port of a model.
type PortFieldID struct {
	PortName  string
	FieldName string
}

// PortFieldDefinition gives the expression a model contributes to a port
// field. The model that holds the definition owns the field for every
// connection of that port.
type PortFieldDefinition struct {
	PortField  PortFieldID
	Definition expression.Node
}

// DefinePortField is shorthand for a PortFieldDefinition.
func DefinePortField(port, field string, definition expression.Node) PortFieldDefinition {
	return PortFieldDefinition{
		PortField:  PortFieldID{PortName: port, FieldName: field},
		Definition: definition,
	}
}
