// Package model defines the metadata description ("fake meta-object") that
// the analysis reconstructs for each C++ class exported to QML.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultPackage is the package of a type whose registration uri or
	// version could not be determined statically. Such types are still
	// usable, just not importable through a versioned module.
	DefaultPackage = "<default>"
	// CppPackage is the package of the export that carries a class's C++
	// name, so that the name can be used in property types.
	CppPackage = "<cpp>"
)

// ComponentVersion is a major.minor module version. The zero value means
// "no version".
type ComponentVersion struct {
	major, minor int
	valid        bool
}

// NewComponentVersion returns a valid version.
func NewComponentVersion(major, minor int) ComponentVersion {
	return ComponentVersion{major: major, minor: minor, valid: true}
}

func (v ComponentVersion) Major() int { return v.major }
func (v ComponentVersion) Minor() int { return v.minor }
func (v ComponentVersion) IsValid() bool { return v.valid }

// String returns "major.minor", or "" for no version.
func (v ComponentVersion) String() string {
	if !v.valid {
		return ""
	}
	return fmt.Sprintf("%d.%d", v.major, v.minor)
}

// MarshalText implements encoding.TextMarshaler.
func (v ComponentVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *ComponentVersion) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		*v = ComponentVersion{}
		return nil
	}
	majorText, minorText, ok := strings.Cut(s, ".")
	if !ok {
		return fmt.Errorf("invalid version %q", s)
	}
	major, err := strconv.Atoi(majorText)
	if err != nil {
		return fmt.Errorf("invalid major version %q: %w", s, err)
	}
	minor, err := strconv.Atoi(minorText)
	if err != nil {
		return fmt.Errorf("invalid minor version %q: %w", s, err)
	}
	*v = NewComponentVersion(major, minor)
	return nil
}

// Export is one (type, package, version) triple under which a class is
// visible to QML.
type Export struct {
	Type    string           `json:"type" yaml:"type"`
	Package string           `json:"package" yaml:"package"`
	Version ComponentVersion `json:"version" yaml:"version"`
}

// MethodType tells signals apart from slots and invokables.
type MethodType string

const (
	Signal MethodType = "signal"
	Slot   MethodType = "slot"
)

// Parameter is one method parameter. Name may be empty.
type Parameter struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// Method is a signal, slot or invokable function.
type Method struct {
	Name       string      `json:"name" yaml:"name"`
	ReturnType string      `json:"returnType" yaml:"returnType"`
	MethodType MethodType  `json:"methodType" yaml:"methodType"`
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	// Revision is always 0; Q_REVISION tags are not read.
	Revision   int         `json:"revision" yaml:"revision"`
}

// NewMethod returns a slot with no parameters.
func NewMethod(name, returnType string) Method {
	return Method{Name: name, ReturnType: returnType, MethodType: Slot}
}

// AddParameter appends a parameter.
func (m *Method) AddParameter(name, typ string) {
	m.Parameters = append(m.Parameters, Parameter{Name: name, Type: typ})
}

// Property is a Q_PROPERTY as seen from QML.
type Property struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	IsList     bool   `json:"isList" yaml:"isList"`
	IsWritable bool   `json:"isWritable" yaml:"isWritable"`
	IsPointer  bool   `json:"isPointer" yaml:"isPointer"`
	// Revision is always 0, as for methods.
	Revision   int    `json:"revision" yaml:"revision"`
}

// EnumKey is one enumerator of an Enum.
type EnumKey struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

// Enum is a registered enumeration.
type Enum struct {
	Name string    `json:"name" yaml:"name"`
	Keys []EnumKey `json:"keys" yaml:"keys"`
}

// AddKey appends an enumerator.
func (e *Enum) AddKey(name string, value int) {
	e.Keys = append(e.Keys, EnumKey{Name: name, Value: value})
}

// FakeMetaObject is the reconstructed meta-object of one C++ class.
type FakeMetaObject struct {
	// ClassName is the qualified C++ name of the class the object was built
	// from, or "" when the class could not be resolved.
	ClassName      string     `json:"className,omitempty" yaml:"className,omitempty"`
	SuperclassName string     `json:"superclass,omitempty" yaml:"superclass,omitempty"`
	Exports        []Export   `json:"exports,omitempty" yaml:"exports,omitempty"`
	Properties     []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	Methods        []Method   `json:"methods,omitempty" yaml:"methods,omitempty"`
	Enums          []Enum     `json:"enums,omitempty" yaml:"enums,omitempty"`
}

// AddExport records one more name the class is visible under.
func (f *FakeMetaObject) AddExport(typeName, pkg string, version ComponentVersion) {
	f.Exports = append(f.Exports, Export{Type: typeName, Package: pkg, Version: version})
}

func (f *FakeMetaObject) AddProperty(p Property) { f.Properties = append(f.Properties, p) }
func (f *FakeMetaObject) AddMethod(m Method) { f.Methods = append(f.Methods, m) }
func (f *FakeMetaObject) AddEnum(e Enum) { f.Enums = append(f.Enums, e) }

// SetSuperclassName records the name of the class's base.
func (f *FakeMetaObject) SetSuperclassName(name string) { f.SuperclassName = name }

// Report is the result of scanning a tree: every meta-object found, with the
// file whose registrations produced it.
type Report struct {
	Root    string       `json:"root" yaml:"root"`
	Objects []FileObject `json:"objects" yaml:"objects"`
}

// FileObject is a meta-object tagged with its source file. Base is set for
// objects that describe a base class rather than a registered type.
type FileObject struct {
	File string `json:"file" yaml:"file"`
	Base bool   `json:"base,omitempty" yaml:"base,omitempty"`

	FakeMetaObject `yaml:",inline"`
}
