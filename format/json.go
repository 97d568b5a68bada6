package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classkit/classfile"
)

type JSONEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(class *classfile.ClassFile) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data, err := e.buildClassData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

type jsonClass struct {
	Name       string       `json:"name"`
	SimpleName string       `json:"simpleName"`
	Package    string       `json:"package"`
	SuperClass string       `json:"superClass,omitempty"`
	Interfaces []string     `json:"interfaces,omitempty"`
	Visibility string       `json:"visibility"`
	Kind       string       `json:"kind"`
	Modifiers  []string     `json:"modifiers,omitempty"`
	Signature  string       `json:"signature,omitempty"`
	SourceFile string       `json:"sourceFile,omitempty"`
	Version    jsonVersion  `json:"version"`
	Fields     []jsonField  `json:"fields,omitempty"`
	Methods    []jsonMethod `json:"methods,omitempty"`
	Attributes []string     `json:"attributes,omitempty"`
}

type jsonVersion struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

type jsonField struct {
	Name       string   `json:"name"`
	Type       jsonType `json:"type"`
	Visibility string   `json:"visibility"`
	Modifiers  []string `json:"modifiers,omitempty"`
	Signature  string   `json:"signature,omitempty"`
	Constant   string   `json:"constant,omitempty"`
}

type jsonMethod struct {
	Name       string          `json:"name"`
	ReturnType jsonType        `json:"returnType"`
	Parameters []jsonParameter `json:"parameters,omitempty"`
	Visibility string          `json:"visibility"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	Signature  string          `json:"signature,omitempty"`
	Exceptions []string        `json:"exceptions,omitempty"`
	CodeLength int             `json:"codeLength,omitempty"`
}

type jsonParameter struct {
	Name string   `json:"name,omitempty"`
	Type jsonType `json:"type"`
}

type jsonType struct {
	Name       string `json:"name"`
	ArrayDepth int    `json:"arrayDepth,omitempty"`
}

func newJSONType(ft *classfile.FieldType) jsonType {
	if ft == nil {
		return jsonType{Name: "void"}
	}
	name := ft.BaseType
	if name == "" {
		name = classfile.InternalToSourceName(ft.ClassName)
	}
	return jsonType{Name: name, ArrayDepth: ft.ArrayDepth}
}

func (e *JSONEncoder) buildClassData() (jsonClass, error) {
	c := e.class
	name := classfile.InternalToSourceName(c.ClassName())
	pkg, simple := "", name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		pkg, simple = name[:i], name[i+1:]
	}

	interfaces := c.InterfaceNames()
	for i := range interfaces {
		interfaces[i] = classfile.InternalToSourceName(interfaces[i])
	}

	data := jsonClass{
		Name:       name,
		SimpleName: simple,
		Package:    pkg,
		SuperClass: classfile.InternalToSourceName(c.SuperClassName()),
		Interfaces: interfaces,
		Visibility: visibility(c.AccessFlags),
		Kind:       classKind(c),
		Modifiers:  flagNames(c.AccessFlags, classFlagNames),
		SourceFile: c.SourceFileName(),
		Version: jsonVersion{
			Major: c.MajorVersion,
			Minor: c.MinorVersion,
		},
	}
	if sig, ok := classfile.FindAttribute[*classfile.SignatureAttribute](c.Attributes); ok {
		data.Signature = sig.Signature()
	}
	for _, a := range c.Attributes {
		data.Attributes = append(data.Attributes, classfile.AttributeName(a))
	}

	var err error
	if data.Fields, err = e.buildFields(); err != nil {
		return data, err
	}
	if data.Methods, err = e.buildMethods(); err != nil {
		return data, err
	}
	return data, nil
}

func (e *JSONEncoder) buildFields() ([]jsonField, error) {
	cp := e.class.ConstantPool
	fields := e.class.Fields
	result := make([]jsonField, len(fields))
	for i := range fields {
		f := &fields[i]
		ft, err := f.ParsedDescriptor(cp)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name(cp), err)
		}
		result[i] = jsonField{
			Name:       f.Name(cp),
			Type:       newJSONType(ft),
			Visibility: visibility(f.AccessFlags),
			Modifiers:  flagNames(f.AccessFlags, fieldFlagNames),
		}
		if sig, ok := classfile.FindAttribute[*classfile.SignatureAttribute](f.Attributes); ok {
			result[i].Signature = sig.Signature()
		}
		if cv := f.ConstantValue(); cv != nil {
			result[i].Constant = cv.String()
		}
	}
	return result, nil
}

func (e *JSONEncoder) buildMethods() ([]jsonMethod, error) {
	cp := e.class.ConstantPool
	methods := e.class.Methods
	result := make([]jsonMethod, len(methods))
	for i := range methods {
		m := &methods[i]
		md, err := m.ParsedDescriptor(cp)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", m.Name(cp), err)
		}
		result[i] = jsonMethod{
			Name:       m.Name(cp),
			ReturnType: newJSONType(md.ReturnType),
			Parameters: buildParameters(m, md, cp),
			Visibility: visibility(m.AccessFlags),
			Modifiers:  flagNames(m.AccessFlags, methodFlagNames),
		}
		if sig, ok := classfile.FindAttribute[*classfile.SignatureAttribute](m.Attributes); ok {
			result[i].Signature = sig.Signature()
		}
		if ex, ok := classfile.FindAttribute[*classfile.ExceptionsAttribute](m.Attributes); ok {
			result[i].Exceptions = ex.ExceptionNames()
		}
		if code := m.Code(); code != nil {
			result[i].CodeLength = len(code.Code)
		}
	}
	return result, nil
}

// buildParameters names parameters from the MethodParameters attribute,
// falling back to the local variable table.
func buildParameters(m *classfile.MethodInfo, md *classfile.MethodDescriptor, cp *classfile.ConstantPool) []jsonParameter {
	var named *classfile.MethodParametersAttribute
	if a, ok := classfile.FindAttribute[*classfile.MethodParametersAttribute](m.Attributes); ok && len(a.Parameters) == len(md.Parameters) {
		named = a
	}
	var vars *classfile.LocalVariableTableAttribute
	if code := m.Code(); code != nil {
		vars = code.LocalVariableTable()
	}

	slot := 1
	if m.IsStatic() {
		slot = 0
	}
	result := make([]jsonParameter, len(md.Parameters))
	for i := range md.Parameters {
		p := jsonParameter{Type: newJSONType(&md.Parameters[i])}
		switch {
		case named != nil && named.Parameters[i].NameIndex != 0:
			p.Name = cp.GetUtf8(named.Parameters[i].NameIndex)
		case vars != nil:
			p.Name, _ = vars.VariableName(uint16(slot), 0)
		}
		result[i] = p
		slot += md.Parameters[i].Size()
	}
	return result
}
