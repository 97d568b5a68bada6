package classfile

import (
	"bytes"
	"io"
)

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []Attribute
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (cf *ClassFile) IsClass() bool {
	return !cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsModule()
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsAnnotation() bool {
	return cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsEnum() bool {
	return cf.AccessFlags.IsEnum()
}

func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule()
}

func (cf *ClassFile) GetField(name string) *FieldInfo {
	for i := range cf.Fields {
		if cf.Fields[i].Name(cf.ConstantPool) == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

func (cf *ClassFile) GetMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			if descriptor == "" || cf.Methods[i].Descriptor(cf.ConstantPool) == descriptor {
				return &cf.Methods[i]
			}
		}
	}
	return nil
}

func (cf *ClassFile) GetMethods(name string) []*MethodInfo {
	var methods []*MethodInfo
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			methods = append(methods, &cf.Methods[i])
		}
	}
	return methods
}

func (cf *ClassFile) GetAttribute(name string) Attribute {
	return FindAttributeByName(cf.Attributes, name)
}

// SourceFileName returns the SourceFile attribute value, or "".
func (cf *ClassFile) SourceFileName() string {
	if a, ok := FindAttribute[*SourceFileAttribute](cf.Attributes); ok {
		return a.SourceFileName()
	}
	return ""
}

// Signature decodes the class Signature attribute. It returns nil when the
// class is not generic.
func (cf *ClassFile) Signature(chopit bool) (*ClassSignature, error) {
	a, ok := FindAttribute[*SignatureAttribute](cf.Attributes)
	if !ok {
		return nil, nil
	}
	return ParseClassSignature(a.Signature(), chopit)
}

// Dump writes the class in binary form. Attribute lengths are written as
// stored.
func (cf *ClassFile) Dump(w io.Writer) error {
	wr := newWriter(w)
	wr.writeU4(Magic)
	wr.writeU2(cf.MinorVersion)
	wr.writeU2(cf.MajorVersion)
	cf.ConstantPool.writeTo(wr)
	wr.writeU2(uint16(cf.AccessFlags))
	wr.writeU2(cf.ThisClass)
	wr.writeU2(cf.SuperClass)
	wr.writeU2s(cf.Interfaces)

	wr.writeU2(uint16(len(cf.Fields)))
	for i := range cf.Fields {
		cf.Fields[i].writeTo(wr)
	}
	wr.writeU2(uint16(len(cf.Methods)))
	for i := range cf.Methods {
		cf.Methods[i].writeTo(wr)
	}
	writeAttributes(wr, cf.Attributes)
	return wr.err
}

func (cf *ClassFile) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := cf.Dump(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Copy returns a deep copy with its own constant pool. Every attribute of
// the copy refers to the new pool.
func (cf *ClassFile) Copy() *ClassFile {
	c := *cf
	c.ConstantPool = cf.ConstantPool.Copy()
	c.Interfaces = append([]uint16(nil), cf.Interfaces...)
	c.Fields = make([]FieldInfo, len(cf.Fields))
	for i := range cf.Fields {
		c.Fields[i] = cf.Fields[i].copy(c.ConstantPool)
	}
	c.Methods = make([]MethodInfo, len(cf.Methods))
	for i := range cf.Methods {
		c.Methods[i] = cf.Methods[i].copy(c.ConstantPool)
	}
	c.Attributes = copyAttributes(cf.Attributes, c.ConstantPool)
	return &c
}
