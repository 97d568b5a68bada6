package classfile

import "strings"

type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

func (m *MethodInfo) Name(cp *ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MethodInfo) Descriptor(cp *ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *MethodInfo) GetAttribute(name string) Attribute {
	return FindAttributeByName(m.Attributes, name)
}

// Code returns the method body, or nil for abstract and native methods.
func (m *MethodInfo) Code() *CodeAttribute {
	a, _ := FindAttribute[*CodeAttribute](m.Attributes)
	return a
}

func (m *MethodInfo) IsPublic() bool       { return m.AccessFlags.IsPublic() }
func (m *MethodInfo) IsPrivate() bool      { return m.AccessFlags.IsPrivate() }
func (m *MethodInfo) IsProtected() bool    { return m.AccessFlags.IsProtected() }
func (m *MethodInfo) IsStatic() bool       { return m.AccessFlags.IsStatic() }
func (m *MethodInfo) IsFinal() bool        { return m.AccessFlags.IsFinal() }
func (m *MethodInfo) IsSynchronized() bool { return m.AccessFlags.IsSynchronized() }
func (m *MethodInfo) IsBridge() bool       { return m.AccessFlags.IsBridge() }
func (m *MethodInfo) IsVarargs() bool      { return m.AccessFlags.IsVarargs() }
func (m *MethodInfo) IsNative() bool       { return m.AccessFlags.IsNative() }
func (m *MethodInfo) IsAbstract() bool     { return m.AccessFlags.IsAbstract() }
func (m *MethodInfo) IsStrict() bool       { return m.AccessFlags.IsStrict() }
func (m *MethodInfo) IsSynthetic() bool    { return m.AccessFlags.IsSynthetic() }

func (m *MethodInfo) IsConstructor(cp *ConstantPool) bool {
	return m.Name(cp) == "<init>"
}

func (m *MethodInfo) IsStaticInitializer(cp *ConstantPool) bool {
	return m.Name(cp) == "<clinit>"
}

func (m *MethodInfo) ParsedDescriptor(cp *ConstantPool) (*MethodDescriptor, error) {
	return ParseMethodDescriptor(m.Descriptor(cp))
}

// Declaration renders the method header, preferring the generic signature
// over the descriptor and taking parameter names from the local variable
// table when the method has one.
func (m *MethodInfo) Declaration(cp *ConstantPool, chopit bool) (string, error) {
	sig := m.Descriptor(cp)
	if a, ok := FindAttribute[*SignatureAttribute](m.Attributes); ok {
		sig = a.Signature()
	}
	var vars *LocalVariableTableAttribute
	if code := m.Code(); code != nil {
		vars = code.LocalVariableTable()
	}
	s, err := MethodSignatureToString(sig, m.Name(cp), m.AccessFlags.MethodModifiers(), chopit, vars)
	if err != nil {
		return "", err
	}
	if ex, ok := FindAttribute[*ExceptionsAttribute](m.Attributes); ok && len(ex.ExceptionIndexTable) > 0 && !hasThrows(sig) {
		names := make([]string, len(ex.ExceptionIndexTable))
		for i, idx := range ex.ExceptionIndexTable {
			names[i] = CompactClassName(cp.GetClassName(idx), chopit)
		}
		s += " throws " + strings.Join(names, ", ")
	}
	return s, nil
}

func hasThrows(sig string) bool {
	for i := len(sig) - 1; i >= 0; i-- {
		switch sig[i] {
		case '^':
			return true
		case ')':
			return false
		}
	}
	return false
}

func (m *MethodInfo) writeTo(w *writer) {
	w.writeU2(uint16(m.AccessFlags))
	w.writeU2(m.NameIndex)
	w.writeU2(m.DescriptorIndex)
	writeAttributes(w, m.Attributes)
}

func (m *MethodInfo) copy(cp *ConstantPool) MethodInfo {
	c := *m
	c.Attributes = copyAttributes(m.Attributes, cp)
	return c
}
