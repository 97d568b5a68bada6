package classfile

type FieldInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

func (f *FieldInfo) Name(cp *ConstantPool) string {
	return cp.GetUtf8(f.NameIndex)
}

func (f *FieldInfo) Descriptor(cp *ConstantPool) string {
	return cp.GetUtf8(f.DescriptorIndex)
}

func (f *FieldInfo) GetAttribute(name string) Attribute {
	return FindAttributeByName(f.Attributes, name)
}

// ConstantValue returns the ConstantValue attribute of a static final
// field, or nil.
func (f *FieldInfo) ConstantValue() *ConstantValueAttribute {
	a, _ := FindAttribute[*ConstantValueAttribute](f.Attributes)
	return a
}

func (f *FieldInfo) IsPublic() bool    { return f.AccessFlags.IsPublic() }
func (f *FieldInfo) IsPrivate() bool   { return f.AccessFlags.IsPrivate() }
func (f *FieldInfo) IsProtected() bool { return f.AccessFlags.IsProtected() }
func (f *FieldInfo) IsStatic() bool    { return f.AccessFlags.IsStatic() }
func (f *FieldInfo) IsFinal() bool     { return f.AccessFlags.IsFinal() }
func (f *FieldInfo) IsVolatile() bool  { return f.AccessFlags.IsVolatile() }
func (f *FieldInfo) IsTransient() bool { return f.AccessFlags.IsTransient() }
func (f *FieldInfo) IsSynthetic() bool { return f.AccessFlags.IsSynthetic() }
func (f *FieldInfo) IsEnum() bool      { return f.AccessFlags.IsEnum() }

func (f *FieldInfo) ParsedDescriptor(cp *ConstantPool) (*FieldType, error) {
	return ParseFieldDescriptor(f.Descriptor(cp))
}

// Declaration renders the field as "modifiers type name", using the generic
// signature when one is present.
func (f *FieldInfo) Declaration(cp *ConstantPool, chopit bool) (string, error) {
	sig := f.Descriptor(cp)
	if a, ok := FindAttribute[*SignatureAttribute](f.Attributes); ok {
		sig = a.Signature()
	}
	t, err := TypeSignatureToString(sig, chopit)
	if err != nil {
		return "", err
	}
	s := t + " " + f.Name(cp)
	if mods := f.AccessFlags.FieldModifiers(); mods != "" {
		s = mods + " " + s
	}
	return s, nil
}

func (f *FieldInfo) writeTo(w *writer) {
	w.writeU2(uint16(f.AccessFlags))
	w.writeU2(f.NameIndex)
	w.writeU2(f.DescriptorIndex)
	writeAttributes(w, f.Attributes)
}

func (f *FieldInfo) copy(cp *ConstantPool) FieldInfo {
	c := *f
	c.Attributes = copyAttributes(f.Attributes, cp)
	return c
}
