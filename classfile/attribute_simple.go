package classfile

import (
	"fmt"
	"slices"
	"strings"
)

type SourceFileAttribute struct {
	AttributeInfo
	SourceFileIndex uint16
}

func (a *SourceFileAttribute) Kind() AttributeKind { return AttrSourceFile }

func (a *SourceFileAttribute) SourceFileName() string { return a.Pool.GetUtf8(a.SourceFileIndex) }

func (a *SourceFileAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	return &c
}

func (a *SourceFileAttribute) writePayload(w *writer) { w.writeU2(a.SourceFileIndex) }

func (a *SourceFileAttribute) String() string { return "SourceFile: " + a.SourceFileName() }

type ConstantValueAttribute struct {
	AttributeInfo
	ConstantValueIndex uint16
}

func (a *ConstantValueAttribute) Kind() AttributeKind { return AttrConstantValue }

func (a *ConstantValueAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	return &c
}

func (a *ConstantValueAttribute) writePayload(w *writer) { w.writeU2(a.ConstantValueIndex) }

func (a *ConstantValueAttribute) String() string {
	c, err := a.Pool.Get(a.ConstantValueIndex)
	if err != nil {
		return fmt.Sprintf("ConstantValue: #%d", a.ConstantValueIndex)
	}
	s, err := a.Pool.ResolveToString(c)
	if err != nil {
		return fmt.Sprintf("ConstantValue: #%d", a.ConstantValueIndex)
	}
	return s
}

type ExceptionsAttribute struct {
	AttributeInfo
	ExceptionIndexTable []uint16
}

func (a *ExceptionsAttribute) Kind() AttributeKind { return AttrExceptions }

func (a *ExceptionsAttribute) ExceptionNames() []string {
	return a.Pool.compactClassNames(a.ExceptionIndexTable)
}

func (a *ExceptionsAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.ExceptionIndexTable = slices.Clone(a.ExceptionIndexTable)
	return &c
}

func (a *ExceptionsAttribute) writePayload(w *writer) { w.writeU2s(a.ExceptionIndexTable) }

func (a *ExceptionsAttribute) String() string {
	return "Exceptions: " + strings.Join(a.ExceptionNames(), ", ")
}

type InnerClassesAttribute struct {
	AttributeInfo
	Classes []InnerClassEntry
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

func readInnerClasses(r *reader, info AttributeInfo) *InnerClassesAttribute {
	a := &InnerClassesAttribute{AttributeInfo: info}
	n := r.readU2()
	if r.err != nil {
		return a
	}
	a.Classes = make([]InnerClassEntry, n)
	for i := range a.Classes {
		a.Classes[i] = InnerClassEntry{
			InnerClassInfoIndex:   r.readU2(),
			OuterClassInfoIndex:   r.readU2(),
			InnerNameIndex:        r.readU2(),
			InnerClassAccessFlags: AccessFlags(r.readU2()),
		}
	}
	return a
}

func (a *InnerClassesAttribute) Kind() AttributeKind { return AttrInnerClasses }

func (a *InnerClassesAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.Classes = slices.Clone(a.Classes)
	return &c
}

func (a *InnerClassesAttribute) writePayload(w *writer) {
	w.writeU2(uint16(len(a.Classes)))
	for _, e := range a.Classes {
		w.writeU2(e.InnerClassInfoIndex)
		w.writeU2(e.OuterClassInfoIndex)
		w.writeU2(e.InnerNameIndex)
		w.writeU2(uint16(e.InnerClassAccessFlags))
	}
}

func (a *InnerClassesAttribute) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "InnerClasses(%d):", len(a.Classes))
	for _, e := range a.Classes {
		sb.WriteString("\n")
		sb.WriteString(e.format(a.Pool))
	}
	return sb.String()
}

func (e InnerClassEntry) format(cp *ConstantPool) string {
	inner := CompactClassName(cp.GetClassName(e.InnerClassInfoIndex), false)
	outer := " (not a member)"
	if e.OuterClassInfoIndex != 0 {
		outer = " of class " + CompactClassName(cp.GetClassName(e.OuterClassInfoIndex), false)
	}
	name := "(anonymous)"
	if e.InnerNameIndex != 0 {
		name = cp.GetUtf8(e.InnerNameIndex)
	}
	access := e.InnerClassAccessFlags.ClassModifiers()
	if access != "" {
		access += " "
	}
	return "  " + access + name + "=class " + inner + outer
}

// SyntheticAttribute has an empty payload in well-formed classes. Any bytes
// found are kept so they are written back.
type SyntheticAttribute struct {
	AttributeInfo
	Bytes []byte
}

func (a *SyntheticAttribute) Kind() AttributeKind { return AttrSynthetic }

func (a *SyntheticAttribute) Copy(cp *ConstantPool) Attribute {
	return &SyntheticAttribute{AttributeInfo: a.rebind(cp), Bytes: slices.Clone(a.Bytes)}
}

func (a *SyntheticAttribute) writePayload(w *writer) { w.writeBytes(a.Bytes) }

func (a *SyntheticAttribute) String() string { return "Synthetic" }

type DeprecatedAttribute struct {
	AttributeInfo
	Bytes []byte
}

func (a *DeprecatedAttribute) Kind() AttributeKind { return AttrDeprecated }

func (a *DeprecatedAttribute) Copy(cp *ConstantPool) Attribute {
	return &DeprecatedAttribute{AttributeInfo: a.rebind(cp), Bytes: slices.Clone(a.Bytes)}
}

func (a *DeprecatedAttribute) writePayload(w *writer) { w.writeBytes(a.Bytes) }

func (a *DeprecatedAttribute) String() string { return "Deprecated" }

type PMGClassAttribute struct {
	AttributeInfo
	PMGIndex      uint16
	PMGClassIndex uint16
}

func (a *PMGClassAttribute) Kind() AttributeKind { return AttrPMGClass }

func (a *PMGClassAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	return &c
}

func (a *PMGClassAttribute) writePayload(w *writer) {
	w.writeU2(a.PMGIndex)
	w.writeU2(a.PMGClassIndex)
}

func (a *PMGClassAttribute) String() string {
	return "PMGClass(" + a.Pool.GetUtf8(a.PMGIndex) + ", " + a.Pool.GetUtf8(a.PMGClassIndex) + ")"
}

type SignatureAttribute struct {
	AttributeInfo
	SignatureIndex uint16
}

func (a *SignatureAttribute) Kind() AttributeKind { return AttrSignature }

func (a *SignatureAttribute) Signature() string { return a.Pool.GetUtf8(a.SignatureIndex) }

func (a *SignatureAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	return &c
}

func (a *SignatureAttribute) writePayload(w *writer) { w.writeU2(a.SignatureIndex) }

func (a *SignatureAttribute) String() string { return "Signature: " + a.Signature() }

type SourceDebugExtensionAttribute struct {
	AttributeInfo
	DebugExtension []byte
}

func (a *SourceDebugExtensionAttribute) Kind() AttributeKind { return AttrSourceDebugExtension }

func (a *SourceDebugExtensionAttribute) Copy(cp *ConstantPool) Attribute {
	return &SourceDebugExtensionAttribute{AttributeInfo: a.rebind(cp), DebugExtension: slices.Clone(a.DebugExtension)}
}

func (a *SourceDebugExtensionAttribute) writePayload(w *writer) { w.writeBytes(a.DebugExtension) }

func (a *SourceDebugExtensionAttribute) String() string {
	s, err := decodeModifiedUtf8(a.DebugExtension)
	if err != nil {
		s = string(a.DebugExtension)
	}
	return "SourceDebugExtension: " + s
}

type EnclosingMethodAttribute struct {
	AttributeInfo
	ClassIndex  uint16
	MethodIndex uint16
}

func (a *EnclosingMethodAttribute) Kind() AttributeKind { return AttrEnclosingMethod }

func (a *EnclosingMethodAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	return &c
}

func (a *EnclosingMethodAttribute) writePayload(w *writer) {
	w.writeU2(a.ClassIndex)
	w.writeU2(a.MethodIndex)
}

func (a *EnclosingMethodAttribute) String() string {
	s := "EnclosingMethod: " + CompactClassName(a.Pool.GetClassName(a.ClassIndex), false)
	if a.MethodIndex != 0 {
		name, desc := a.Pool.GetNameAndType(a.MethodIndex)
		s += "." + name + " " + desc
	}
	return s
}

type MethodParametersAttribute struct {
	AttributeInfo
	Parameters []MethodParameter
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

func readMethodParameters(r *reader, info AttributeInfo) *MethodParametersAttribute {
	a := &MethodParametersAttribute{AttributeInfo: info}
	n := r.readU1()
	if r.err != nil {
		return a
	}
	a.Parameters = make([]MethodParameter, n)
	for i := range a.Parameters {
		a.Parameters[i] = MethodParameter{NameIndex: r.readU2(), AccessFlags: AccessFlags(r.readU2())}
	}
	return a
}

func (a *MethodParametersAttribute) Kind() AttributeKind { return AttrMethodParameters }

func (a *MethodParametersAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.Parameters = slices.Clone(a.Parameters)
	return &c
}

func (a *MethodParametersAttribute) writePayload(w *writer) {
	w.writeU1(uint8(len(a.Parameters)))
	for _, p := range a.Parameters {
		w.writeU2(p.NameIndex)
		w.writeU2(uint16(p.AccessFlags))
	}
}

func (a *MethodParametersAttribute) String() string {
	var sb strings.Builder
	sb.WriteString("MethodParameters:")
	for _, p := range a.Parameters {
		name := "<unnamed>"
		if p.NameIndex != 0 {
			name = a.Pool.GetUtf8(p.NameIndex)
		}
		fmt.Fprintf(&sb, "\n  %s", name)
		if p.AccessFlags.IsFinal() {
			sb.WriteString(" final")
		}
		if p.AccessFlags.IsSynthetic() {
			sb.WriteString(" synthetic")
		}
		if p.AccessFlags&AccMandated != 0 {
			sb.WriteString(" mandated")
		}
	}
	return sb.String()
}

type NestHostAttribute struct {
	AttributeInfo
	HostClassIndex uint16
}

func (a *NestHostAttribute) Kind() AttributeKind { return AttrNestHost }

func (a *NestHostAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	return &c
}

func (a *NestHostAttribute) writePayload(w *writer) { w.writeU2(a.HostClassIndex) }

func (a *NestHostAttribute) String() string {
	return "NestHost: " + CompactClassName(a.Pool.GetClassName(a.HostClassIndex), false)
}

type NestMembersAttribute struct {
	AttributeInfo
	Classes []uint16
}

func (a *NestMembersAttribute) Kind() AttributeKind { return AttrNestMembers }

func (a *NestMembersAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.Classes = slices.Clone(a.Classes)
	return &c
}

func (a *NestMembersAttribute) writePayload(w *writer) { w.writeU2s(a.Classes) }

func (a *NestMembersAttribute) String() string {
	return classListString("NestMembers", a.Pool.compactClassNames(a.Classes))
}

type PermittedSubclassesAttribute struct {
	AttributeInfo
	Classes []uint16
}

func (a *PermittedSubclassesAttribute) Kind() AttributeKind { return AttrPermittedSubclasses }

func (a *PermittedSubclassesAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.Classes = slices.Clone(a.Classes)
	return &c
}

func (a *PermittedSubclassesAttribute) writePayload(w *writer) { w.writeU2s(a.Classes) }

func (a *PermittedSubclassesAttribute) String() string {
	return classListString("PermittedSubclasses", a.Pool.compactClassNames(a.Classes))
}

func classListString(title string, names []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(%d):", title, len(names))
	for _, name := range names {
		sb.WriteString("\n  ")
		sb.WriteString(name)
	}
	return sb.String()
}

func (cp *ConstantPool) compactClassNames(indices []uint16) []string {
	names := make([]string, len(indices))
	for i, idx := range indices {
		names[i] = CompactClassName(cp.GetClassName(idx), false)
	}
	return names
}
