package classfile

import (
	"fmt"
	"strings"
)

// Type annotation target types.
const (
	TargetClassTypeParameter           = 0x00
	TargetMethodTypeParameter          = 0x01
	TargetClassExtends                 = 0x10
	TargetClassTypeParameterBound      = 0x11
	TargetMethodTypeParameterBound     = 0x12
	TargetField                        = 0x13
	TargetMethodReturn                 = 0x14
	TargetMethodReceiver               = 0x15
	TargetMethodFormalParameter        = 0x16
	TargetThrows                       = 0x17
	TargetLocalVariable                = 0x40
	TargetResourceVariable             = 0x41
	TargetExceptionParameter           = 0x42
	TargetInstanceOf                   = 0x43
	TargetNew                          = 0x44
	TargetConstructorReference         = 0x45
	TargetMethodReference              = 0x46
	TargetCast                         = 0x47
	TargetConstructorInvocationTypeArg = 0x48
	TargetMethodInvocationTypeArg      = 0x49
	TargetConstructorReferenceTypeArg  = 0x4A
	TargetMethodReferenceTypeArg       = 0x4B
)

// TargetInfo is the union of all target_info shapes. Which fields are
// meaningful follows from the annotation's TargetType.
type TargetInfo struct {
	TypeParameterIndex   uint8
	SupertypeIndex       uint16
	BoundIndex           uint8
	FormalParameterIndex uint8
	ThrowsTypeIndex      uint16
	LocalVarTable        []LocalVarTarget
	ExceptionTableIndex  uint16
	Offset               uint16
	TypeArgumentIndex    uint8
}

type LocalVarTarget struct {
	StartPC uint16
	Length  uint16
	Index   uint16
}

type TypePathEntry struct {
	TypePathKind      uint8
	TypeArgumentIndex uint8
}

type TypeAnnotation struct {
	TargetType uint8
	TargetInfo TargetInfo
	TargetPath []TypePathEntry
	Annotation AnnotationEntry
}

func readTypeAnnotation(r *reader) (TypeAnnotation, error) {
	ta := TypeAnnotation{TargetType: r.readU1()}
	if r.err != nil {
		return ta, nil
	}
	ti := &ta.TargetInfo

	switch ta.TargetType {
	case TargetClassTypeParameter, TargetMethodTypeParameter:
		ti.TypeParameterIndex = r.readU1()
	case TargetClassExtends:
		ti.SupertypeIndex = r.readU2()
	case TargetClassTypeParameterBound, TargetMethodTypeParameterBound:
		ti.TypeParameterIndex = r.readU1()
		ti.BoundIndex = r.readU1()
	case TargetField, TargetMethodReturn, TargetMethodReceiver:
	case TargetMethodFormalParameter:
		ti.FormalParameterIndex = r.readU1()
	case TargetThrows:
		ti.ThrowsTypeIndex = r.readU2()
	case TargetLocalVariable, TargetResourceVariable:
		n := r.readU2()
		if r.err != nil {
			return ta, nil
		}
		ti.LocalVarTable = make([]LocalVarTarget, n)
		for i := range ti.LocalVarTable {
			ti.LocalVarTable[i] = LocalVarTarget{StartPC: r.readU2(), Length: r.readU2(), Index: r.readU2()}
		}
	case TargetExceptionParameter:
		ti.ExceptionTableIndex = r.readU2()
	case TargetInstanceOf, TargetNew, TargetConstructorReference, TargetMethodReference:
		ti.Offset = r.readU2()
	case TargetCast, TargetConstructorInvocationTypeArg, TargetMethodInvocationTypeArg,
		TargetConstructorReferenceTypeArg, TargetMethodReferenceTypeArg:
		ti.Offset = r.readU2()
		ti.TypeArgumentIndex = r.readU1()
	default:
		return ta, formatErrorf("read type annotation", "unknown target type 0x%02x", ta.TargetType)
	}

	n := r.readU1()
	if r.err != nil {
		return ta, nil
	}
	ta.TargetPath = make([]TypePathEntry, n)
	for i := range ta.TargetPath {
		ta.TargetPath[i] = TypePathEntry{TypePathKind: r.readU1(), TypeArgumentIndex: r.readU1()}
	}

	a, err := readAnnotation(r)
	if err != nil {
		return ta, err
	}
	ta.Annotation = a
	return ta, nil
}

func (ta *TypeAnnotation) writeTo(w *writer) {
	ti := &ta.TargetInfo
	w.writeU1(ta.TargetType)
	switch ta.TargetType {
	case TargetClassTypeParameter, TargetMethodTypeParameter:
		w.writeU1(ti.TypeParameterIndex)
	case TargetClassExtends:
		w.writeU2(ti.SupertypeIndex)
	case TargetClassTypeParameterBound, TargetMethodTypeParameterBound:
		w.writeU1(ti.TypeParameterIndex)
		w.writeU1(ti.BoundIndex)
	case TargetMethodFormalParameter:
		w.writeU1(ti.FormalParameterIndex)
	case TargetThrows:
		w.writeU2(ti.ThrowsTypeIndex)
	case TargetLocalVariable, TargetResourceVariable:
		w.writeU2(uint16(len(ti.LocalVarTable)))
		for _, lv := range ti.LocalVarTable {
			w.writeU2(lv.StartPC)
			w.writeU2(lv.Length)
			w.writeU2(lv.Index)
		}
	case TargetExceptionParameter:
		w.writeU2(ti.ExceptionTableIndex)
	case TargetInstanceOf, TargetNew, TargetConstructorReference, TargetMethodReference:
		w.writeU2(ti.Offset)
	case TargetCast, TargetConstructorInvocationTypeArg, TargetMethodInvocationTypeArg,
		TargetConstructorReferenceTypeArg, TargetMethodReferenceTypeArg:
		w.writeU2(ti.Offset)
		w.writeU1(ti.TypeArgumentIndex)
	}
	w.writeU1(uint8(len(ta.TargetPath)))
	for _, p := range ta.TargetPath {
		w.writeU1(p.TypePathKind)
		w.writeU1(p.TypeArgumentIndex)
	}
	ta.Annotation.writeTo(w)
}

func (ta *TypeAnnotation) clone() TypeAnnotation {
	c := *ta
	c.TargetInfo.LocalVarTable = append([]LocalVarTarget(nil), ta.TargetInfo.LocalVarTable...)
	c.TargetPath = append([]TypePathEntry(nil), ta.TargetPath...)
	c.Annotation = ta.Annotation.clone()
	return c
}

func (ta *TypeAnnotation) targetString() string {
	ti := &ta.TargetInfo
	switch ta.TargetType {
	case TargetClassTypeParameter, TargetMethodTypeParameter:
		return fmt.Sprintf("type parameter %d", ti.TypeParameterIndex)
	case TargetClassExtends:
		if ti.SupertypeIndex == 0xFFFF {
			return "extends"
		}
		return fmt.Sprintf("implements %d", ti.SupertypeIndex)
	case TargetClassTypeParameterBound, TargetMethodTypeParameterBound:
		return fmt.Sprintf("type parameter %d bound %d", ti.TypeParameterIndex, ti.BoundIndex)
	case TargetField:
		return "field"
	case TargetMethodReturn:
		return "return"
	case TargetMethodReceiver:
		return "receiver"
	case TargetMethodFormalParameter:
		return fmt.Sprintf("parameter %d", ti.FormalParameterIndex)
	case TargetThrows:
		return fmt.Sprintf("throws %d", ti.ThrowsTypeIndex)
	case TargetLocalVariable, TargetResourceVariable:
		parts := make([]string, len(ti.LocalVarTable))
		for i, lv := range ti.LocalVarTable {
			parts[i] = fmt.Sprintf("start=%d, length=%d, index=%d", lv.StartPC, lv.Length, lv.Index)
		}
		return "local {" + strings.Join(parts, "; ") + "}"
	case TargetExceptionParameter:
		return fmt.Sprintf("exception %d", ti.ExceptionTableIndex)
	case TargetInstanceOf, TargetNew, TargetConstructorReference, TargetMethodReference:
		return fmt.Sprintf("offset %d", ti.Offset)
	}
	return fmt.Sprintf("offset %d type argument %d", ti.Offset, ti.TypeArgumentIndex)
}

// TypeAnnotationsAttribute is RuntimeVisibleTypeAnnotations or
// RuntimeInvisibleTypeAnnotations depending on Visible.
type TypeAnnotationsAttribute struct {
	AttributeInfo
	Visible     bool
	Annotations []TypeAnnotation
}

func readTypeAnnotations(r *reader, info AttributeInfo, visible bool) (*TypeAnnotationsAttribute, error) {
	a := &TypeAnnotationsAttribute{AttributeInfo: info, Visible: visible}
	n := r.readU2()
	if r.err != nil {
		return a, nil
	}
	a.Annotations = make([]TypeAnnotation, n)
	for i := range a.Annotations {
		ta, err := readTypeAnnotation(r)
		if err != nil {
			return nil, err
		}
		a.Annotations[i] = ta
	}
	return a, nil
}

func (a *TypeAnnotationsAttribute) Kind() AttributeKind {
	if a.Visible {
		return AttrRuntimeVisibleTypeAnnotations
	}
	return AttrRuntimeInvisibleTypeAnnotations
}

func (a *TypeAnnotationsAttribute) Copy(cp *ConstantPool) Attribute {
	c := &TypeAnnotationsAttribute{AttributeInfo: a.rebind(cp), Visible: a.Visible}
	if a.Annotations != nil {
		c.Annotations = make([]TypeAnnotation, len(a.Annotations))
		for i := range a.Annotations {
			c.Annotations[i] = a.Annotations[i].clone()
		}
	}
	return c
}

func (a *TypeAnnotationsAttribute) writePayload(w *writer) {
	w.writeU2(uint16(len(a.Annotations)))
	for i := range a.Annotations {
		a.Annotations[i].writeTo(w)
	}
}

func (a *TypeAnnotationsAttribute) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:", a.Kind())
	for i := range a.Annotations {
		ta := &a.Annotations[i]
		fmt.Fprintf(&sb, "\n  %s [%s]", ta.Annotation.Format(a.Pool), ta.targetString())
	}
	return sb.String()
}
