package classfile

import (
	"fmt"
	"strconv"
	"strings"
)

// Element value tags.
const (
	ElementByte       = 'B'
	ElementChar       = 'C'
	ElementDouble     = 'D'
	ElementFloat      = 'F'
	ElementInt        = 'I'
	ElementLong       = 'J'
	ElementShort      = 'S'
	ElementBoolean    = 'Z'
	ElementString     = 's'
	ElementEnum       = 'e'
	ElementClass      = 'c'
	ElementAnnotation = '@'
	ElementArray      = '['
)

// ElementValue is the value of an annotation element: a constant, an enum
// constant, a class literal, a nested annotation or an array of values.
type ElementValue interface {
	ElementTag() byte
	Format(cp *ConstantPool) string

	writeTo(w *writer)
	clone() ElementValue
}

// ConstElementValue covers the primitive tags and 's'. ConstValueIndex
// points to an Integer, Long, Float, Double or Utf8 constant.
type ConstElementValue struct {
	Tag             byte
	ConstValueIndex uint16
}

type EnumElementValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

type ClassElementValue struct {
	ClassInfoIndex uint16
}

type AnnotationElementValue struct {
	Annotation AnnotationEntry
}

type ArrayElementValue struct {
	Values []ElementValue
}

func (v *ConstElementValue) ElementTag() byte      { return v.Tag }
func (v *EnumElementValue) ElementTag() byte       { return ElementEnum }
func (v *ClassElementValue) ElementTag() byte      { return ElementClass }
func (v *AnnotationElementValue) ElementTag() byte { return ElementAnnotation }
func (v *ArrayElementValue) ElementTag() byte      { return ElementArray }

func readElementValue(r *reader) (ElementValue, error) {
	tag := r.readU1()
	if r.err != nil {
		return nil, nil
	}
	switch tag {
	case ElementByte, ElementChar, ElementDouble, ElementFloat, ElementInt,
		ElementLong, ElementShort, ElementBoolean, ElementString:
		return &ConstElementValue{Tag: tag, ConstValueIndex: r.readU2()}, nil
	case ElementEnum:
		return &EnumElementValue{TypeNameIndex: r.readU2(), ConstNameIndex: r.readU2()}, nil
	case ElementClass:
		return &ClassElementValue{ClassInfoIndex: r.readU2()}, nil
	case ElementAnnotation:
		a, err := readAnnotation(r)
		if err != nil {
			return nil, err
		}
		return &AnnotationElementValue{Annotation: a}, nil
	case ElementArray:
		n := r.readU2()
		if r.err != nil {
			return nil, nil
		}
		v := &ArrayElementValue{Values: make([]ElementValue, n)}
		for i := range v.Values {
			ev, err := readElementValue(r)
			if err != nil {
				return nil, err
			}
			v.Values[i] = ev
		}
		return v, nil
	}
	return nil, formatErrorf("read element value", "unknown element value tag %q", tag)
}

func (v *ConstElementValue) writeTo(w *writer) {
	w.writeU1(v.Tag)
	w.writeU2(v.ConstValueIndex)
}

func (v *EnumElementValue) writeTo(w *writer) {
	w.writeU1(ElementEnum)
	w.writeU2(v.TypeNameIndex)
	w.writeU2(v.ConstNameIndex)
}

func (v *ClassElementValue) writeTo(w *writer) {
	w.writeU1(ElementClass)
	w.writeU2(v.ClassInfoIndex)
}

func (v *AnnotationElementValue) writeTo(w *writer) {
	w.writeU1(ElementAnnotation)
	v.Annotation.writeTo(w)
}

func (v *ArrayElementValue) writeTo(w *writer) {
	w.writeU1(ElementArray)
	w.writeU2(uint16(len(v.Values)))
	for _, ev := range v.Values {
		ev.writeTo(w)
	}
}

func (v *ConstElementValue) clone() ElementValue { c := *v; return &c }
func (v *EnumElementValue) clone() ElementValue  { c := *v; return &c }
func (v *ClassElementValue) clone() ElementValue { c := *v; return &c }

func (v *AnnotationElementValue) clone() ElementValue {
	return &AnnotationElementValue{Annotation: v.Annotation.clone()}
}

func (v *ArrayElementValue) clone() ElementValue {
	c := &ArrayElementValue{Values: make([]ElementValue, len(v.Values))}
	for i, ev := range v.Values {
		c.Values[i] = ev.clone()
	}
	return c
}

func (v *ConstElementValue) Format(cp *ConstantPool) string {
	switch v.Tag {
	case ElementInt, ElementByte, ElementShort:
		n, _ := cp.GetInteger(v.ConstValueIndex)
		return strconv.Itoa(int(n))
	case ElementChar:
		n, _ := cp.GetInteger(v.ConstValueIndex)
		return string(rune(n))
	case ElementBoolean:
		n, _ := cp.GetInteger(v.ConstValueIndex)
		return strconv.FormatBool(n != 0)
	case ElementLong:
		n, _ := cp.GetLong(v.ConstValueIndex)
		return strconv.FormatInt(n, 10)
	case ElementFloat:
		f, _ := cp.GetFloat(v.ConstValueIndex)
		return javaFloatString(float64(f), 32)
	case ElementDouble:
		d, _ := cp.GetDouble(v.ConstValueIndex)
		return javaFloatString(d, 64)
	case ElementString:
		return cp.GetUtf8(v.ConstValueIndex)
	}
	return fmt.Sprintf("#%d", v.ConstValueIndex)
}

func (v *EnumElementValue) Format(cp *ConstantPool) string {
	return renderType(cp.GetUtf8(v.TypeNameIndex)) + "." + cp.GetUtf8(v.ConstNameIndex)
}

func (v *ClassElementValue) Format(cp *ConstantPool) string {
	return renderType(cp.GetUtf8(v.ClassInfoIndex)) + ".class"
}

func (v *AnnotationElementValue) Format(cp *ConstantPool) string {
	return v.Annotation.Format(cp)
}

func (v *ArrayElementValue) Format(cp *ConstantPool) string {
	parts := make([]string, len(v.Values))
	for i, ev := range v.Values {
		parts[i] = ev.Format(cp)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// renderType shows a field descriptor as a Java type, or the raw text when
// it does not parse.
func renderType(desc string) string {
	s, err := TypeSignatureToString(desc, false)
	if err != nil {
		return desc
	}
	return s
}

type ElementValuePair struct {
	NameIndex uint16
	Value     ElementValue
}

type AnnotationEntry struct {
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

func readAnnotation(r *reader) (AnnotationEntry, error) {
	a := AnnotationEntry{TypeIndex: r.readU2()}
	n := r.readU2()
	if r.err != nil {
		return a, nil
	}
	a.ElementValuePairs = make([]ElementValuePair, n)
	for i := range a.ElementValuePairs {
		name := r.readU2()
		v, err := readElementValue(r)
		if err != nil {
			return a, err
		}
		a.ElementValuePairs[i] = ElementValuePair{NameIndex: name, Value: v}
	}
	return a, nil
}

func readAnnotationEntries(r *reader) ([]AnnotationEntry, error) {
	n := r.readU2()
	if r.err != nil {
		return nil, nil
	}
	entries := make([]AnnotationEntry, n)
	for i := range entries {
		a, err := readAnnotation(r)
		if err != nil {
			return nil, err
		}
		entries[i] = a
	}
	return entries, nil
}

func (a *AnnotationEntry) writeTo(w *writer) {
	w.writeU2(a.TypeIndex)
	w.writeU2(uint16(len(a.ElementValuePairs)))
	for _, p := range a.ElementValuePairs {
		w.writeU2(p.NameIndex)
		p.Value.writeTo(w)
	}
}

func writeAnnotationEntries(w *writer, entries []AnnotationEntry) {
	w.writeU2(uint16(len(entries)))
	for i := range entries {
		entries[i].writeTo(w)
	}
}

func (a *AnnotationEntry) clone() AnnotationEntry {
	c := AnnotationEntry{TypeIndex: a.TypeIndex}
	if a.ElementValuePairs != nil {
		c.ElementValuePairs = make([]ElementValuePair, len(a.ElementValuePairs))
		for i, p := range a.ElementValuePairs {
			c.ElementValuePairs[i] = ElementValuePair{NameIndex: p.NameIndex, Value: p.Value.clone()}
		}
	}
	return c
}

func cloneAnnotationEntries(entries []AnnotationEntry) []AnnotationEntry {
	if entries == nil {
		return nil
	}
	out := make([]AnnotationEntry, len(entries))
	for i := range entries {
		out[i] = entries[i].clone()
	}
	return out
}

// AnnotationType returns the annotation's type descriptor.
func (a *AnnotationEntry) AnnotationType(cp *ConstantPool) string {
	return cp.GetUtf8(a.TypeIndex)
}

// Format renders the annotation as @Type(name=value,...).
func (a *AnnotationEntry) Format(cp *ConstantPool) string {
	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(renderType(cp.GetUtf8(a.TypeIndex)))
	if len(a.ElementValuePairs) > 0 {
		sb.WriteString("(")
		for i, p := range a.ElementValuePairs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(cp.GetUtf8(p.NameIndex))
			sb.WriteString("=")
			sb.WriteString(p.Value.Format(cp))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

// AnnotationsAttribute is RuntimeVisibleAnnotations or
// RuntimeInvisibleAnnotations depending on Visible.
type AnnotationsAttribute struct {
	AttributeInfo
	Visible     bool
	Annotations []AnnotationEntry
}

func readAnnotations(r *reader, info AttributeInfo, visible bool) (*AnnotationsAttribute, error) {
	entries, err := readAnnotationEntries(r)
	if err != nil {
		return nil, err
	}
	return &AnnotationsAttribute{AttributeInfo: info, Visible: visible, Annotations: entries}, nil
}

func (a *AnnotationsAttribute) Kind() AttributeKind {
	if a.Visible {
		return AttrRuntimeVisibleAnnotations
	}
	return AttrRuntimeInvisibleAnnotations
}

func (a *AnnotationsAttribute) Copy(cp *ConstantPool) Attribute {
	return &AnnotationsAttribute{
		AttributeInfo: a.rebind(cp),
		Visible:       a.Visible,
		Annotations:   cloneAnnotationEntries(a.Annotations),
	}
}

func (a *AnnotationsAttribute) writePayload(w *writer) {
	writeAnnotationEntries(w, a.Annotations)
}

func (a *AnnotationsAttribute) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:", a.Kind())
	for i := range a.Annotations {
		sb.WriteString("\n  ")
		sb.WriteString(a.Annotations[i].Format(a.Pool))
	}
	return sb.String()
}

// ParameterAnnotationsAttribute is RuntimeVisibleParameterAnnotations or
// RuntimeInvisibleParameterAnnotations, one entry per formal parameter.
type ParameterAnnotationsAttribute struct {
	AttributeInfo
	Visible              bool
	ParameterAnnotations [][]AnnotationEntry
}

func readParameterAnnotations(r *reader, info AttributeInfo, visible bool) (*ParameterAnnotationsAttribute, error) {
	a := &ParameterAnnotationsAttribute{AttributeInfo: info, Visible: visible}
	n := r.readU1()
	if r.err != nil {
		return a, nil
	}
	a.ParameterAnnotations = make([][]AnnotationEntry, n)
	for i := range a.ParameterAnnotations {
		entries, err := readAnnotationEntries(r)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		a.ParameterAnnotations[i] = entries
	}
	return a, nil
}

func (a *ParameterAnnotationsAttribute) Kind() AttributeKind {
	if a.Visible {
		return AttrRuntimeVisibleParameterAnnotations
	}
	return AttrRuntimeInvisibleParameterAnnotations
}

func (a *ParameterAnnotationsAttribute) Copy(cp *ConstantPool) Attribute {
	c := &ParameterAnnotationsAttribute{AttributeInfo: a.rebind(cp), Visible: a.Visible}
	if a.ParameterAnnotations != nil {
		c.ParameterAnnotations = make([][]AnnotationEntry, len(a.ParameterAnnotations))
		for i, entries := range a.ParameterAnnotations {
			c.ParameterAnnotations[i] = cloneAnnotationEntries(entries)
		}
	}
	return c
}

func (a *ParameterAnnotationsAttribute) writePayload(w *writer) {
	w.writeU1(uint8(len(a.ParameterAnnotations)))
	for _, entries := range a.ParameterAnnotations {
		writeAnnotationEntries(w, entries)
	}
}

func (a *ParameterAnnotationsAttribute) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:", a.Kind())
	for i, entries := range a.ParameterAnnotations {
		fmt.Fprintf(&sb, "\n  parameter %d:", i)
		for j := range entries {
			sb.WriteString(" ")
			sb.WriteString(entries[j].Format(a.Pool))
		}
	}
	return sb.String()
}

type AnnotationDefaultAttribute struct {
	AttributeInfo
	DefaultValue ElementValue
}

func (a *AnnotationDefaultAttribute) Kind() AttributeKind { return AttrAnnotationDefault }

func (a *AnnotationDefaultAttribute) Copy(cp *ConstantPool) Attribute {
	c := &AnnotationDefaultAttribute{AttributeInfo: a.rebind(cp)}
	if a.DefaultValue != nil {
		c.DefaultValue = a.DefaultValue.clone()
	}
	return c
}

func (a *AnnotationDefaultAttribute) writePayload(w *writer) {
	a.DefaultValue.writeTo(w)
}

func (a *AnnotationDefaultAttribute) String() string {
	return "AnnotationDefault: " + a.DefaultValue.Format(a.Pool)
}
