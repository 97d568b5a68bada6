package classfile

import (
	"fmt"
	"strconv"
	"strings"
)

// Frame type boundaries of StackMapTable entries.
const (
	SameFrame                         = 0
	SameFrameMax                      = 63
	SameLocals1StackItemFrame         = 64
	SameLocals1StackItemFrameMax      = 127
	SameLocals1StackItemFrameExtended = 247
	ChopFrame                         = 248
	ChopFrameMax                      = 250
	SameFrameExtended                 = 251
	AppendFrame                       = 252
	AppendFrameMax                    = 254
	FullFrame                         = 255
)

type FrameShape uint8

const (
	ShapeInvalid FrameShape = iota
	ShapeSame
	ShapeSameLocals1StackItem
	ShapeSameLocals1StackItemExtended
	ShapeChop
	ShapeSameExtended
	ShapeAppend
	ShapeFull
)

var frameShapeNames = [...]string{
	ShapeInvalid:                      "UNKNOWN",
	ShapeSame:                         "SAME",
	ShapeSameLocals1StackItem:         "SAME_LOCALS_1_STACK",
	ShapeSameLocals1StackItemExtended: "SAME_LOCALS_1_STACK_EXTENDED",
	ShapeChop:                         "CHOP",
	ShapeSameExtended:                 "SAME_EXTENDED",
	ShapeAppend:                       "APPEND",
	ShapeFull:                         "FULL",
}

func (s FrameShape) String() string {
	if int(s) < len(frameShapeNames) {
		return frameShapeNames[s]
	}
	return "FrameShape(" + strconv.Itoa(int(s)) + ")"
}

// FrameShapeOf classifies a frame_type byte. Types 128 to 246 are reserved
// and yield ShapeInvalid.
func FrameShapeOf(frameType uint8) FrameShape {
	switch {
	case frameType <= SameFrameMax:
		return ShapeSame
	case frameType <= SameLocals1StackItemFrameMax:
		return ShapeSameLocals1StackItem
	case frameType < SameLocals1StackItemFrameExtended:
		return ShapeInvalid
	case frameType == SameLocals1StackItemFrameExtended:
		return ShapeSameLocals1StackItemExtended
	case frameType <= ChopFrameMax:
		return ShapeChop
	case frameType == SameFrameExtended:
		return ShapeSameExtended
	case frameType <= AppendFrameMax:
		return ShapeAppend
	default:
		return ShapeFull
	}
}

type StackMapTypeTag uint8

const (
	ItemBogus StackMapTypeTag = iota
	ItemInteger
	ItemFloat
	ItemDouble
	ItemLong
	ItemNull
	ItemInitObject
	ItemObject
	ItemNewObject
)

var itemNames = [...]string{
	"Bogus", "Integer", "Float", "Double", "Long", "Null", "InitObject", "Object", "NewObject",
}

func (t StackMapTypeTag) String() string {
	if int(t) < len(itemNames) {
		return itemNames[t]
	}
	return "Item(" + strconv.Itoa(int(t)) + ")"
}

// StackMapType is a verification_type_info. Index is a Class constant for
// ItemObject and the offset of the allocating new instruction for
// ItemNewObject; other tags carry no index.
type StackMapType struct {
	Tag   StackMapTypeTag
	Index uint16
}

func (t StackMapType) HasIndex() bool {
	return t.Tag == ItemObject || t.Tag == ItemNewObject
}

func (t StackMapType) size() int {
	if t.HasIndex() {
		return 3
	}
	return 1
}

func (t StackMapType) format(cp *ConstantPool) string {
	s := "(type=" + t.Tag.String()
	switch t.Tag {
	case ItemObject:
		s += ", class=" + CompactClassName(cp.GetClassName(t.Index), false)
	case ItemNewObject:
		s += ", offset=" + strconv.Itoa(int(t.Index))
	}
	return s + ")"
}

func readStackMapType(r *reader) (StackMapType, error) {
	t := StackMapType{Tag: StackMapTypeTag(r.readU1())}
	if r.err != nil {
		return t, nil
	}
	if t.Tag > ItemNewObject {
		return t, formatErrorf("read StackMapTable", "illegal verification type tag %d", t.Tag)
	}
	if t.HasIndex() {
		t.Index = r.readU2()
	}
	return t, nil
}

func readStackMapTypes(r *reader, n int) ([]StackMapType, error) {
	if r.err != nil {
		return nil, nil
	}
	types := make([]StackMapType, n)
	for i := range types {
		t, err := readStackMapType(r)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}

func writeStackMapTypes(w *writer, types []StackMapType) {
	for _, t := range types {
		w.writeU1(uint8(t.Tag))
		if t.HasIndex() {
			w.writeU2(t.Index)
		}
	}
}

func stackMapTypesSize(types []StackMapType) int {
	n := 0
	for _, t := range types {
		n += t.size()
	}
	return n
}

// StackMapEntry is one stack_map_frame. ByteCodeOffset is the offset delta
// stored in the frame, not an absolute pc.
type StackMapEntry struct {
	FrameType         uint8
	ByteCodeOffset    uint16
	TypesOfLocals     []StackMapType
	TypesOfStackItems []StackMapType
}

func (e *StackMapEntry) Shape() FrameShape { return FrameShapeOf(e.FrameType) }

func readStackMapEntry(r *reader) (StackMapEntry, error) {
	var err error
	e := StackMapEntry{FrameType: r.readU1()}
	if r.err != nil {
		return e, nil
	}

	switch e.Shape() {
	case ShapeSame:
		e.ByteCodeOffset = uint16(e.FrameType) - SameFrame
	case ShapeSameLocals1StackItem:
		e.ByteCodeOffset = uint16(e.FrameType) - SameLocals1StackItemFrame
		e.TypesOfStackItems, err = readStackMapTypes(r, 1)
	case ShapeSameLocals1StackItemExtended:
		e.ByteCodeOffset = r.readU2()
		e.TypesOfStackItems, err = readStackMapTypes(r, 1)
	case ShapeChop, ShapeSameExtended:
		e.ByteCodeOffset = r.readU2()
	case ShapeAppend:
		e.ByteCodeOffset = r.readU2()
		e.TypesOfLocals, err = readStackMapTypes(r, int(e.FrameType)-SameFrameExtended)
	case ShapeFull:
		e.ByteCodeOffset = r.readU2()
		e.TypesOfLocals, err = readStackMapTypes(r, int(r.readU2()))
		if err == nil {
			e.TypesOfStackItems, err = readStackMapTypes(r, int(r.readU2()))
		}
	default:
		return e, formatErrorf("read StackMapTable", "invalid frame type %d", e.FrameType)
	}
	return e, err
}

func (e *StackMapEntry) writeTo(w *writer) {
	w.writeU1(e.FrameType)
	switch e.Shape() {
	case ShapeSame:
	case ShapeSameLocals1StackItem:
		writeStackMapTypes(w, e.TypesOfStackItems)
	case ShapeSameLocals1StackItemExtended:
		w.writeU2(e.ByteCodeOffset)
		writeStackMapTypes(w, e.TypesOfStackItems)
	case ShapeChop, ShapeSameExtended:
		w.writeU2(e.ByteCodeOffset)
	case ShapeAppend:
		w.writeU2(e.ByteCodeOffset)
		writeStackMapTypes(w, e.TypesOfLocals)
	case ShapeFull:
		w.writeU2(e.ByteCodeOffset)
		w.writeU2(uint16(len(e.TypesOfLocals)))
		writeStackMapTypes(w, e.TypesOfLocals)
		w.writeU2(uint16(len(e.TypesOfStackItems)))
		writeStackMapTypes(w, e.TypesOfStackItems)
	default:
		if w.err == nil {
			w.err = formatErrorf("write StackMapTable", "invalid frame type %d", e.FrameType)
		}
	}
}

// Size returns the encoded size of the entry, derived from its shape.
func (e *StackMapEntry) Size() int {
	switch e.Shape() {
	case ShapeSame:
		return 1
	case ShapeSameLocals1StackItem:
		return 1 + stackMapTypesSize(e.TypesOfStackItems)
	case ShapeSameLocals1StackItemExtended:
		return 3 + stackMapTypesSize(e.TypesOfStackItems)
	case ShapeChop, ShapeSameExtended:
		return 3
	case ShapeAppend:
		return 3 + stackMapTypesSize(e.TypesOfLocals)
	case ShapeFull:
		return 7 + stackMapTypesSize(e.TypesOfLocals) + stackMapTypesSize(e.TypesOfStackItems)
	}
	return 1
}

// SetByteCodeOffset stores a new offset delta and moves SAME and
// SAME_LOCALS_1_STACK frames between their compact and extended encodings
// as the delta requires.
func (e *StackMapEntry) SetByteCodeOffset(delta uint16) error {
	compact := delta <= SameFrameMax
	switch e.Shape() {
	case ShapeSame, ShapeSameExtended:
		if e.Shape() == ShapeSameExtended && !compact {
			break
		}
		if compact {
			e.FrameType = uint8(SameFrame + delta)
		} else {
			e.FrameType = SameFrameExtended
		}
	case ShapeSameLocals1StackItem, ShapeSameLocals1StackItemExtended:
		if compact {
			e.FrameType = uint8(SameLocals1StackItemFrame + delta)
		} else {
			e.FrameType = SameLocals1StackItemFrameExtended
		}
	case ShapeChop, ShapeAppend, ShapeFull:
	default:
		return formatErrorf("stack map entry", "invalid frame type %d", e.FrameType)
	}
	e.ByteCodeOffset = delta
	return nil
}

func (e *StackMapEntry) clone() StackMapEntry {
	c := *e
	c.TypesOfLocals = append([]StackMapType(nil), e.TypesOfLocals...)
	c.TypesOfStackItems = append([]StackMapType(nil), e.TypesOfStackItems...)
	return c
}

func (e *StackMapEntry) format(cp *ConstantPool) string {
	var sb strings.Builder
	sb.WriteString("(")
	switch shape := e.Shape(); shape {
	case ShapeChop:
		fmt.Fprintf(&sb, "CHOP %d", SameFrameExtended-int(e.FrameType))
	case ShapeAppend:
		fmt.Fprintf(&sb, "APPEND %d", int(e.FrameType)-SameFrameExtended)
	case ShapeInvalid:
		fmt.Fprintf(&sb, "UNKNOWN (%d)", e.FrameType)
	default:
		sb.WriteString(shape.String())
	}
	fmt.Fprintf(&sb, ", offset delta=%d", e.ByteCodeOffset)
	writeTypes := func(label string, types []StackMapType) {
		if len(types) == 0 {
			return
		}
		fmt.Fprintf(&sb, ", %s={", label)
		for i, t := range types {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(t.format(cp))
		}
		sb.WriteString("}")
	}
	writeTypes("locals", e.TypesOfLocals)
	writeTypes("stack items", e.TypesOfStackItems)
	sb.WriteString(")")
	return sb.String()
}

type StackMapTableAttribute struct {
	AttributeInfo
	Entries []StackMapEntry
}

func readStackMapTable(r *reader, info AttributeInfo) (*StackMapTableAttribute, error) {
	a := &StackMapTableAttribute{AttributeInfo: info}
	n := r.readU2()
	if r.err != nil {
		return a, nil
	}
	a.Entries = make([]StackMapEntry, n)
	for i := range a.Entries {
		e, err := readStackMapEntry(r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		a.Entries[i] = e
	}
	return a, nil
}

func (a *StackMapTableAttribute) Kind() AttributeKind { return AttrStackMapTable }

// SetEntries replaces the frames and updates the attribute length.
func (a *StackMapTableAttribute) SetEntries(entries []StackMapEntry) {
	a.Entries = entries
	n := 2
	for i := range entries {
		n += entries[i].Size()
	}
	a.Length = uint32(n)
}

// AbsoluteOffsets turns the stored deltas into bytecode offsets. The first
// frame is relative to -1, each later one to its predecessor.
func (a *StackMapTableAttribute) AbsoluteOffsets() []int {
	offsets := make([]int, len(a.Entries))
	pc := -1
	for i, e := range a.Entries {
		pc += int(e.ByteCodeOffset) + 1
		offsets[i] = pc
	}
	return offsets
}

func (a *StackMapTableAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.Entries = make([]StackMapEntry, len(a.Entries))
	for i := range a.Entries {
		c.Entries[i] = a.Entries[i].clone()
	}
	return &c
}

func (a *StackMapTableAttribute) writePayload(w *writer) {
	w.writeU2(uint16(len(a.Entries)))
	for i := range a.Entries {
		a.Entries[i].writeTo(w)
	}
}

func (a *StackMapTableAttribute) String() string {
	var sb strings.Builder
	sb.WriteString("StackMap(")
	for i, pc := range a.AbsoluteOffsets() {
		fmt.Fprintf(&sb, "\n@%03d %s", pc, a.Entries[i].format(a.Pool))
	}
	sb.WriteString(")")
	return sb.String()
}
