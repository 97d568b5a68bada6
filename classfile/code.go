package classfile

import (
	"fmt"
	"slices"
	"strings"
)

// CodeAttribute holds a method body. Its nested attributes, conventionally
// LineNumberTable, LocalVariableTable and StackMapTable, belong to it alone.
type CodeAttribute struct {
	AttributeInfo
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []CodeException
	Attributes     []Attribute
}

// CodeException is one exception_table entry. CatchType 0 catches everything.
type CodeException struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

func (e CodeException) format(cp *ConstantPool, verbose bool) string {
	catch := "<Any exception>(0)"
	if e.CatchType != 0 {
		catch = CompactClassName(cp.GetClassName(e.CatchType), false)
		if verbose {
			catch += fmt.Sprintf("(%d)", e.CatchType)
		}
	}
	return fmt.Sprintf("%d\t%d\t%d\t%s", e.StartPC, e.EndPC, e.HandlerPC, catch)
}

func readCode(r *reader, info AttributeInfo, cfg *config) (*CodeAttribute, error) {
	a := &CodeAttribute{
		AttributeInfo: info,
		MaxStack:      r.readU2(),
		MaxLocals:     r.readU2(),
	}
	codeLength := r.readU4()
	a.Code = r.readBytes(int(codeLength))
	n := r.readU2()
	if r.err != nil {
		return nil, truncated("read Code", r.err)
	}
	a.ExceptionTable = make([]CodeException, n)
	for i := range a.ExceptionTable {
		a.ExceptionTable[i] = CodeException{
			StartPC:   r.readU2(),
			EndPC:     r.readU2(),
			HandlerPC: r.readU2(),
			CatchType: r.readU2(),
		}
	}
	if r.err != nil {
		return nil, truncated("read Code", r.err)
	}

	attrs, err := readAttributes(r, info.Pool, cfg)
	if err != nil {
		return nil, err
	}
	a.Attributes = attrs
	return a, nil
}

func (a *CodeAttribute) Kind() AttributeKind { return AttrCode }

func (a *CodeAttribute) payloadLength() uint32 {
	return 2 + 2 + 4 + uint32(len(a.Code)) +
		2 + 8*uint32(len(a.ExceptionTable)) +
		attributesSize(a.Attributes)
}

// SetCode replaces the bytecode and updates the attribute length.
func (a *CodeAttribute) SetCode(code []byte) {
	a.Code = code
	a.Length = a.payloadLength()
}

func (a *CodeAttribute) SetExceptionTable(table []CodeException) {
	a.ExceptionTable = table
	a.Length = a.payloadLength()
}

// SetAttributes replaces the nested attributes. Their own lengths must
// already be correct.
func (a *CodeAttribute) SetAttributes(attrs []Attribute) {
	a.Attributes = attrs
	a.Length = a.payloadLength()
}

func (a *CodeAttribute) LineNumberTable() *LineNumberTableAttribute {
	t, _ := FindAttribute[*LineNumberTableAttribute](a.Attributes)
	return t
}

func (a *CodeAttribute) LocalVariableTable() *LocalVariableTableAttribute {
	t, _ := FindAttribute[*LocalVariableTableAttribute](a.Attributes)
	return t
}

func (a *CodeAttribute) StackMapTable() *StackMapTableAttribute {
	t, _ := FindAttribute[*StackMapTableAttribute](a.Attributes)
	return t
}

func (a *CodeAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.Code = slices.Clone(a.Code)
	c.ExceptionTable = slices.Clone(a.ExceptionTable)
	c.Attributes = copyAttributes(a.Attributes, c.Pool)
	return &c
}

func (a *CodeAttribute) writePayload(w *writer) {
	w.writeU2(a.MaxStack)
	w.writeU2(a.MaxLocals)
	w.writeU4(uint32(len(a.Code)))
	w.writeBytes(a.Code)
	w.writeU2(uint16(len(a.ExceptionTable)))
	for _, e := range a.ExceptionTable {
		w.writeU2(e.StartPC)
		w.writeU2(e.EndPC)
		w.writeU2(e.HandlerPC)
		w.writeU2(e.CatchType)
	}
	writeAttributes(w, a.Attributes)
}

func (a *CodeAttribute) String() string {
	return a.Format(true)
}

// Format renders the header, the disassembled bytecode, the exception table
// and the nested attributes. verbose adds constant pool indices.
func (a *CodeAttribute) Format(verbose bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Code(max_stack = %d, max_locals = %d, code_length = %d)\n",
		a.MaxStack, a.MaxLocals, len(a.Code))

	code, err := CodeToString(a.Code, a.Pool, verbose)
	if err != nil {
		code = "<" + err.Error() + ">\n"
	}
	sb.WriteString(code)

	if len(a.ExceptionTable) > 0 {
		sb.WriteString("\nException handler(s) = \nFrom\tTo\tHandler\tType\n")
		for _, e := range a.ExceptionTable {
			sb.WriteString(e.format(a.Pool, verbose))
			sb.WriteString("\n")
		}
	}

	if len(a.Attributes) > 0 {
		sb.WriteString("\nAttribute(s) = ")
		for _, attr := range a.Attributes {
			sb.WriteString("\n")
			sb.WriteString(AttributeName(attr))
			sb.WriteString(":\n")
			sb.WriteString(attr.String())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
