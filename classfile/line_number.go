package classfile

import (
	"fmt"
	"slices"
	"strings"
)

type LineNumberTableAttribute struct {
	AttributeInfo
	LineNumberTable []LineNumberEntry
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

func (e LineNumberEntry) String() string {
	return fmt.Sprintf("LineNumber(%d, %d)", e.StartPC, e.LineNumber)
}

func readLineNumberTable(r *reader, info AttributeInfo) *LineNumberTableAttribute {
	a := &LineNumberTableAttribute{AttributeInfo: info}
	n := r.readU2()
	if r.err != nil {
		return a
	}
	a.LineNumberTable = make([]LineNumberEntry, n)
	for i := range a.LineNumberTable {
		a.LineNumberTable[i] = LineNumberEntry{StartPC: r.readU2(), LineNumber: r.readU2()}
	}
	return a
}

func (a *LineNumberTableAttribute) Kind() AttributeKind { return AttrLineNumberTable }

func (a *LineNumberTableAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.LineNumberTable = slices.Clone(a.LineNumberTable)
	return &c
}

func (a *LineNumberTableAttribute) writePayload(w *writer) {
	w.writeU2(uint16(len(a.LineNumberTable)))
	for _, e := range a.LineNumberTable {
		w.writeU2(e.StartPC)
		w.writeU2(e.LineNumber)
	}
}

// SourceLine returns the line of the entry with the greatest start pc not
// after pc, or -1 when no entry covers pc.
func (a *LineNumberTableAttribute) SourceLine(pc int) int {
	line, best := -1, -1
	for _, e := range a.LineNumberTable {
		start := int(e.StartPC)
		if start <= pc && start > best {
			best = start
			line = int(e.LineNumber)
		}
	}
	return line
}

func (a *LineNumberTableAttribute) String() string {
	const width = 72
	var sb strings.Builder
	lineLen := 0
	for i, e := range a.LineNumberTable {
		s := e.String()
		if i > 0 {
			s = ", " + s
		}
		if lineLen > 0 && lineLen+len(s) > width {
			sb.WriteString(",\n")
			s = strings.TrimPrefix(s, ", ")
			lineLen = 0
		}
		sb.WriteString(s)
		lineLen += len(s)
	}
	return sb.String()
}
