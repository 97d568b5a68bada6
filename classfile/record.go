package classfile

import (
	"fmt"
	"strings"
)

type RecordAttribute struct {
	AttributeInfo
	Components []RecordComponentInfo
}

type RecordComponentInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []Attribute
}

func readRecord(r *reader, info AttributeInfo, cfg *config) (*RecordAttribute, error) {
	a := &RecordAttribute{AttributeInfo: info}
	n := r.readU2()
	if r.err != nil {
		return a, nil
	}
	a.Components = make([]RecordComponentInfo, n)
	for i := range a.Components {
		c := RecordComponentInfo{NameIndex: r.readU2(), DescriptorIndex: r.readU2()}
		attrs, err := readAttributes(r, info.Pool, cfg)
		if err != nil {
			return nil, fmt.Errorf("record component %d: %w", i, err)
		}
		c.Attributes = attrs
		a.Components[i] = c
	}
	return a, nil
}

func (a *RecordAttribute) Kind() AttributeKind { return AttrRecord }

func (a *RecordAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	c.Components = make([]RecordComponentInfo, len(a.Components))
	for i, rc := range a.Components {
		rc.Attributes = copyAttributes(rc.Attributes, c.Pool)
		c.Components[i] = rc
	}
	return &c
}

func (a *RecordAttribute) writePayload(w *writer) {
	w.writeU2(uint16(len(a.Components)))
	for _, rc := range a.Components {
		w.writeU2(rc.NameIndex)
		w.writeU2(rc.DescriptorIndex)
		writeAttributes(w, rc.Attributes)
	}
}

func (a *RecordAttribute) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Record(%d):", len(a.Components))
	for _, rc := range a.Components {
		fmt.Fprintf(&sb, "\n  %s %s", renderType(a.Pool.GetUtf8(rc.DescriptorIndex)), a.Pool.GetUtf8(rc.NameIndex))
		for _, attr := range rc.Attributes {
			sb.WriteString("\n    ")
			sb.WriteString(strings.ReplaceAll(attr.String(), "\n", "\n    "))
		}
	}
	return sb.String()
}
