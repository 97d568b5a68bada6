package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classkit/classfile"
)

// LineEncoder writes one tab-separated line for the class and one per
// member, suitable for grep and cut.
type LineEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(class *classfile.ClassFile) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	c := e.class
	cp := c.ConstantPool

	fmt.Fprintf(&sb, "%s\t%s\t%s\n",
		classKind(c),
		classfile.InternalToSourceName(c.ClassName()),
		modifiersStr(visibility(c.AccessFlags), flagNames(c.AccessFlags, classFlagNames)),
	)

	for i := range c.Fields {
		f := &c.Fields[i]
		ft, err := f.ParsedDescriptor(cp)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name(cp), err)
		}
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\t%s\n",
			f.Name(cp),
			ft.String(),
			visibility(f.AccessFlags),
			modifiersStr("", flagNames(f.AccessFlags, fieldFlagNames)),
		)
	}

	for i := range c.Methods {
		m := &c.Methods[i]
		md, err := m.ParsedDescriptor(cp)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", m.Name(cp), err)
		}
		returnType := "void"
		if md.ReturnType != nil {
			returnType = md.ReturnType.String()
		}
		fmt.Fprintf(&sb, "method\t%s\t%s\t%s\t%s\t%s\n",
			m.Name(cp),
			returnType,
			parametersStr(md),
			visibility(m.AccessFlags),
			modifiersStr("", flagNames(m.AccessFlags, methodFlagNames)),
		)
	}

	if rec, ok := classfile.FindAttribute[*classfile.RecordAttribute](c.Attributes); ok {
		for _, rc := range rec.Components {
			ft, err := classfile.ParseFieldDescriptor(cp.GetUtf8(rc.DescriptorIndex))
			if err != nil {
				return nil, fmt.Errorf("record component %s: %w", cp.GetUtf8(rc.NameIndex), err)
			}
			fmt.Fprintf(&sb, "component\t%s\t%s\n", cp.GetUtf8(rc.NameIndex), ft.String())
		}
	}

	return []byte(sb.String()), nil
}

func modifiersStr(first string, mods []string) string {
	if first != "" {
		mods = append([]string{first}, mods...)
	}
	if len(mods) == 0 {
		return "-"
	}
	return strings.Join(mods, ",")
}

func parametersStr(md *classfile.MethodDescriptor) string {
	if len(md.Parameters) == 0 {
		return "-"
	}
	parts := make([]string, len(md.Parameters))
	for i := range md.Parameters {
		parts[i] = md.Parameters[i].String()
	}
	return strings.Join(parts, ",")
}
