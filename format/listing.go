package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classkit/classfile"
)

type ListingOption func(*ListingEncoder)

// WithCode includes disassembled method bodies.
func WithCode(code bool) ListingOption {
	return func(e *ListingEncoder) { e.code = code }
}

// WithChop drops the package of java.lang classes in declarations.
func WithChop(chop bool) ListingOption {
	return func(e *ListingEncoder) { e.chop = chop }
}

// WithConstantPool includes the constant pool listing.
func WithConstantPool(pool bool) ListingOption {
	return func(e *ListingEncoder) { e.pool = pool }
}

// WithVerboseCode appends constant pool indices to disassembled operands.
func WithVerboseCode(verbose bool) ListingOption {
	return func(e *ListingEncoder) { e.verbose = verbose }
}

// ListingEncoder renders a class the way javap -v lays it out: the
// declaration, version, constant pool, members with their attributes and
// finally the class attributes.
type ListingEncoder struct {
	w       io.Writer
	class   *classfile.ClassFile
	code    bool
	chop    bool
	pool    bool
	verbose bool
}

func NewListingEncoder(w io.Writer, opts ...ListingOption) *ListingEncoder {
	e := &ListingEncoder{w: w, pool: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *ListingEncoder) Encode(class *classfile.ClassFile) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *ListingEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	c := e.class
	cp := c.ConstantPool

	decl, err := e.declaration()
	if err != nil {
		return nil, err
	}
	sb.WriteString(decl)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  minor version: %d\n", c.MinorVersion)
	fmt.Fprintf(&sb, "  major version: %d\n", c.MajorVersion)
	fmt.Fprintf(&sb, "  flags: (0x%04x)\n", uint16(c.AccessFlags))

	if e.pool {
		sb.WriteString("Constant pool:\n")
		sb.WriteString(cp.String())
	}

	sb.WriteString("{\n")
	for i := range c.Fields {
		f := &c.Fields[i]
		d, err := f.Declaration(cp, e.chop)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name(cp), err)
		}
		fmt.Fprintf(&sb, "  %s;\n", d)
		e.writeMemberAttributes(&sb, f.Attributes)
		sb.WriteString("\n")
	}
	for i := range c.Methods {
		m := &c.Methods[i]
		d, err := m.Declaration(cp, e.chop)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", m.Name(cp), err)
		}
		fmt.Fprintf(&sb, "  %s;\n", d)
		e.writeMemberAttributes(&sb, m.Attributes)
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")

	for _, a := range c.Attributes {
		sb.WriteString(a.String())
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

func (e *ListingEncoder) declaration() (string, error) {
	c := e.class
	var parts []string
	if mods := c.AccessFlags.ClassModifiers(); mods != "" {
		parts = append(parts, mods)
	}
	switch kind := classKind(c); kind {
	case "annotation":
		parts = append(parts, "@interface")
	default:
		parts = append(parts, kind)
	}
	parts = append(parts, classfile.CompactClassName(c.ClassName(), false))

	sig, err := c.Signature(e.chop)
	if err != nil {
		return "", err
	}
	switch {
	case sig != nil:
		parts = append(parts, sig.String())
	case c.SuperClass != 0:
		parts = append(parts, "extends", classfile.CompactClassName(c.SuperClassName(), e.chop))
		if len(c.Interfaces) > 0 {
			names := c.InterfaceNames()
			for i := range names {
				names[i] = classfile.CompactClassName(names[i], e.chop)
			}
			parts = append(parts, "implements", strings.Join(names, ", "))
		}
	}
	return strings.Join(parts, " "), nil
}

// writeMemberAttributes lists the attributes of a field or method. Code is
// shown only when requested; Signature and Exceptions are already part of
// the declaration.
func (e *ListingEncoder) writeMemberAttributes(sb *strings.Builder, attrs []classfile.Attribute) {
	for _, a := range attrs {
		switch a := a.(type) {
		case *classfile.SignatureAttribute, *classfile.ExceptionsAttribute:
			continue
		case *classfile.CodeAttribute:
			if !e.code {
				continue
			}
			writeIndented(sb, "    ", a.Format(e.verbose))
		case *classfile.ConstantValueAttribute:
			fmt.Fprintf(sb, "    ConstantValue: %s\n", a.String())
		default:
			writeIndented(sb, "    ", a.String())
		}
	}
}

func writeIndented(sb *strings.Builder, indent, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}
