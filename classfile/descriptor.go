package classfile

import "strings"

// FieldType is a parsed field descriptor.
type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

func (ft *FieldType) String() string {
	var sb strings.Builder
	if ft.BaseType != "" {
		sb.WriteString(ft.BaseType)
	} else if ft.ClassName != "" {
		sb.WriteString(InternalToSourceName(ft.ClassName))
	}
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

func (ft *FieldType) IsArray() bool {
	return ft.ArrayDepth > 0
}

func (ft *FieldType) IsPrimitive() bool {
	return ft.BaseType != "" && ft.ArrayDepth == 0
}

func (ft *FieldType) IsReference() bool {
	return ft.ClassName != "" || ft.ArrayDepth > 0
}

// Size returns the number of local variable slots a value of this type
// occupies: 2 for long and double, 1 for everything else.
func (ft *FieldType) Size() int {
	if ft.ArrayDepth == 0 && (ft.BaseType == "long" || ft.BaseType == "double") {
		return 2
	}
	return 1
}

type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType
}

func (md *MethodDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, p := range md.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(")")
	if md.ReturnType != nil {
		sb.WriteString(" ")
		sb.WriteString(md.ReturnType.String())
	} else {
		sb.WriteString(" void")
	}
	return sb.String()
}

// ArgumentSlots returns the local variable slots taken by the parameters,
// not counting the receiver.
func (md *MethodDescriptor) ArgumentSlots() int {
	n := 0
	for i := range md.Parameters {
		n += md.Parameters[i].Size()
	}
	return n
}

func descriptorError(desc string, pos int, msg string) error {
	return formatErrorf("descriptor", "%s at offset %d of %q", msg, pos, desc)
}

func ParseFieldDescriptor(desc string) (*FieldType, error) {
	ft, consumed, err := parseFieldType(desc, 0)
	if err != nil {
		return nil, err
	}
	if consumed != len(desc) {
		return nil, descriptorError(desc, consumed, "trailing characters")
	}
	return ft, nil
}

func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, descriptorError(desc, 0, "expected '('")
	}

	md := &MethodDescriptor{}
	i := 1

	for i < len(desc) && desc[i] != ')' {
		ft, consumed, err := parseFieldType(desc, i)
		if err != nil {
			return nil, err
		}
		md.Parameters = append(md.Parameters, *ft)
		i += consumed
	}

	if i >= len(desc) {
		return nil, descriptorError(desc, i, "missing ')'")
	}
	i++

	if i >= len(desc) {
		return nil, descriptorError(desc, i, "missing return type")
	}
	if desc[i] == 'V' {
		i++
	} else {
		ft, consumed, err := parseFieldType(desc, i)
		if err != nil {
			return nil, err
		}
		md.ReturnType = ft
		i += consumed
	}
	if i != len(desc) {
		return nil, descriptorError(desc, i, "trailing characters")
	}
	return md, nil
}

// TypeSize returns the local variable slots of a field descriptor, or 0 for
// "V".
func TypeSize(desc string) (int, error) {
	if desc == "V" {
		return 0, nil
	}
	ft, err := ParseFieldDescriptor(desc)
	if err != nil {
		return 0, err
	}
	return ft.Size(), nil
}

func parseFieldType(desc string, start int) (*FieldType, int, error) {
	ft := &FieldType{}
	i := start

	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}

	if i >= len(desc) {
		return nil, 0, descriptorError(desc, i, "unexpected end")
	}

	c := desc[i]
	switch c {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		ft.BaseType = baseTypeNames[c]
		return ft, i - start + 1, nil
	case 'L':
		semicolon := strings.IndexByte(desc[i:], ';')
		if semicolon == -1 {
			return nil, 0, descriptorError(desc, i, "class type is missing ';'")
		}
		if semicolon == 1 {
			return nil, 0, descriptorError(desc, i, "empty class name")
		}
		ft.ClassName = desc[i+1 : i+semicolon]
		return ft, i - start + semicolon + 1, nil
	}
	return nil, 0, descriptorError(desc, i, "unexpected character "+string(rune(c)))
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
