package classfile

import (
	"strconv"
	"strings"
)

var baseTypeNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
	'V': "void",
}

// CompactClassName turns an internal name into a source name. With chopit,
// a class directly in java.lang loses its package.
func CompactClassName(name string, chopit bool) string {
	s := strings.ReplaceAll(name, "/", ".")
	if chopit {
		if rest, ok := strings.CutPrefix(s, "java.lang."); ok && !strings.Contains(rest, ".") {
			s = rest
		}
	}
	return s
}

func signatureError(sig string, pos int, msg string) error {
	return formatErrorf("signature", "%s at offset %d of %q", msg, pos, sig)
}

// ParseTypeSignature renders the type signature at the start of sig and
// reports how many bytes of sig it used.
func ParseTypeSignature(sig string, chopit bool) (rendered string, consumed int, err error) {
	return parseTypeSig(sig, 0, chopit)
}

// TypeSignatureToString renders a complete field type signature or
// descriptor, such as "[[I" or "Ljava/util/List<Ljava/lang/String;>;".
func TypeSignatureToString(sig string, chopit bool) (string, error) {
	s, next, err := parseTypeSig(sig, 0, chopit)
	if err != nil {
		return "", err
	}
	if next != len(sig) {
		return "", signatureError(sig, next, "trailing characters")
	}
	return s, nil
}

// parseTypeSig parses one TypeSig starting at pos and returns its rendering
// and the position just past it.
func parseTypeSig(sig string, pos int, chopit bool) (string, int, error) {
	if pos >= len(sig) {
		return "", pos, signatureError(sig, pos, "unexpected end")
	}
	c := sig[pos]
	if name, ok := baseTypeNames[c]; ok {
		return name, pos + 1, nil
	}
	switch c {
	case 'T':
		end := strings.IndexByte(sig[pos+1:], ';')
		if end < 0 {
			return "", pos, signatureError(sig, pos, "type variable is missing ';'")
		}
		if end == 0 {
			return "", pos, signatureError(sig, pos, "empty type variable name")
		}
		return sig[pos+1 : pos+1+end], pos + end + 2, nil
	case 'L':
		return parseClassTypeSig(sig, pos+1, chopit)
	case '[':
		s, next, err := parseTypeSig(sig, pos+1, chopit)
		if err != nil {
			return "", pos, err
		}
		return s + "[]", next, nil
	}
	return "", pos, signatureError(sig, pos, "unexpected character "+strconv.QuoteRune(rune(c)))
}

// parseClassTypeSig parses what follows the 'L' of a class type: a name,
// optional type arguments, and any number of '.'-separated inner classes,
// each with their own optional type arguments, up to the closing ';'.
func parseClassTypeSig(sig string, pos int, chopit bool) (string, int, error) {
	var sb strings.Builder
	for {
		start := pos
		for pos < len(sig) && sig[pos] != ';' && sig[pos] != '<' && sig[pos] != '.' {
			pos++
		}
		if pos >= len(sig) {
			return "", pos, signatureError(sig, start, "class type is missing ';'")
		}
		if pos == start {
			return "", pos, signatureError(sig, pos, "empty class name")
		}
		sb.WriteString(CompactClassName(sig[start:pos], chopit))

		if sig[pos] == '<' {
			args, next, err := parseTypeArgs(sig, pos, chopit)
			if err != nil {
				return "", pos, err
			}
			sb.WriteString(args)
			pos = next
			if pos >= len(sig) {
				return "", pos, signatureError(sig, pos, "class type is missing ';'")
			}
		}

		switch sig[pos] {
		case ';':
			return sb.String(), pos + 1, nil
		case '.':
			sb.WriteByte('.')
			pos++
		default:
			return "", pos, signatureError(sig, pos, "expected ';' or '.'")
		}
	}
}

// parseTypeArgs parses '<' TypeArg+ '>' starting at the '<'.
func parseTypeArgs(sig string, pos int, chopit bool) (string, int, error) {
	open := pos
	pos++
	var sb strings.Builder
	sb.WriteByte('<')
	for n := 0; ; n++ {
		if pos >= len(sig) {
			return "", pos, signatureError(sig, open, "unbalanced '<'")
		}
		if sig[pos] == '>' {
			if n == 0 {
				return "", pos, signatureError(sig, pos, "empty type argument list")
			}
			sb.WriteByte('>')
			return sb.String(), pos + 1, nil
		}
		if n > 0 {
			sb.WriteString(", ")
		}
		switch sig[pos] {
		case '*':
			sb.WriteByte('?')
			pos++
			continue
		case '+':
			sb.WriteString("? extends ")
			pos++
		case '-':
			sb.WriteString("? super ")
			pos++
		}
		s, next, err := parseTypeSig(sig, pos, chopit)
		if err != nil {
			if pos >= len(sig) {
				return "", pos, signatureError(sig, open, "unbalanced '<'")
			}
			return "", pos, err
		}
		sb.WriteString(s)
		pos = next
	}
}

// parseTypeParams parses '<' TypeParam+ '>' starting at the '<'. Each
// parameter renders as "T", "T extends A" or "T extends A & B".
func parseTypeParams(sig string, pos int, chopit bool) ([]string, int, error) {
	open := pos
	pos++
	var params []string
	for {
		if pos >= len(sig) {
			return nil, pos, signatureError(sig, open, "unbalanced '<'")
		}
		if sig[pos] == '>' {
			if len(params) == 0 {
				return nil, pos, signatureError(sig, pos, "empty type parameter list")
			}
			return params, pos + 1, nil
		}

		colon := strings.IndexByte(sig[pos:], ':')
		if colon <= 0 {
			return nil, pos, signatureError(sig, pos, "type parameter is missing ':'")
		}
		name := sig[pos : pos+colon]
		pos += colon + 1

		var bounds []string
		if pos < len(sig) && sig[pos] != ':' && sig[pos] != '>' {
			s, next, err := parseTypeSig(sig, pos, chopit)
			if err != nil {
				return nil, pos, err
			}
			bounds = append(bounds, s)
			pos = next
		}
		for pos < len(sig) && sig[pos] == ':' {
			s, next, err := parseTypeSig(sig, pos+1, chopit)
			if err != nil {
				return nil, pos, err
			}
			bounds = append(bounds, s)
			pos = next
		}

		if len(bounds) == 0 {
			params = append(params, name)
		} else {
			params = append(params, name+" extends "+strings.Join(bounds, " & "))
		}
	}
}

func typeParamsString(params []string) string {
	if len(params) == 0 {
		return ""
	}
	return "<" + strings.Join(params, ", ") + ">"
}

// MethodSignature is a decoded method descriptor or generic method signature.
type MethodSignature struct {
	TypeParameters []string
	Parameters     []string
	ReturnType     string
	Throws         []string

	// slots holds the local variable width of each parameter.
	slots []int
}

// ParseMethodSignature decodes
// ('<' TypeParam+ '>')? '(' TypeSig* ')' TypeSig ('^' TypeSig)*.
func ParseMethodSignature(sig string, chopit bool) (*MethodSignature, error) {
	m := &MethodSignature{}
	pos := 0
	var err error
	if pos < len(sig) && sig[pos] == '<' {
		m.TypeParameters, pos, err = parseTypeParams(sig, pos, chopit)
		if err != nil {
			return nil, err
		}
	}
	if pos >= len(sig) || sig[pos] != '(' {
		return nil, signatureError(sig, pos, "expected '('")
	}
	pos++
	for {
		if pos >= len(sig) {
			return nil, signatureError(sig, pos, "parameter list is missing ')'")
		}
		if sig[pos] == ')' {
			pos++
			break
		}
		start := pos
		var s string
		s, pos, err = parseTypeSig(sig, pos, chopit)
		if err != nil {
			return nil, err
		}
		m.Parameters = append(m.Parameters, s)
		m.slots = append(m.slots, parameterSlots(sig[start:pos]))
	}
	m.ReturnType, pos, err = parseTypeSig(sig, pos, chopit)
	if err != nil {
		return nil, err
	}
	for pos < len(sig) && sig[pos] == '^' {
		var s string
		s, pos, err = parseTypeSig(sig, pos+1, chopit)
		if err != nil {
			return nil, err
		}
		m.Throws = append(m.Throws, s)
	}
	if pos != len(sig) {
		return nil, signatureError(sig, pos, "trailing characters")
	}
	return m, nil
}

// parameterSlots sizes one parameter's type signature. Only base type
// descriptors can be wider than one slot; generic and type variable
// signatures are references.
func parameterSlots(typeSig string) int {
	if len(typeSig) != 1 {
		return 1
	}
	n, err := TypeSize(typeSig)
	if err != nil || n == 0 {
		return 1
	}
	return n
}

func MethodSignatureArgumentTypes(sig string, chopit bool) ([]string, error) {
	m, err := ParseMethodSignature(sig, chopit)
	if err != nil {
		return nil, err
	}
	return m.Parameters, nil
}

func MethodSignatureReturnType(sig string, chopit bool) (string, error) {
	m, err := ParseMethodSignature(sig, chopit)
	if err != nil {
		return "", err
	}
	return m.ReturnType, nil
}

// MethodSignatureToString renders a method declaration such as
// "public static <T> java.util.List<T> of(T[] arg0)". Parameter names come
// from vars when given; otherwise they are argN, numbered by local variable
// slot, starting at 1 unless access contains "static".
func MethodSignatureToString(sig, name, access string, chopit bool, vars *LocalVariableTableAttribute) (string, error) {
	m, err := ParseMethodSignature(sig, chopit)
	if err != nil {
		return "", err
	}

	slot := 1
	if strings.Contains(access, "static") {
		slot = 0
	}
	params := make([]string, len(m.Parameters))
	for i, p := range m.Parameters {
		switch {
		case vars == nil:
			p += " arg" + strconv.Itoa(slot)
		default:
			if n, ok := vars.VariableName(uint16(slot), 0); ok {
				p += " " + n
			}
		}
		params[i] = p
		slot += m.slots[i]
	}

	var sb strings.Builder
	if access != "" {
		sb.WriteString(access)
		sb.WriteByte(' ')
	}
	if tp := typeParamsString(m.TypeParameters); tp != "" {
		sb.WriteString(tp)
		sb.WriteByte(' ')
	}
	sb.WriteString(m.ReturnType)
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(params, ", "))
	sb.WriteByte(')')
	if len(m.Throws) > 0 {
		sb.WriteString(" throws ")
		sb.WriteString(strings.Join(m.Throws, ", "))
	}
	return sb.String(), nil
}

// ClassSignature is a decoded Signature attribute of a class.
type ClassSignature struct {
	TypeParameters []string
	Superclass     string
	Interfaces     []string
}

// ParseClassSignature decodes ('<' TypeParam+ '>')? TypeSig TypeSig*.
func ParseClassSignature(sig string, chopit bool) (*ClassSignature, error) {
	cs := &ClassSignature{}
	pos := 0
	var err error
	if pos < len(sig) && sig[pos] == '<' {
		cs.TypeParameters, pos, err = parseTypeParams(sig, pos, chopit)
		if err != nil {
			return nil, err
		}
	}
	cs.Superclass, pos, err = parseTypeSig(sig, pos, chopit)
	if err != nil {
		return nil, err
	}
	for pos < len(sig) {
		var s string
		s, pos, err = parseTypeSig(sig, pos, chopit)
		if err != nil {
			return nil, err
		}
		cs.Interfaces = append(cs.Interfaces, s)
	}
	return cs, nil
}

func (cs *ClassSignature) String() string {
	var sb strings.Builder
	if tp := typeParamsString(cs.TypeParameters); tp != "" {
		sb.WriteString(tp)
		sb.WriteByte(' ')
	}
	sb.WriteString("extends ")
	sb.WriteString(cs.Superclass)
	if len(cs.Interfaces) > 0 {
		sb.WriteString(" implements ")
		sb.WriteString(strings.Join(cs.Interfaces, ", "))
	}
	return sb.String()
}
