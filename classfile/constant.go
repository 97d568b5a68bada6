package classfile

import (
	"math"
	"unicode/utf8"
)

// Constant is one constant pool entry. The set of implementations is closed:
// one struct per JVM constant tag. Entries hold indices, never the resolved
// strings of the entries they reference.
type Constant interface {
	Tag() ConstantTag
	writeTo(w *writer)
}

type ConstantUtf8Info struct {
	Value string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }

type ConstantFloatInfo struct {
	Value float32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }

type ConstantDoubleInfo struct {
	Value float64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }

type ConstantFieldrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldrefInfo) Tag() ConstantTag { return ConstantFieldref }

type ConstantMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodrefInfo) Tag() ConstantTag { return ConstantMethodref }

type ConstantInterfaceMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodrefInfo) Tag() ConstantTag { return ConstantInterfaceMethodref }

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }

type ConstantDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamicInfo) Tag() ConstantTag { return ConstantDynamic }

type ConstantInvokeDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantInvokeDynamicInfo) Tag() ConstantTag { return ConstantInvokeDynamic }

type ConstantModuleInfo struct {
	NameIndex uint16
}

func (c *ConstantModuleInfo) Tag() ConstantTag { return ConstantModule }

type ConstantPackageInfo struct {
	NameIndex uint16
}

func (c *ConstantPackageInfo) Tag() ConstantTag { return ConstantPackage }

// refConstant is implemented by the three member reference kinds.
type refConstant interface {
	Constant
	refIndices() (classIndex, nameAndTypeIndex uint16)
}

func (c *ConstantFieldrefInfo) refIndices() (uint16, uint16) {
	return c.ClassIndex, c.NameAndTypeIndex
}

func (c *ConstantMethodrefInfo) refIndices() (uint16, uint16) {
	return c.ClassIndex, c.NameAndTypeIndex
}

func (c *ConstantInterfaceMethodrefInfo) refIndices() (uint16, uint16) {
	return c.ClassIndex, c.NameAndTypeIndex
}

// isWide reports whether a constant occupies two pool slots.
func isWide(c Constant) bool {
	if c == nil {
		return false
	}
	t := c.Tag()
	return t == ConstantLong || t == ConstantDouble
}

func readConstant(r *reader, cache *Utf8Cache) (Constant, error) {
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, r.err
	}

	var c Constant
	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		raw := r.readBytes(int(length))
		if r.err != nil {
			return nil, r.err
		}
		s, err := decodeModifiedUtf8(raw)
		if err != nil {
			return nil, err
		}
		return &ConstantUtf8Info{Value: cache.Intern(s)}, nil

	case ConstantInteger:
		c = &ConstantIntegerInfo{Value: r.readS4()}

	case ConstantFloat:
		c = &ConstantFloatInfo{Value: math.Float32frombits(r.readU4())}

	case ConstantLong:
		c = &ConstantLongInfo{Value: int64(r.readU8())}

	case ConstantDouble:
		c = &ConstantDoubleInfo{Value: math.Float64frombits(r.readU8())}

	case ConstantClass:
		c = &ConstantClassInfo{NameIndex: r.readU2()}

	case ConstantString:
		c = &ConstantStringInfo{StringIndex: r.readU2()}

	case ConstantFieldref:
		c = &ConstantFieldrefInfo{ClassIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantMethodref:
		c = &ConstantMethodrefInfo{ClassIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantInterfaceMethodref:
		c = &ConstantInterfaceMethodrefInfo{ClassIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantNameAndType:
		c = &ConstantNameAndTypeInfo{NameIndex: r.readU2(), DescriptorIndex: r.readU2()}

	case ConstantMethodHandle:
		c = &ConstantMethodHandleInfo{
			ReferenceKind:  MethodHandleKind(r.readU1()),
			ReferenceIndex: r.readU2(),
		}

	case ConstantMethodType:
		c = &ConstantMethodTypeInfo{DescriptorIndex: r.readU2()}

	case ConstantDynamic:
		c = &ConstantDynamicInfo{BootstrapMethodAttrIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantInvokeDynamic:
		c = &ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: r.readU2(), NameAndTypeIndex: r.readU2()}

	case ConstantModule:
		c = &ConstantModuleInfo{NameIndex: r.readU2()}

	case ConstantPackage:
		c = &ConstantPackageInfo{NameIndex: r.readU2()}

	default:
		return nil, formatErrorf("read constant", "unknown constant pool tag: %d", tag)
	}

	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

func (c *ConstantUtf8Info) writeTo(w *writer) {
	b := encodeModifiedUtf8(c.Value)
	if len(b) > math.MaxUint16 {
		if w.err == nil {
			w.err = formatErrorf("write constant", "utf8 constant too long: %d bytes", len(b))
		}
		return
	}
	w.writeU1(uint8(ConstantUtf8))
	w.writeU2(uint16(len(b)))
	w.writeBytes(b)
}

func (c *ConstantIntegerInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantInteger))
	w.writeU4(uint32(c.Value))
}

func (c *ConstantFloatInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantFloat))
	w.writeU4(math.Float32bits(c.Value))
}

func (c *ConstantLongInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantLong))
	w.writeU8(uint64(c.Value))
}

func (c *ConstantDoubleInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantDouble))
	w.writeU8(math.Float64bits(c.Value))
}

func (c *ConstantClassInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantClass))
	w.writeU2(c.NameIndex)
}

func (c *ConstantStringInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantString))
	w.writeU2(c.StringIndex)
}

func (c *ConstantFieldrefInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantFieldref))
	w.writeU2(c.ClassIndex)
	w.writeU2(c.NameAndTypeIndex)
}

func (c *ConstantMethodrefInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantMethodref))
	w.writeU2(c.ClassIndex)
	w.writeU2(c.NameAndTypeIndex)
}

func (c *ConstantInterfaceMethodrefInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantInterfaceMethodref))
	w.writeU2(c.ClassIndex)
	w.writeU2(c.NameAndTypeIndex)
}

func (c *ConstantNameAndTypeInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantNameAndType))
	w.writeU2(c.NameIndex)
	w.writeU2(c.DescriptorIndex)
}

func (c *ConstantMethodHandleInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantMethodHandle))
	w.writeU1(uint8(c.ReferenceKind))
	w.writeU2(c.ReferenceIndex)
}

func (c *ConstantMethodTypeInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantMethodType))
	w.writeU2(c.DescriptorIndex)
}

func (c *ConstantDynamicInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantDynamic))
	w.writeU2(c.BootstrapMethodAttrIndex)
	w.writeU2(c.NameAndTypeIndex)
}

func (c *ConstantInvokeDynamicInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantInvokeDynamic))
	w.writeU2(c.BootstrapMethodAttrIndex)
	w.writeU2(c.NameAndTypeIndex)
}

func (c *ConstantModuleInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantModule))
	w.writeU2(c.NameIndex)
}

func (c *ConstantPackageInfo) writeTo(w *writer) {
	w.writeU1(uint8(ConstantPackage))
	w.writeU2(c.NameIndex)
}

// CopyConstant returns an independent copy of c. Constants hold only
// scalars, so a copy of the struct is a deep copy.
func CopyConstant(c Constant) Constant {
	switch v := c.(type) {
	case nil:
		return nil
	case *ConstantUtf8Info:
		cp := *v
		return &cp
	case *ConstantIntegerInfo:
		cp := *v
		return &cp
	case *ConstantFloatInfo:
		cp := *v
		return &cp
	case *ConstantLongInfo:
		cp := *v
		return &cp
	case *ConstantDoubleInfo:
		cp := *v
		return &cp
	case *ConstantClassInfo:
		cp := *v
		return &cp
	case *ConstantStringInfo:
		cp := *v
		return &cp
	case *ConstantFieldrefInfo:
		cp := *v
		return &cp
	case *ConstantMethodrefInfo:
		cp := *v
		return &cp
	case *ConstantInterfaceMethodrefInfo:
		cp := *v
		return &cp
	case *ConstantNameAndTypeInfo:
		cp := *v
		return &cp
	case *ConstantMethodHandleInfo:
		cp := *v
		return &cp
	case *ConstantMethodTypeInfo:
		cp := *v
		return &cp
	case *ConstantDynamicInfo:
		cp := *v
		return &cp
	case *ConstantInvokeDynamicInfo:
		cp := *v
		return &cp
	case *ConstantModuleInfo:
		cp := *v
		return &cp
	case *ConstantPackageInfo:
		cp := *v
		return &cp
	}
	panic("classfile: unknown constant type")
}

// decodeModifiedUtf8 decodes the JVM's modified UTF-8. Unpaired surrogates
// cannot be represented as runes; their three raw bytes are kept in the
// string so encodeModifiedUtf8 reproduces them exactly. A raw NUL and
// overlong forms other than C0 80 are rejected, as they would not survive
// re-encoding.
func decodeModifiedUtf8(b []byte) (string, error) {
	out := make([]byte, 0, len(b))
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c == 0:
			return "", formatErrorf("read utf8", "malformed NUL byte at offset %d", i)
		case c&0x80 == 0:
			out = append(out, c)
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", formatErrorf("read utf8", "malformed 2-byte sequence at offset %d", i)
			}
			r := rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)
			if r != 0 && r < 0x80 {
				return "", formatErrorf("read utf8", "malformed overlong 2-byte sequence at offset %d", i)
			}
			out = utf8.AppendRune(out, r)
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", formatErrorf("read utf8", "malformed 3-byte sequence at offset %d", i)
			}
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			if r < 0x800 {
				return "", formatErrorf("read utf8", "malformed overlong 3-byte sequence at offset %d", i)
			}
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(b) && b[i+3] == 0xED &&
				b[i+4]&0xC0 == 0x80 && b[i+5]&0xC0 == 0x80 {
				low := rune(b[i+3]&0x0F)<<12 | rune(b[i+4]&0x3F)<<6 | rune(b[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					out = utf8.AppendRune(out, 0x10000+((r-0xD800)<<10)+(low-0xDC00))
					i += 6
					continue
				}
			}
			if r >= 0xD800 && r <= 0xDFFF {
				out = append(out, b[i:i+3]...)
			} else {
				out = utf8.AppendRune(out, r)
			}
			i += 3
		default:
			return "", formatErrorf("read utf8", "invalid byte 0x%02x at offset %d", c, i)
		}
	}
	return string(out), nil
}

func encodeModifiedUtf8(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			if i+2 < len(s) && s[i] == 0xED && s[i+1]&0xE0 == 0xA0 && s[i+2]&0xC0 == 0x80 {
				out = append(out, s[i:i+3]...)
				i += 3
				continue
			}
			r = utf8.RuneError
		}
		i += size
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			out = appendModifiedUtf8Unit(out, r)
		default:
			r -= 0x10000
			out = appendModifiedUtf8Unit(out, 0xD800+(r>>10))
			out = appendModifiedUtf8Unit(out, 0xDC00+(r&0x3FF))
		}
	}
	return out
}

func appendModifiedUtf8Unit(out []byte, r rune) []byte {
	return append(out, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
}
