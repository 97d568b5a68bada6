package classfile

import (
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"
)

// ConstantPool is the 1-indexed constant table of a class file. Slot 0 is
// always empty, and so is the slot following every Long or Double. The pool
// is shared by reference among all attributes of one class.
type ConstantPool struct {
	constants []Constant
}

// NewConstantPool builds a pool whose first entry gets index 1. Long and
// Double entries get their empty companion slot automatically.
func NewConstantPool(constants ...Constant) *ConstantPool {
	cp := &ConstantPool{constants: []Constant{nil}}
	for _, c := range constants {
		cp.constants = append(cp.constants, c)
		if isWide(c) {
			cp.constants = append(cp.constants, nil)
		}
	}
	return cp
}

// ReadConstantPool reads constant_pool_count followed by the entries.
func ReadConstantPool(rd io.Reader, opts ...Option) (*ConstantPool, error) {
	return readConstantPool(newReader(rd), newConfig(opts))
}

func readConstantPool(r *reader, cfg *config) (*ConstantPool, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read constant pool count: %w", r.err)
	}
	if count == 0 {
		return nil, formatErrorf("read constant pool", "constant pool count is 0")
	}

	cp := &ConstantPool{constants: make([]Constant, count)}
	for i := uint16(1); i < count; i++ {
		entry, err := readConstant(r, cfg.cache)
		if err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", i, err)
		}
		cp.constants[i] = entry
		if isWide(entry) {
			i++
			if i >= count {
				return nil, formatErrorf("read constant pool", "%s at index %d has no room for its second slot", entry.Tag(), i-1)
			}
		}
	}
	return cp, nil
}

// Len returns constant_pool_count: the number of slots including slot 0.
func (cp *ConstantPool) Len() int {
	return len(cp.constants)
}

func (cp *ConstantPool) at(index uint16) Constant {
	if cp == nil || index == 0 || int(index) >= len(cp.constants) {
		return nil
	}
	return cp.constants[index]
}

// Get returns the constant at index. Index 0, indices past the end and the
// empty second slot of a Long or Double are FormatErrors.
func (cp *ConstantPool) Get(index uint16) (Constant, error) {
	if cp == nil || int(index) >= len(cp.constants) {
		return nil, formatErrorf("constant pool", "index %d out of range", index)
	}
	if index == 0 {
		return nil, formatErrorf("constant pool", "index 0 is not a valid constant")
	}
	c := cp.constants[index]
	if c == nil {
		return nil, formatErrorf("constant pool", "index %d is an empty slot", index)
	}
	return c, nil
}

// GetTyped is Get plus a check that the entry carries the expected tag.
func (cp *ConstantPool) GetTyped(index uint16, tag ConstantTag) (Constant, error) {
	c, err := cp.Get(index)
	if err != nil {
		return nil, err
	}
	if c.Tag() != tag {
		return nil, formatErrorf("constant pool", "index %d: expected %s, found %s", index, tag, c.Tag())
	}
	return c, nil
}

// Set replaces the entry at index. It is meant for write-back tooling; the
// caller keeps the Long/Double slot layout consistent.
func (cp *ConstantPool) Set(index uint16, c Constant) error {
	if index == 0 || int(index) >= len(cp.constants) {
		return formatErrorf("constant pool", "index %d out of range", index)
	}
	if isWide(c) && int(index)+1 >= len(cp.constants) {
		return formatErrorf("constant pool", "%s at index %d has no room for its second slot", c.Tag(), index)
	}
	cp.constants[index] = c
	if isWide(c) {
		cp.constants[index+1] = nil
	}
	return nil
}

// Add appends c and returns its index.
func (cp *ConstantPool) Add(c Constant) (uint16, error) {
	need := 1
	if isWide(c) {
		need = 2
	}
	if len(cp.constants)+need > math.MaxUint16 {
		return 0, formatErrorf("constant pool", "pool is full")
	}
	index := uint16(len(cp.constants))
	cp.constants = append(cp.constants, c)
	if need == 2 {
		cp.constants = append(cp.constants, nil)
	}
	return index, nil
}

// All yields every non-empty slot in index order.
func (cp *ConstantPool) All() iter.Seq2[uint16, Constant] {
	return func(yield func(uint16, Constant) bool) {
		for i := 1; i < len(cp.constants); i++ {
			c := cp.constants[i]
			if c == nil {
				continue
			}
			if !yield(uint16(i), c) {
				return
			}
			if isWide(c) {
				i++
			}
		}
	}
}

// Copy returns a deep copy of the pool.
func (cp *ConstantPool) Copy() *ConstantPool {
	if cp == nil {
		return nil
	}
	out := &ConstantPool{constants: make([]Constant, len(cp.constants))}
	for i, c := range cp.constants {
		out.constants[i] = CopyConstant(c)
	}
	return out
}

// Dump writes constant_pool_count followed by every entry.
func (cp *ConstantPool) Dump(w io.Writer) error {
	wr := newWriter(w)
	cp.writeTo(wr)
	return wr.err
}

func (cp *ConstantPool) writeTo(w *writer) {
	w.writeU2(uint16(len(cp.constants)))
	for i := 1; i < len(cp.constants); i++ {
		c := cp.constants[i]
		if c == nil {
			if w.err == nil {
				w.err = formatErrorf("write constant pool", "index %d is an empty slot", i)
			}
			return
		}
		c.writeTo(w)
		if isWide(c) {
			i++
		}
	}
}

// ConstantToString resolves the entry at index, which must carry tag, into
// its display form.
func (cp *ConstantPool) ConstantToString(index uint16, tag ConstantTag) (string, error) {
	c, err := cp.GetTyped(index, tag)
	if err != nil {
		return "", err
	}
	return cp.ResolveToString(c)
}

func (cp *ConstantPool) utf8(index uint16) (string, error) {
	c, err := cp.GetTyped(index, ConstantUtf8)
	if err != nil {
		return "", err
	}
	return c.(*ConstantUtf8Info).Value, nil
}

// ConstantString returns the raw string an entry names: the Utf8 behind a
// Class, String, MethodType, Module or Package entry, or the name of a
// NameAndType.
func (cp *ConstantPool) ConstantString(index uint16, tag ConstantTag) (string, error) {
	c, err := cp.GetTyped(index, tag)
	if err != nil {
		return "", err
	}
	switch v := c.(type) {
	case *ConstantUtf8Info:
		return v.Value, nil
	case *ConstantClassInfo:
		return cp.utf8(v.NameIndex)
	case *ConstantStringInfo:
		return cp.utf8(v.StringIndex)
	case *ConstantNameAndTypeInfo:
		return cp.utf8(v.NameIndex)
	case *ConstantMethodTypeInfo:
		return cp.utf8(v.DescriptorIndex)
	case *ConstantModuleInfo:
		return cp.utf8(v.NameIndex)
	case *ConstantPackageInfo:
		return cp.utf8(v.NameIndex)
	}
	return "", formatErrorf("constant pool", "%s at index %d does not name a string", tag, index)
}

var literalEscaper = strings.NewReplacer(
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\b", `\b`,
	`"`, `\"`,
)

// ResolveToString renders c the way a disassembler shows it, following
// index references through the pool.
func (cp *ConstantPool) ResolveToString(c Constant) (string, error) {
	switch v := c.(type) {
	case *ConstantUtf8Info:
		return v.Value, nil

	case *ConstantClassInfo:
		name, err := cp.utf8(v.NameIndex)
		if err != nil {
			return "", err
		}
		return CompactClassName(name, false), nil

	case *ConstantStringInfo:
		s, err := cp.utf8(v.StringIndex)
		if err != nil {
			return "", err
		}
		return `"` + literalEscaper.Replace(s) + `"`, nil

	case *ConstantIntegerInfo:
		return strconv.FormatInt(int64(v.Value), 10), nil

	case *ConstantLongInfo:
		return strconv.FormatInt(v.Value, 10), nil

	case *ConstantFloatInfo:
		return javaFloatString(float64(v.Value), 32), nil

	case *ConstantDoubleInfo:
		return javaFloatString(v.Value, 64), nil

	case *ConstantNameAndTypeInfo:
		name, err := cp.utf8(v.NameIndex)
		if err != nil {
			return "", err
		}
		desc, err := cp.utf8(v.DescriptorIndex)
		if err != nil {
			return "", err
		}
		return name + " " + desc, nil

	case refConstant:
		classIndex, natIndex := v.refIndices()
		class, err := cp.ConstantToString(classIndex, ConstantClass)
		if err != nil {
			return "", err
		}
		nat, err := cp.ConstantToString(natIndex, ConstantNameAndType)
		if err != nil {
			return "", err
		}
		return class + "." + nat, nil

	case *ConstantMethodHandleInfo:
		c, err := cp.Get(v.ReferenceIndex)
		if err != nil {
			return "", err
		}
		ref, ok := c.(refConstant)
		if !ok {
			return "", formatErrorf("resolve", "method handle references %s at index %d, expected a field or method reference", c.Tag(), v.ReferenceIndex)
		}
		s, err := cp.ResolveToString(ref)
		if err != nil {
			return "", err
		}
		return v.ReferenceKind.String() + " " + s, nil

	case *ConstantMethodTypeInfo:
		return cp.utf8(v.DescriptorIndex)

	case *ConstantDynamicInfo:
		nat, err := cp.ConstantToString(v.NameAndTypeIndex, ConstantNameAndType)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(int(v.BootstrapMethodAttrIndex)) + ":" + nat, nil

	case *ConstantInvokeDynamicInfo:
		nat, err := cp.ConstantToString(v.NameAndTypeIndex, ConstantNameAndType)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(int(v.BootstrapMethodAttrIndex)) + ":" + nat, nil

	case *ConstantModuleInfo:
		return cp.utf8(v.NameIndex)

	case *ConstantPackageInfo:
		name, err := cp.utf8(v.NameIndex)
		if err != nil {
			return "", err
		}
		return CompactClassName(name, false), nil
	}
	return "", formatErrorf("constant pool", "cannot render constant %T", c)
}

// javaFloatString formats like Java's Float.toString and Double.toString:
// plain decimals in [1e-3, 1e7), computerized scientific notation otherwise,
// and always at least one fractional digit.
func javaFloatString(v float64, bitSize int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	abs := math.Abs(v)
	if abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(v, 'f', -1, bitSize)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(v, 'e', -1, bitSize)
	mantissa, exp, _ := strings.Cut(s, "e")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	e, _ := strconv.Atoi(exp)
	return mantissa + "E" + strconv.Itoa(e)
}

func (cp *ConstantPool) String() string {
	var sb strings.Builder
	for i, c := range cp.All() {
		s, err := cp.ResolveToString(c)
		if err != nil {
			s = "<" + err.Error() + ">"
		}
		fmt.Fprintf(&sb, "%5d: %-27s %s\n", i, c.Tag(), s)
	}
	return sb.String()
}

// The lookups below are lenient: a missing or mistyped entry yields the zero
// value. They serve read-only accessors on already-validated classes.

func (cp *ConstantPool) GetUtf8(index uint16) string {
	if entry, ok := cp.at(index).(*ConstantUtf8Info); ok {
		return entry.Value
	}
	return ""
}

func (cp *ConstantPool) GetClassName(index uint16) string {
	if entry, ok := cp.at(index).(*ConstantClassInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (cp *ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if entry, ok := cp.at(index).(*ConstantNameAndTypeInfo); ok {
		return cp.GetUtf8(entry.NameIndex), cp.GetUtf8(entry.DescriptorIndex)
	}
	return "", ""
}

func (cp *ConstantPool) GetString(index uint16) string {
	if entry, ok := cp.at(index).(*ConstantStringInfo); ok {
		return cp.GetUtf8(entry.StringIndex)
	}
	return ""
}

func (cp *ConstantPool) GetModuleName(index uint16) string {
	if entry, ok := cp.at(index).(*ConstantModuleInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (cp *ConstantPool) GetPackageName(index uint16) string {
	if entry, ok := cp.at(index).(*ConstantPackageInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (cp *ConstantPool) GetInteger(index uint16) (int32, bool) {
	if entry, ok := cp.at(index).(*ConstantIntegerInfo); ok {
		return entry.Value, true
	}
	return 0, false
}

func (cp *ConstantPool) GetLong(index uint16) (int64, bool) {
	if entry, ok := cp.at(index).(*ConstantLongInfo); ok {
		return entry.Value, true
	}
	return 0, false
}

func (cp *ConstantPool) GetFloat(index uint16) (float32, bool) {
	if entry, ok := cp.at(index).(*ConstantFloatInfo); ok {
		return entry.Value, true
	}
	return 0, false
}

func (cp *ConstantPool) GetDouble(index uint16) (float64, bool) {
	if entry, ok := cp.at(index).(*ConstantDoubleInfo); ok {
		return entry.Value, true
	}
	return 0, false
}

// GetMemberRef resolves a Fieldref, Methodref or InterfaceMethodref.
func (cp *ConstantPool) GetMemberRef(index uint16) (className, name, descriptor string) {
	if entry, ok := cp.at(index).(refConstant); ok {
		classIndex, natIndex := entry.refIndices()
		className = cp.GetClassName(classIndex)
		name, descriptor = cp.GetNameAndType(natIndex)
	}
	return
}

func (cp *ConstantPool) GetFieldref(index uint16) *ConstantFieldrefInfo {
	entry, _ := cp.at(index).(*ConstantFieldrefInfo)
	return entry
}

func (cp *ConstantPool) GetMethodref(index uint16) *ConstantMethodrefInfo {
	entry, _ := cp.at(index).(*ConstantMethodrefInfo)
	return entry
}

func (cp *ConstantPool) GetMethodHandle(index uint16) *ConstantMethodHandleInfo {
	entry, _ := cp.at(index).(*ConstantMethodHandleInfo)
	return entry
}

func (cp *ConstantPool) GetMethodType(index uint16) string {
	if entry, ok := cp.at(index).(*ConstantMethodTypeInfo); ok {
		return cp.GetUtf8(entry.DescriptorIndex)
	}
	return ""
}
