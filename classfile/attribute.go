package classfile

import (
	"encoding"
	"fmt"
	"io"
	"strings"
)

type AttributeKind uint8

const (
	AttrUnknown AttributeKind = iota
	AttrSourceFile
	AttrConstantValue
	AttrCode
	AttrExceptions
	AttrLineNumberTable
	AttrLocalVariableTable
	AttrInnerClasses
	AttrSynthetic
	AttrDeprecated
	AttrPMGClass
	AttrSignature
	AttrStackMapTable
	AttrRuntimeVisibleAnnotations
	AttrRuntimeInvisibleAnnotations
	AttrRuntimeVisibleParameterAnnotations
	AttrRuntimeInvisibleParameterAnnotations
	AttrRuntimeVisibleTypeAnnotations
	AttrRuntimeInvisibleTypeAnnotations
	AttrAnnotationDefault
	AttrLocalVariableTypeTable
	AttrEnclosingMethod
	AttrBootstrapMethods
	AttrMethodParameters
	AttrModule
	AttrModulePackages
	AttrModuleMainClass
	AttrNestHost
	AttrNestMembers
	AttrSourceDebugExtension
	AttrRecord
	AttrPermittedSubclasses
	AttrVendor
)

var attributeKindNames = [...]string{
	AttrUnknown:                              "Unknown",
	AttrSourceFile:                           "SourceFile",
	AttrConstantValue:                        "ConstantValue",
	AttrCode:                                 "Code",
	AttrExceptions:                           "Exceptions",
	AttrLineNumberTable:                      "LineNumberTable",
	AttrLocalVariableTable:                   "LocalVariableTable",
	AttrInnerClasses:                         "InnerClasses",
	AttrSynthetic:                            "Synthetic",
	AttrDeprecated:                           "Deprecated",
	AttrPMGClass:                             "PMGClass",
	AttrSignature:                            "Signature",
	AttrStackMapTable:                        "StackMapTable",
	AttrRuntimeVisibleAnnotations:            "RuntimeVisibleAnnotations",
	AttrRuntimeInvisibleAnnotations:          "RuntimeInvisibleAnnotations",
	AttrRuntimeVisibleParameterAnnotations:   "RuntimeVisibleParameterAnnotations",
	AttrRuntimeInvisibleParameterAnnotations: "RuntimeInvisibleParameterAnnotations",
	AttrRuntimeVisibleTypeAnnotations:        "RuntimeVisibleTypeAnnotations",
	AttrRuntimeInvisibleTypeAnnotations:      "RuntimeInvisibleTypeAnnotations",
	AttrAnnotationDefault:                    "AnnotationDefault",
	AttrLocalVariableTypeTable:               "LocalVariableTypeTable",
	AttrEnclosingMethod:                      "EnclosingMethod",
	AttrBootstrapMethods:                     "BootstrapMethods",
	AttrMethodParameters:                     "MethodParameters",
	AttrModule:                               "Module",
	AttrModulePackages:                       "ModulePackages",
	AttrModuleMainClass:                      "ModuleMainClass",
	AttrNestHost:                             "NestHost",
	AttrNestMembers:                          "NestMembers",
	AttrSourceDebugExtension:                 "SourceDebugExtension",
	AttrRecord:                               "Record",
	AttrPermittedSubclasses:                  "PermittedSubclasses",
	AttrVendor:                               "Vendor",
}

func (k AttributeKind) String() string {
	if int(k) < len(attributeKindNames) {
		return attributeKindNames[k]
	}
	return fmt.Sprintf("AttributeKind(%d)", uint8(k))
}

// attributeKinds maps the attribute names defined by the JVM specification to
// their kinds. Unknown and Vendor are not names that appear in class files.
var attributeKinds = func() map[string]AttributeKind {
	m := make(map[string]AttributeKind, len(attributeKindNames))
	for k, name := range attributeKindNames {
		kind := AttributeKind(k)
		if kind == AttrUnknown || kind == AttrVendor {
			continue
		}
		m[name] = kind
	}
	return m
}()

// AttributeInfo is the header every attribute carries: the pool index of its
// name, the payload length in bytes and the pool the indices refer to.
type AttributeInfo struct {
	NameIndex uint16
	Length    uint32
	Pool      *ConstantPool
}

func (a *AttributeInfo) Info() *AttributeInfo { return a }

func (a AttributeInfo) rebind(cp *ConstantPool) AttributeInfo {
	if cp != nil {
		a.Pool = cp
	}
	return a
}

// Attribute is one decoded attribute_info structure.
type Attribute interface {
	Info() *AttributeInfo
	Kind() AttributeKind
	// Copy returns a deep copy whose indices refer to cp. A nil cp keeps the
	// original pool.
	Copy(cp *ConstantPool) Attribute
	String() string

	writePayload(w *writer)
}

// AttributeReader decodes the payload of an application-defined attribute.
// The result is serialized back with MarshalBinary when the class is dumped.
type AttributeReader func(data []byte, cp *ConstantPool) (encoding.BinaryMarshaler, error)

// UnknownAttribute keeps the payload of an attribute nobody knows how to
// decode, so that it is written back unchanged.
type UnknownAttribute struct {
	AttributeInfo
	Bytes []byte
}

func (a *UnknownAttribute) Kind() AttributeKind { return AttrUnknown }

func (a *UnknownAttribute) Copy(cp *ConstantPool) Attribute {
	return &UnknownAttribute{
		AttributeInfo: a.rebind(cp),
		Bytes:         append([]byte(nil), a.Bytes...),
	}
}

func (a *UnknownAttribute) writePayload(w *writer) { w.writeBytes(a.Bytes) }

func (a *UnknownAttribute) String() string {
	const preview = 10
	var sb strings.Builder
	fmt.Fprintf(&sb, "Unknown attribute %s: ", a.Pool.GetUtf8(a.NameIndex))
	for i, b := range a.Bytes {
		if i == preview {
			sb.WriteString("...")
			break
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	fmt.Fprintf(&sb, " (%d bytes)", len(a.Bytes))
	return sb.String()
}

// VendorAttribute is an application-defined attribute decoded by a reader
// registered with WithAttributeReader.
type VendorAttribute struct {
	AttributeInfo
	Name    string
	Payload encoding.BinaryMarshaler

	read AttributeReader
}

func (a *VendorAttribute) Kind() AttributeKind { return AttrVendor }

// Copy re-decodes the marshaled payload so the copy shares no state with a.
// If that fails the payload value itself is shared.
func (a *VendorAttribute) Copy(cp *ConstantPool) Attribute {
	c := *a
	c.AttributeInfo = a.rebind(cp)
	if a.read == nil || a.Payload == nil {
		return &c
	}
	data, err := a.Payload.MarshalBinary()
	if err != nil {
		return &c
	}
	if p, err := a.read(data, c.Pool); err == nil {
		c.Payload = p
	}
	return &c
}

func (a *VendorAttribute) writePayload(w *writer) {
	if w.err != nil {
		return
	}
	data, err := a.Payload.MarshalBinary()
	if err != nil {
		w.err = fmt.Errorf("failed to marshal %s attribute: %w", a.Name, err)
		return
	}
	w.writeBytes(data)
}

func (a *VendorAttribute) String() string {
	if s, ok := a.Payload.(fmt.Stringer); ok {
		return a.Name + ": " + s.String()
	}
	return fmt.Sprintf("%s: (%d bytes)", a.Name, a.Length)
}

// ReadAttribute reads one attribute_info structure. Names are resolved
// through cp, which must be complete.
func ReadAttribute(rd io.Reader, cp *ConstantPool, opts ...Option) (Attribute, error) {
	return readAttribute(newReader(rd), cp, newConfig(opts))
}

func readAttribute(r *reader, cp *ConstantPool, cfg *config) (Attribute, error) {
	nameIndex := r.readU2()
	length := r.readU4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read attribute header: %w", truncated("read attribute", r.err))
	}
	name, err := cp.utf8(nameIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve attribute name: %w", err)
	}
	payload := r.readBytes(int(length))
	if r.err != nil {
		return nil, fmt.Errorf("failed to read %s attribute: %w", name, truncated("read "+name, r.err))
	}

	info := AttributeInfo{NameIndex: nameIndex, Length: length, Pool: cp}

	kind, known := attributeKinds[name]
	if !known {
		if name == "StackMap" {
			cfg.log.Warningf("obsolete StackMap attribute (%d bytes) kept as raw data", length)
			return &UnknownAttribute{AttributeInfo: info, Bytes: payload}, nil
		}
		if read := cfg.readers[name]; read != nil {
			cfg.log.Debugf("decoding %s attribute with registered reader", name)
			p, err := read(payload, cp)
			if err != nil {
				return nil, &FormatError{Op: "read " + name, Msg: "registered reader failed", Err: err}
			}
			return &VendorAttribute{AttributeInfo: info, Name: name, Payload: p, read: read}, nil
		}
		cfg.log.Debugf("unknown attribute %q (%d bytes) kept as raw data", name, length)
		return &UnknownAttribute{AttributeInfo: info, Bytes: payload}, nil
	}

	pr := newBytesReader(payload)
	attr, err := decodeAttribute(kind, pr, info, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s attribute: %w", name, err)
	}
	if pr.err != nil {
		return nil, fmt.Errorf("failed to decode %s attribute: %w", name, truncated("read "+name, pr.err))
	}
	if n := pr.remaining(); n != 0 {
		return nil, formatErrorf("read "+name, "%d bytes left over after decoding %d byte payload", n, length)
	}
	return attr, nil
}

// decodeAttribute reads a known payload. Short reads leave r.err set and are
// reported by the caller.
func decodeAttribute(kind AttributeKind, r *reader, info AttributeInfo, cfg *config) (Attribute, error) {
	switch kind {
	case AttrSourceFile:
		return &SourceFileAttribute{AttributeInfo: info, SourceFileIndex: r.readU2()}, nil
	case AttrConstantValue:
		return &ConstantValueAttribute{AttributeInfo: info, ConstantValueIndex: r.readU2()}, nil
	case AttrCode:
		return readCode(r, info, cfg)
	case AttrExceptions:
		return &ExceptionsAttribute{AttributeInfo: info, ExceptionIndexTable: r.readU2s()}, nil
	case AttrLineNumberTable:
		return readLineNumberTable(r, info), nil
	case AttrLocalVariableTable:
		return &LocalVariableTableAttribute{AttributeInfo: info, LocalVariableTable: readLocalVariables(r)}, nil
	case AttrLocalVariableTypeTable:
		return &LocalVariableTypeTableAttribute{AttributeInfo: info, LocalVariableTypeTable: readLocalVariables(r)}, nil
	case AttrInnerClasses:
		return readInnerClasses(r, info), nil
	case AttrSynthetic:
		return &SyntheticAttribute{AttributeInfo: info, Bytes: r.readBytes(int(info.Length))}, nil
	case AttrDeprecated:
		return &DeprecatedAttribute{AttributeInfo: info, Bytes: r.readBytes(int(info.Length))}, nil
	case AttrPMGClass:
		return &PMGClassAttribute{AttributeInfo: info, PMGIndex: r.readU2(), PMGClassIndex: r.readU2()}, nil
	case AttrSignature:
		return &SignatureAttribute{AttributeInfo: info, SignatureIndex: r.readU2()}, nil
	case AttrSourceDebugExtension:
		return &SourceDebugExtensionAttribute{AttributeInfo: info, DebugExtension: r.readBytes(int(info.Length))}, nil
	case AttrEnclosingMethod:
		return &EnclosingMethodAttribute{AttributeInfo: info, ClassIndex: r.readU2(), MethodIndex: r.readU2()}, nil
	case AttrStackMapTable:
		return readStackMapTable(r, info)
	case AttrRuntimeVisibleAnnotations, AttrRuntimeInvisibleAnnotations:
		return readAnnotations(r, info, kind == AttrRuntimeVisibleAnnotations)
	case AttrRuntimeVisibleParameterAnnotations, AttrRuntimeInvisibleParameterAnnotations:
		return readParameterAnnotations(r, info, kind == AttrRuntimeVisibleParameterAnnotations)
	case AttrRuntimeVisibleTypeAnnotations, AttrRuntimeInvisibleTypeAnnotations:
		return readTypeAnnotations(r, info, kind == AttrRuntimeVisibleTypeAnnotations)
	case AttrAnnotationDefault:
		v, err := readElementValue(r)
		if err != nil {
			return nil, err
		}
		return &AnnotationDefaultAttribute{AttributeInfo: info, DefaultValue: v}, nil
	case AttrBootstrapMethods:
		return readBootstrapMethods(r, info), nil
	case AttrMethodParameters:
		return readMethodParameters(r, info), nil
	case AttrModule:
		return readModule(r, info), nil
	case AttrModulePackages:
		return &ModulePackagesAttribute{AttributeInfo: info, PackageIndex: r.readU2s()}, nil
	case AttrModuleMainClass:
		return &ModuleMainClassAttribute{AttributeInfo: info, MainClassIndex: r.readU2()}, nil
	case AttrNestHost:
		return &NestHostAttribute{AttributeInfo: info, HostClassIndex: r.readU2()}, nil
	case AttrNestMembers:
		return &NestMembersAttribute{AttributeInfo: info, Classes: r.readU2s()}, nil
	case AttrRecord:
		return readRecord(r, info, cfg)
	case AttrPermittedSubclasses:
		return &PermittedSubclassesAttribute{AttributeInfo: info, Classes: r.readU2s()}, nil
	}
	return nil, formatErrorf("read attribute", "no decoder for %s", kind)
}

func readAttributes(r *reader, cp *ConstantPool, cfg *config) ([]Attribute, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read attributes count: %w", truncated("read attributes", r.err))
	}
	attrs := make([]Attribute, count)
	for i := range attrs {
		attr, err := readAttribute(r, cp, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read attribute %d: %w", i, err)
		}
		attrs[i] = attr
	}
	return attrs, nil
}

// DumpAttribute writes the 6-byte header followed by the payload. The stored
// Length is written as is; see SyncLength.
func DumpAttribute(w io.Writer, a Attribute) error {
	wr := newWriter(w)
	writeAttribute(wr, a)
	return wr.err
}

func writeAttribute(w *writer, a Attribute) {
	info := a.Info()
	w.writeU2(info.NameIndex)
	w.writeU4(info.Length)
	a.writePayload(w)
}

func writeAttributes(w *writer, attrs []Attribute) {
	w.writeU2(uint16(len(attrs)))
	for _, a := range attrs {
		writeAttribute(w, a)
	}
}

func attributesSize(attrs []Attribute) uint32 {
	n := uint32(2)
	for _, a := range attrs {
		n += 6 + a.Info().Length
	}
	return n
}

func copyAttributes(attrs []Attribute, cp *ConstantPool) []Attribute {
	if attrs == nil {
		return nil
	}
	out := make([]Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = a.Copy(cp)
	}
	return out
}

// PayloadLength encodes the payload of a and returns its size in bytes.
func PayloadLength(a Attribute) uint32 {
	w := newWriter(io.Discard)
	a.writePayload(w)
	return uint32(w.n)
}

// SyncLength stores the encoded payload size in the attribute header.
func SyncLength(a Attribute) {
	a.Info().Length = PayloadLength(a)
}

// AttributeName returns the name an attribute was stored under.
func AttributeName(a Attribute) string {
	if v, ok := a.(*VendorAttribute); ok {
		return v.Name
	}
	info := a.Info()
	return info.Pool.GetUtf8(info.NameIndex)
}

// FindAttribute returns the first attribute of type T.
func FindAttribute[T Attribute](attrs []Attribute) (T, bool) {
	for _, a := range attrs {
		if t, ok := a.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// FindAttributeByName returns the first attribute stored under name.
func FindAttributeByName(attrs []Attribute, name string) Attribute {
	for _, a := range attrs {
		if AttributeName(a) == name {
			return a
		}
	}
	return nil
}
