package classfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

func ParseFile(path string, opts ...Option) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer f.Close()
	return Parse(f, opts...)
}

func ParseBytes(data []byte, opts ...Option) (*ClassFile, error) {
	return Parse(bytes.NewReader(data), opts...)
}

// Parse reads one class file. The constant pool is complete before any
// attribute is decoded. On error no partial class is returned.
func Parse(rd io.Reader, opts ...Option) (*ClassFile, error) {
	cfg := newConfig(opts)
	r := newReader(rd)

	magic := r.readU4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return nil, formatErrorf("parse", "invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}

	cf := &ClassFile{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read version: %w", r.err)
	}

	cp, err := readConstantPool(r, cfg)
	if err != nil {
		return nil, err
	}
	cf.ConstantPool = cp

	cf.AccessFlags = AccessFlags(r.readU2())
	cf.ThisClass = r.readU2()
	cf.SuperClass = r.readU2()
	cf.Interfaces = r.readU2s()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read class info: %w", r.err)
	}

	fieldsCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read fields count: %w", r.err)
	}
	cf.Fields = make([]FieldInfo, fieldsCount)
	for i := range cf.Fields {
		flags, name, desc, attrs, err := readMember(r, cp, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read field %d: %w", i, err)
		}
		cf.Fields[i] = FieldInfo{AccessFlags: flags, NameIndex: name, DescriptorIndex: desc, Attributes: attrs}
	}

	methodsCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read methods count: %w", r.err)
	}
	cf.Methods = make([]MethodInfo, methodsCount)
	for i := range cf.Methods {
		flags, name, desc, attrs, err := readMember(r, cp, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read method %d: %w", i, err)
		}
		cf.Methods[i] = MethodInfo{AccessFlags: flags, NameIndex: name, DescriptorIndex: desc, Attributes: attrs}
	}

	cf.Attributes, err = readAttributes(r, cp, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read class attributes: %w", err)
	}

	cfg.log.Debugf("parsed %s (version %d.%d, %d constants)", cf.ClassName(), cf.MajorVersion, cf.MinorVersion, cp.Len())
	return cf, nil
}

// readMember reads the field_info and method_info layout, which are
// identical.
func readMember(r *reader, cp *ConstantPool, cfg *config) (AccessFlags, uint16, uint16, []Attribute, error) {
	flags := AccessFlags(r.readU2())
	name := r.readU2()
	desc := r.readU2()
	if r.err != nil {
		return 0, 0, 0, nil, r.err
	}
	attrs, err := readAttributes(r, cp, cfg)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	return flags, name, desc, attrs, nil
}
