package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture assembles big-endian byte sequences for hand-written inputs.
type fixture struct {
	buf bytes.Buffer
}

func (f *fixture) u1(vs ...uint8) *fixture {
	f.buf.Write(vs)
	return f
}

func (f *fixture) u2(vs ...uint16) *fixture {
	for _, v := range vs {
		_ = binary.Write(&f.buf, binary.BigEndian, v)
	}
	return f
}

func (f *fixture) u4(vs ...uint32) *fixture {
	for _, v := range vs {
		_ = binary.Write(&f.buf, binary.BigEndian, v)
	}
	return f
}

func (f *fixture) utf8(s string) *fixture {
	f.u1(uint8(ConstantUtf8)).u2(uint16(len(s)))
	f.buf.WriteString(s)
	return f
}

func (f *fixture) bytes() []byte {
	return f.buf.Bytes()
}

// Constant pool indices of the sample class.
const (
	idxHelloName      = 1
	idxHelloClass     = 2
	idxObjectName     = 3
	idxObjectClass    = 4
	idxInit           = 5
	idxVoidDesc       = 6
	idxInitNAT        = 7
	idxObjectInit     = 8
	idxCode           = 9
	idxSourceFile     = 10
	idxSourceFileName = 11
	idxLong42         = 12
	idxLineNumbers    = 14
	idxStackMapTable  = 15
	idxHelloString    = 16
	idxFieldName      = 17
	idxLongDesc       = 18
	idxConstantValue  = 19
	idxSignature      = 20
	idxListSignature  = 21
	idxLocalVariables = 22
	idxThis           = 23
	idxHelloDesc      = 24
	idxCustom         = 25
	idxStackMap       = 26
)

func samplePool() *ConstantPool {
	return NewConstantPool(
		&ConstantUtf8Info{Value: "Hello"},
		&ConstantClassInfo{NameIndex: idxHelloName},
		&ConstantUtf8Info{Value: "java/lang/Object"},
		&ConstantClassInfo{NameIndex: idxObjectName},
		&ConstantUtf8Info{Value: "<init>"},
		&ConstantUtf8Info{Value: "()V"},
		&ConstantNameAndTypeInfo{NameIndex: idxInit, DescriptorIndex: idxVoidDesc},
		&ConstantMethodrefInfo{ClassIndex: idxObjectClass, NameAndTypeIndex: idxInitNAT},
		&ConstantUtf8Info{Value: "Code"},
		&ConstantUtf8Info{Value: "SourceFile"},
		&ConstantUtf8Info{Value: "Hello.java"},
		&ConstantLongInfo{Value: 42},
		&ConstantUtf8Info{Value: "LineNumberTable"},
		&ConstantUtf8Info{Value: "StackMapTable"},
		&ConstantStringInfo{StringIndex: idxHelloName},
		&ConstantUtf8Info{Value: "x"},
		&ConstantUtf8Info{Value: "J"},
		&ConstantUtf8Info{Value: "ConstantValue"},
		&ConstantUtf8Info{Value: "Signature"},
		&ConstantUtf8Info{Value: "Ljava/util/List<Ljava/lang/String;>;"},
		&ConstantUtf8Info{Value: "LocalVariableTable"},
		&ConstantUtf8Info{Value: "this"},
		&ConstantUtf8Info{Value: "LHello;"},
		&ConstantUtf8Info{Value: "Custom"},
		&ConstantUtf8Info{Value: "StackMap"},
	)
}

func info(cp *ConstantPool, nameIndex uint16) AttributeInfo {
	return AttributeInfo{NameIndex: nameIndex, Pool: cp}
}

func synced[T Attribute](a T) T {
	SyncLength(a)
	return a
}

// sampleClass builds
//
//	public class Hello {
//	    private static final long x = 42L;
//	    public Hello() { super(); }
//	}
//
// plus a Signature on the field and an unrecognized class attribute.
func sampleClass() *ClassFile {
	cp := samplePool()

	lines := synced(&LineNumberTableAttribute{
		AttributeInfo:   info(cp, idxLineNumbers),
		LineNumberTable: []LineNumberEntry{{StartPC: 0, LineNumber: 1}},
	})
	vars := synced(&LocalVariableTableAttribute{
		AttributeInfo: info(cp, idxLocalVariables),
		LocalVariableTable: []LocalVariable{
			{StartPC: 0, Length: 5, NameIndex: idxThis, DescriptorIndex: idxHelloDesc, Index: 0},
		},
	})
	code := &CodeAttribute{
		AttributeInfo: info(cp, idxCode),
		MaxStack:      1,
		MaxLocals:     1,
	}
	code.SetCode([]byte{0x2a, 0xb7, 0x00, idxObjectInit, 0xb1})
	code.SetAttributes([]Attribute{lines, vars})

	return &ClassFile{
		MinorVersion: 0,
		MajorVersion: 61,
		ConstantPool: cp,
		AccessFlags:  AccPublic | AccSuper,
		ThisClass:    idxHelloClass,
		SuperClass:   idxObjectClass,
		Fields: []FieldInfo{{
			AccessFlags:     AccPrivate | AccStatic | AccFinal,
			NameIndex:       idxFieldName,
			DescriptorIndex: idxLongDesc,
			Attributes: []Attribute{
				synced(&ConstantValueAttribute{AttributeInfo: info(cp, idxConstantValue), ConstantValueIndex: idxLong42}),
				synced(&SignatureAttribute{AttributeInfo: info(cp, idxSignature), SignatureIndex: idxListSignature}),
			},
		}},
		Methods: []MethodInfo{{
			AccessFlags:     AccPublic,
			NameIndex:       idxInit,
			DescriptorIndex: idxVoidDesc,
			Attributes:      []Attribute{code},
		}},
		Attributes: []Attribute{
			synced(&SourceFileAttribute{AttributeInfo: info(cp, idxSourceFile), SourceFileIndex: idxSourceFileName}),
			synced(&UnknownAttribute{AttributeInfo: info(cp, idxCustom), Bytes: []byte{1, 2, 3}}),
		},
	}
}

func sampleBytes(t *testing.T) []byte {
	t.Helper()
	data, err := sampleClass().Bytes()
	require.NoError(t, err)
	return data
}

// dumpAttribute encodes a with its header.
func dumpAttribute(t *testing.T, a Attribute) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, DumpAttribute(&buf, a))
	return buf.Bytes()
}

// recordingLogger captures the messages this package logs.
type recordingLogger struct {
	warnings []string
	debug    []string
}

func (l *recordingLogger) Warningf(format string, values ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, values...))
}

func (l *recordingLogger) Debugf(format string, values ...any) {
	l.debug = append(l.debug, fmt.Sprintf(format, values...))
}

func withRecorder(l *recordingLogger) Option {
	return func(c *config) {
		c.log = l
	}
}
