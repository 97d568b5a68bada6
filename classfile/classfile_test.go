package classfile

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/commonlog"
)

func TestParseClassFile(t *testing.T) {
	cf, err := ParseBytes(sampleBytes(t))
	require.NoError(t, err)

	t.Run("header", func(t *testing.T) {
		assert.Equal(t, uint16(61), cf.MajorVersion)
		assert.Equal(t, uint16(0), cf.MinorVersion)
		assert.Equal(t, "Hello", cf.ClassName())
		assert.Equal(t, "java/lang/Object", cf.SuperClassName())
		assert.Empty(t, cf.InterfaceNames())
		assert.True(t, cf.IsClass())
		assert.False(t, cf.IsInterface())
		assert.True(t, cf.AccessFlags.IsPublic())
	})

	t.Run("field", func(t *testing.T) {
		f := cf.GetField("x")
		require.NotNil(t, f)
		assert.True(t, f.IsStatic())
		assert.True(t, f.IsFinal())

		cv := f.ConstantValue()
		require.NotNil(t, cv)
		assert.Equal(t, "42", cv.String())

		ft, err := f.ParsedDescriptor(cf.ConstantPool)
		require.NoError(t, err)
		assert.Equal(t, "long", ft.String())

		decl, err := f.Declaration(cf.ConstantPool, true)
		require.NoError(t, err)
		assert.Equal(t, "private static final java.util.List<String> x", decl)
	})

	t.Run("method", func(t *testing.T) {
		m := cf.GetMethod("<init>", "()V")
		require.NotNil(t, m)
		assert.True(t, m.IsConstructor(cf.ConstantPool))
		assert.Nil(t, cf.GetMethod("<init>", "(I)V"))
		assert.Len(t, cf.GetMethods("<init>"), 1)

		code := m.Code()
		require.NotNil(t, code)
		assert.Equal(t, []byte{0x2a, 0xb7, 0x00, idxObjectInit, 0xb1}, code.Code)
		require.NotNil(t, code.LineNumberTable())
		assert.Equal(t, 1, code.LineNumberTable().SourceLine(4))
		name, ok := code.LocalVariableTable().VariableName(0, 2)
		require.True(t, ok)
		assert.Equal(t, "this", name)

		decl, err := m.Declaration(cf.ConstantPool, false)
		require.NoError(t, err)
		assert.Equal(t, "public void <init>()", decl)
	})

	t.Run("class attributes", func(t *testing.T) {
		assert.Equal(t, "Hello.java", cf.SourceFileName())

		custom, ok := cf.GetAttribute("Custom").(*UnknownAttribute)
		require.True(t, ok)
		assert.Equal(t, []byte{1, 2, 3}, custom.Bytes)
		assert.Equal(t, AttrUnknown, custom.Kind())

		sig, err := cf.Signature(false)
		require.NoError(t, err)
		assert.Nil(t, sig)
	})
}

func TestClassFileRoundTrip(t *testing.T) {
	data := sampleBytes(t)

	cf, err := Parse(bytes.NewReader(data))
	require.NoError(t, err)

	again, err := cf.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestAttributeLengthsMatchPayload(t *testing.T) {
	cf, err := ParseBytes(sampleBytes(t))
	require.NoError(t, err)

	var check func(attrs []Attribute)
	check = func(attrs []Attribute) {
		for _, a := range attrs {
			assert.Equal(t, a.Info().Length, PayloadLength(a), AttributeName(a))
			if code, ok := a.(*CodeAttribute); ok {
				check(code.Attributes)
			}
		}
	}
	check(cf.Attributes)
	for _, f := range cf.Fields {
		check(f.Attributes)
	}
	for _, m := range cf.Methods {
		check(m.Attributes)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Hello.class")
	require.NoError(t, os.WriteFile(path, sampleBytes(t), 0o644))

	cf, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Hello", cf.ClassName())

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.class"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrFormat))
}

func TestParseBadMagic(t *testing.T) {
	data := sampleBytes(t)
	data[0] = 0xBE

	cf, err := ParseBytes(data)
	require.Error(t, err)
	assert.Nil(t, cf)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestParseTruncated(t *testing.T) {
	data := sampleBytes(t)
	for n := 0; n < len(data); n++ {
		cf, err := ParseBytes(data[:n])
		if !assert.Error(t, err, "prefix of %d bytes", n) {
			continue
		}
		assert.Nil(t, cf)
		assert.True(t, errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, ErrFormat),
			"prefix of %d bytes: %v", n, err)
	}
}

func TestParseAttributeTrailingBytes(t *testing.T) {
	cf := sampleClass()
	src := cf.Attributes[0].(*SourceFileAttribute)
	// A SourceFile payload with one byte too many.
	cf.Attributes = []Attribute{&UnknownAttribute{
		AttributeInfo: AttributeInfo{NameIndex: src.NameIndex, Length: 3, Pool: cf.ConstantPool},
		Bytes:         []byte{0, idxSourceFileName, 0},
	}}
	data, err := cf.Bytes()
	require.NoError(t, err)

	_, err = ParseBytes(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestClassFileCopy(t *testing.T) {
	cf, err := ParseBytes(sampleBytes(t))
	require.NoError(t, err)

	c := cf.Copy()
	require.NotSame(t, cf.ConstantPool, c.ConstantPool)

	require.NoError(t, c.ConstantPool.Set(idxSourceFileName, &ConstantUtf8Info{Value: "Other.java"}))
	assert.Equal(t, "Hello.java", cf.SourceFileName())
	assert.Equal(t, "Other.java", c.SourceFileName())

	code := c.Methods[0].Code()
	require.NotNil(t, code)
	assert.Same(t, c.ConstantPool, code.Pool)
	for _, a := range code.Attributes {
		assert.Same(t, c.ConstantPool, a.Info().Pool)
	}

	code.Code[0] = 0x00
	assert.Equal(t, byte(0x2a), cf.Methods[0].Code().Code[0])
}

func TestLoggerOptions(t *testing.T) {
	assert.Equal(t, log, newConfig([]Option{WithLogger(nil)}).log)

	l := commonlog.GetLogger("classkit.test")
	assert.Equal(t, l, newConfig([]Option{WithLogger(l)}).log)

	d := NewDisassembler(samplePool(), WithDisassemblerLogger(nil))
	assert.Equal(t, log, d.log)
	d = NewDisassembler(samplePool(), WithDisassemblerLogger(l))
	assert.Equal(t, l, d.log)
}
