package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s4(v int32) uint32 { return uint32(v) }

func s2(v int16) uint16 { return uint16(v) }

// refPool holds member references for the operand tests.
func refPool() *ConstantPool {
	return NewConstantPool(
		&ConstantUtf8Info{Value: "java/util/List"},
		&ConstantClassInfo{NameIndex: 1},
		&ConstantUtf8Info{Value: "size"},
		&ConstantUtf8Info{Value: "()I"},
		&ConstantNameAndTypeInfo{NameIndex: 3, DescriptorIndex: 4},
		&ConstantInterfaceMethodrefInfo{ClassIndex: 2, NameAndTypeIndex: 5},
		&ConstantFieldrefInfo{ClassIndex: 2, NameAndTypeIndex: 5},
		&ConstantLongInfo{Value: -9},
	)
}

func TestDisassembleInstructions(t *testing.T) {
	sample := samplePool()
	refs := refPool()

	tests := []struct {
		name string
		pool *ConstantPool
		code []byte
		want string
	}{
		{"bipush", sample, []byte{0x10, 0xff}, "bipush\t\t-1"},
		{"sipush", sample, new(fixture).u1(0x11).u2(s2(-300)).bytes(), "sipush\t\t-300"},
		{"ldc string", sample, []byte{0x12, idxHelloString}, "ldc\t\t\"Hello\""},
		{"ldc2_w", refs, []byte{0x14, 0x00, 0x08}, "ldc2_w\t\t-9"},
		{"aload", sample, []byte{0x19, 0x04}, "aload\t\t%4"},
		{"iinc", sample, []byte{0x84, 0x02, 0xfe}, "iinc\t\t%2\t-2"},
		{"goto", sample, []byte{0xa7, 0x00, 0x05}, "goto\t\t#5"},
		{"goto_w", sample, new(fixture).u1(0xc8).u4(7).bytes(), "goto_w\t\t#7"},
		{"getstatic", refs, []byte{0xb2, 0x00, 0x07}, "getstatic\t\tjava.util.List.size ()I"},
		{"invokestatic on interface", refs, []byte{0xb8, 0x00, 0x06}, "invokestatic\tjava.util.List.size ()I"},
		{"invokeinterface", refs, []byte{0xb9, 0x00, 0x06, 0x01, 0x00}, "invokeinterface\tjava.util.List.size ()I\t1\t0"},
		{"new", sample, []byte{0xbb, 0x00, idxHelloClass}, "new\t\t<Hello>"},
		{"checkcast", sample, []byte{0xc0, 0x00, idxHelloClass}, "checkcast\t\t<Hello>"},
		{"instanceof", sample, []byte{0xc1, 0x00, idxHelloClass}, "instanceof\t<Hello>"},
		{"anewarray", sample, []byte{0xbd, 0x00, idxHelloClass}, "anewarray\t\t<Hello>"},
		{"multianewarray", sample, []byte{0xc5, 0x00, idxHelloClass, 0x03}, "multianewarray\t<Hello>\t3"},
		{"newarray", sample, []byte{0xbc, 0x0a}, "newarray\t\t<int>"},
		{"breakpoint", sample, []byte{0xca}, "breakpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instructions, err := NewDisassembler(tt.pool).Decode(tt.code)
			require.NoError(t, err)
			require.Len(t, instructions, 1)
			assert.Equal(t, tt.want, instructions[0].Text)
			assert.Equal(t, len(tt.code), instructions[0].Length)
		})
	}
}

func TestDisassembleTableswitch(t *testing.T) {
	code := new(fixture).
		u1(0, 0, 0, 0, 0, 0, 0, 0).
		u1(uint8(OpTableswitch), 0, 0, 0).
		u4(40, 0, 2).
		u4(20, 24, 28).
		bytes()

	instructions, err := NewDisassembler(samplePool()).Decode(code)
	require.NoError(t, err)
	require.Len(t, instructions, 9)

	ts := instructions[8]
	assert.Equal(t, 8, ts.Offset)
	assert.Equal(t, 28, ts.Length)
	assert.Equal(t, 48, ts.Default)
	assert.Equal(t, int32(0), ts.Low)
	assert.Equal(t, int32(2), ts.High)
	assert.Equal(t, []int{28, 32, 36}, ts.Targets)
	assert.Equal(t, "tableswitch\tdefault = 48, low = 0, high = 2(28, 32, 36)", ts.Text)

	s, err := CodeToString(code, samplePool(), false)
	require.NoError(t, err)
	assert.Contains(t, s, "8:    tableswitch\tdefault = 48")
}

func TestDisassembleLookupswitch(t *testing.T) {
	code := new(fixture).
		u1(0).
		u1(uint8(OpLookupswitch), 0, 0).
		u4(10, 2).
		u4(s4(-1), 20, 5, 30).
		bytes()

	instructions, err := NewDisassembler(samplePool()).Decode(code)
	require.NoError(t, err)
	require.Len(t, instructions, 2)

	ls := instructions[1]
	assert.Equal(t, 11, ls.Default)
	assert.Equal(t, []int32{-1, 5}, ls.Matches)
	assert.Equal(t, []int{21, 31}, ls.Targets)
	assert.Equal(t, "lookupswitch\tdefault = 11, npairs = 2 ((-1, 21), (5, 31))", ls.Text)
}

func TestDisassembleWide(t *testing.T) {
	code := []byte{
		0xc4, 0x15, 0x01, 0x00, // wide iload 256
		0xc4, 0x84, 0x00, 0x05, 0xff, 0xff, // wide iinc 5 -1
		0x15, 0x03, // iload 3
	}
	instructions, err := NewDisassembler(samplePool()).Decode(code)
	require.NoError(t, err)
	require.Len(t, instructions, 5)

	want := []struct {
		offset int
		length int
		wide   bool
		index  int
		text   string
	}{
		{0, 1, false, 0, "wide\t(wide)"},
		{1, 3, true, 256, "iload\t\t%256"},
		{4, 1, false, 0, "wide\t(wide)"},
		{5, 5, true, 5, "iinc\t\t%5\t-1"},
		{10, 2, false, 3, "iload\t\t%3"},
	}
	for i, w := range want {
		ins := instructions[i]
		assert.Equal(t, w.offset, ins.Offset, "instruction %d", i)
		assert.Equal(t, w.length, ins.Length, "instruction %d", i)
		assert.Equal(t, w.wide, ins.Wide, "instruction %d", i)
		assert.Equal(t, w.index, ins.Index, "instruction %d", i)
		assert.Equal(t, w.text, ins.Text, "instruction %d", i)
	}
}

func TestDisassembleErrors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"wide before return", []byte{0xc4, 0xb1}},
		{"wide twice", []byte{0xc4, 0xc4, 0x15, 0x00, 0x01}},
		{"wide at end", []byte{0x00, 0xc4}},
		{"undefined opcode", []byte{0xcb}},
		{"truncated operand", []byte{0x10}},
		{"truncated switch", []byte{0xaa, 0, 0, 0, 0, 0}},
		{"dangling constant", []byte{0xbb, 0x00, 0x63}},
		{"constant of wrong kind", []byte{0xbb, 0x00, idxHelloName}},
		{"invalid newarray type", []byte{0xbc, 0x03}},
		{"high below low", new(fixture).u1(0xaa, 0, 0, 0).u4(0, 5, 4).bytes()},
		{"table larger than code", new(fixture).u1(0xaa, 0, 0, 0).u4(0, 0, 1<<30).bytes()},
		{"negative npairs", new(fixture).u1(0xab, 0, 0, 0).u4(0, s4(-1)).bytes()},
		{"npairs larger than code", new(fixture).u1(0xab, 0, 0, 0).u4(0, 3, 1, 1).bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instructions, err := NewDisassembler(samplePool()).Decode(tt.code)
			require.Error(t, err)
			assert.Nil(t, instructions)
			assert.ErrorIs(t, err, ErrFormat)

			_, err = CodeToString(tt.code, samplePool(), false)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestDisassembleSwitchPadding(t *testing.T) {
	code := new(fixture).
		u1(uint8(OpTableswitch), 1, 0, 0).
		u4(16, 0, 0, 20).
		bytes()

	rec := &recordingLogger{}
	d := NewDisassembler(samplePool(), func(d *Disassembler) { d.log = rec })
	instructions, err := d.Decode(code)
	require.NoError(t, err)
	require.Len(t, instructions, 1)
	assert.Equal(t, []int{20}, instructions[0].Targets)
	require.Len(t, rec.warnings, 1)
	assert.Contains(t, rec.warnings[0], "padding byte 0x01")
}

func TestCodeToString(t *testing.T) {
	cf := sampleClass()
	code := cf.Methods[0].Code().Code

	s, err := CodeToString(code, cf.ConstantPool, false)
	require.NoError(t, err)
	assert.Equal(t,
		"0:    aload_0\n"+
			"1:    invokespecial\tjava.lang.Object.<init> ()V\n"+
			"4:    return\n",
		s)

	s, err = CodeToString(code, cf.ConstantPool, true)
	require.NoError(t, err)
	assert.Contains(t, s, "1:    invokespecial\tjava.lang.Object.<init> ()V (8)\n")

	s, err = CodeToString(nil, cf.ConstantPool, false)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestOpcodeNames(t *testing.T) {
	assert.Equal(t, "nop", OpNop.String())
	assert.Equal(t, "breakpoint", OpBreakpoint.String())
	assert.Equal(t, "impdep2", OpImpdep2.String())
	assert.Equal(t, "illegal_203", Opcode(0xcb).String())
	assert.False(t, Opcode(0xcb).Defined())
	assert.True(t, OpIinc.Widenable())
	assert.True(t, OpRet.Widenable())
	assert.False(t, OpGoto.Widenable())
}
