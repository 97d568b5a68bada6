package classfile

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantPoolSlots(t *testing.T) {
	cp := samplePool()

	t.Run("index zero", func(t *testing.T) {
		_, err := cp.Get(0)
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := cp.Get(uint16(cp.Len()))
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("long takes two slots", func(t *testing.T) {
		c, err := cp.Get(idxLong42)
		require.NoError(t, err)
		assert.Equal(t, ConstantLong, c.Tag())

		_, err = cp.Get(idxLong42 + 1)
		assert.ErrorIs(t, err, ErrFormat)

		v, ok := cp.GetLong(idxLong42)
		assert.True(t, ok)
		assert.Equal(t, int64(42), v)
	})

	t.Run("typed", func(t *testing.T) {
		_, err := cp.GetTyped(idxHelloClass, ConstantClass)
		require.NoError(t, err)
		_, err = cp.GetTyped(idxHelloClass, ConstantUtf8)
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("all skips empty slots", func(t *testing.T) {
		var indices []uint16
		for i := range cp.All() {
			indices = append(indices, i)
		}
		assert.Len(t, indices, cp.Len()-2)
		assert.NotContains(t, indices, uint16(idxLong42+1))
	})
}

func TestConstantPoolAdd(t *testing.T) {
	cp := NewConstantPool(&ConstantUtf8Info{Value: "a"})
	assert.Equal(t, 2, cp.Len())

	i, err := cp.Add(&ConstantDoubleInfo{Value: 1.5})
	require.NoError(t, err)
	assert.Equal(t, uint16(2), i)
	assert.Equal(t, 4, cp.Len())

	j, err := cp.Add(&ConstantIntegerInfo{Value: 7})
	require.NoError(t, err)
	assert.Equal(t, uint16(4), j)

	_, err = cp.Get(3)
	assert.ErrorIs(t, err, ErrFormat)

	require.Error(t, cp.Set(0, &ConstantIntegerInfo{}))
	require.Error(t, cp.Set(4, &ConstantLongInfo{}), "no room for the second slot")
	require.NoError(t, cp.Set(4, &ConstantIntegerInfo{Value: 8}))
	v, _ := cp.GetInteger(4)
	assert.Equal(t, int32(8), v)
}

func TestConstantPoolRoundTrip(t *testing.T) {
	cp := NewConstantPool(
		&ConstantUtf8Info{Value: "java/lang/Object"},
		&ConstantClassInfo{NameIndex: 1},
		&ConstantIntegerInfo{Value: -3},
		&ConstantFloatInfo{Value: 2.5},
		&ConstantLongInfo{Value: math.MinInt64},
		&ConstantDoubleInfo{Value: math.Inf(-1)},
		&ConstantStringInfo{StringIndex: 1},
		&ConstantUtf8Info{Value: "hashCode"},
		&ConstantUtf8Info{Value: "()I"},
		&ConstantNameAndTypeInfo{NameIndex: 10, DescriptorIndex: 11},
		&ConstantFieldrefInfo{ClassIndex: 2, NameAndTypeIndex: 12},
		&ConstantMethodrefInfo{ClassIndex: 2, NameAndTypeIndex: 12},
		&ConstantInterfaceMethodrefInfo{ClassIndex: 2, NameAndTypeIndex: 12},
		&ConstantMethodHandleInfo{ReferenceKind: RefInvokeVirtual, ReferenceIndex: 14},
		&ConstantMethodTypeInfo{DescriptorIndex: 11},
		&ConstantDynamicInfo{BootstrapMethodAttrIndex: 0, NameAndTypeIndex: 12},
		&ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: 1, NameAndTypeIndex: 12},
		&ConstantModuleInfo{NameIndex: 1},
		&ConstantPackageInfo{NameIndex: 1},
		&ConstantUtf8Info{Value: "nul\x00 and \U0001F600"},
	)

	var buf bytes.Buffer
	require.NoError(t, cp.Dump(&buf))
	data := buf.Bytes()

	back, err := ReadConstantPool(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, cp, back)

	buf.Reset()
	require.NoError(t, back.Dump(&buf))
	assert.Equal(t, data, buf.Bytes())

	assert.Equal(t, cp, cp.Copy())
}

func TestReadConstantPoolErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"count zero", new(fixture).u2(0).bytes()},
		{"unknown tag", new(fixture).u2(2).u1(2).bytes()},
		{"long in last slot", new(fixture).u2(2).u1(uint8(ConstantLong)).u4(0, 1).bytes()},
		{"malformed utf8", new(fixture).u2(2).u1(uint8(ConstantUtf8)).u2(1).u1(0xC0).bytes()},
		{"bare continuation byte", new(fixture).u2(2).u1(uint8(ConstantUtf8)).u2(1).u1(0x80).bytes()},
		{"raw nul in utf8", new(fixture).u2(2).u1(uint8(ConstantUtf8)).u2(3).u1('a', 0x00, 'b').bytes()},
		{"overlong utf8", new(fixture).u2(2).u1(uint8(ConstantUtf8)).u2(2).u1(0xC1, 0x81).bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConstantPool(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestModifiedUtf8(t *testing.T) {
	tests := []struct {
		value   string
		encoded []byte
	}{
		{"abc", []byte("abc")},
		{"\x00", []byte{0xC0, 0x80}},
		{"é", []byte{0xC3, 0xA9}},
		{"€", []byte{0xE2, 0x82, 0xAC}},
		{"\U0001F600", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.value), func(t *testing.T) {
			assert.Equal(t, tt.encoded, encodeModifiedUtf8(tt.value))
			s, err := decodeModifiedUtf8(tt.encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.value, s)
		})
	}

	t.Run("unpaired surrogate survives", func(t *testing.T) {
		raw := []byte{'a', 0xED, 0xA0, 0x80, 'b'}
		s, err := decodeModifiedUtf8(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, encodeModifiedUtf8(s))
	})

	malformed := []struct {
		name string
		raw  []byte
	}{
		{"raw nul", []byte{'a', 0x00, 'b'}},
		{"overlong ascii", []byte{0xC1, 0x81}},
		{"overlong nul in three bytes", []byte{0xE0, 0x80, 0x80}},
		{"overlong two byte range", []byte{0xE0, 0x9F, 0xBF}},
		{"four byte utf8", []byte{0xF0, 0x9F, 0x98, 0x80}},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeModifiedUtf8(tt.raw)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestResolveToString(t *testing.T) {
	cp := NewConstantPool(
		&ConstantUtf8Info{Value: "java/lang/Object"},
		&ConstantClassInfo{NameIndex: 1},
		&ConstantUtf8Info{Value: "<init>"},
		&ConstantUtf8Info{Value: "()V"},
		&ConstantNameAndTypeInfo{NameIndex: 3, DescriptorIndex: 4},
		&ConstantMethodrefInfo{ClassIndex: 2, NameAndTypeIndex: 5},
		&ConstantUtf8Info{Value: "say \"hi\"\n\tnow"},
		&ConstantStringInfo{StringIndex: 7},
		&ConstantMethodHandleInfo{ReferenceKind: RefNewInvokeSpecial, ReferenceIndex: 6},
		&ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: 3, NameAndTypeIndex: 5},
		&ConstantUtf8Info{Value: "java/util"},
		&ConstantPackageInfo{NameIndex: 11},
		&ConstantClassInfo{NameIndex: 99},
	)

	tests := []struct {
		name  string
		index uint16
		tag   ConstantTag
		want  string
	}{
		{"class", 2, ConstantClass, "java.lang.Object"},
		{"name and type", 5, ConstantNameAndType, "<init> ()V"},
		{"methodref", 6, ConstantMethodref, "java.lang.Object.<init> ()V"},
		{"escaped string", 8, ConstantString, `"say \"hi\"\n\tnow"`},
		{"method handle", 9, ConstantMethodHandle, RefNewInvokeSpecial.String() + " java.lang.Object.<init> ()V"},
		{"invokedynamic", 10, ConstantInvokeDynamic, "3:<init> ()V"},
		{"package", 12, ConstantPackage, "java.util"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cp.ConstantToString(tt.index, tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("wrong tag", func(t *testing.T) {
		_, err := cp.ConstantToString(2, ConstantString)
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("dangling reference", func(t *testing.T) {
		_, err := cp.ConstantToString(13, ConstantClass)
		assert.ErrorIs(t, err, ErrFormat)
	})

	t.Run("method handle must reference a member", func(t *testing.T) {
		for _, data := range [][]byte{
			// handle pointing at itself
			new(fixture).u2(2).u1(uint8(ConstantMethodHandle), uint8(RefInvokeStatic)).u2(1).bytes(),
			// two handles pointing at each other
			new(fixture).u2(3).
				u1(uint8(ConstantMethodHandle), uint8(RefInvokeStatic)).u2(2).
				u1(uint8(ConstantMethodHandle), uint8(RefInvokeStatic)).u2(1).bytes(),
		} {
			pool, err := ReadConstantPool(bytes.NewReader(data))
			require.NoError(t, err)
			c, err := pool.Get(1)
			require.NoError(t, err)
			_, err = pool.ResolveToString(c)
			assert.ErrorIs(t, err, ErrFormat)
			assert.Contains(t, pool.String(), "expected a field or method reference")
		}

		_, err := cp.ConstantToString(9, ConstantMethodHandle)
		require.NoError(t, err)
	})

	t.Run("raw string", func(t *testing.T) {
		s, err := cp.ConstantString(2, ConstantClass)
		require.NoError(t, err)
		assert.Equal(t, "java/lang/Object", s)
	})

	t.Run("listing", func(t *testing.T) {
		listing := cp.String()
		assert.Contains(t, listing, "    2: CONSTANT_Class")
		assert.Contains(t, listing, "<")
		assert.Equal(t, 13, strings.Count(listing, "\n"))
	})
}

func TestJavaFloatString(t *testing.T) {
	tests := []struct {
		v       float64
		bitSize int
		want    string
	}{
		{1, 64, "1.0"},
		{-2.5, 64, "-2.5"},
		{0.001, 64, "0.001"},
		{0.0001, 64, "1.0E-4"},
		{1e7, 64, "1.0E7"},
		{1e10, 64, "1.0E10"},
		{1234567, 64, "1234567.0"},
		{1.5e300, 64, "1.5E300"},
		{float64(float32(0.1)), 32, "0.1"},
		{math.NaN(), 64, "NaN"},
		{math.Inf(1), 64, "Infinity"},
		{math.Inf(-1), 32, "-Infinity"},
		{0, 64, "0.0"},
		{math.Copysign(0, -1), 64, "-0.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, javaFloatString(tt.v, tt.bitSize), "%v", tt.v)
	}
}

func TestUtf8Cache(t *testing.T) {
	t.Run("nil cache is disabled", func(t *testing.T) {
		var c *Utf8Cache
		assert.Equal(t, "x", c.Intern("x"))
		assert.Zero(t, c.Len())
	})

	t.Run("long strings bypass", func(t *testing.T) {
		c := NewUtf8Cache(10, 4)
		c.Intern("short")
		c.Intern("abc")
		assert.Equal(t, 1, c.Len())
		c.Clear()
		assert.Zero(t, c.Len())
	})

	t.Run("bounded", func(t *testing.T) {
		c := NewUtf8Cache(3, 0)
		for i := range 10 {
			c.Intern(fmt.Sprint(i))
		}
		assert.Equal(t, 3, c.Len())
		assert.Equal(t, DefaultUtf8CacheMaxLength, c.MaxLength())
	})

	t.Run("shared by parsers", func(t *testing.T) {
		cache := NewUtf8Cache(0, 0)
		data := sampleBytes(t)

		var wg sync.WaitGroup
		results := make([]*ClassFile, 8)
		errs := make([]error, len(results))
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = ParseBytes(data, WithUtf8Cache(cache))
			}()
		}
		wg.Wait()

		for i, cf := range results {
			require.NoError(t, errs[i])
			assert.Equal(t, "Hello", cf.ClassName())
		}
		utf8s := 0
		for _, c := range samplePool().All() {
			if c.Tag() == ConstantUtf8 {
				utf8s++
			}
		}
		assert.Equal(t, utf8s, cache.Len())
	})
}
