package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeSignatureToString(t *testing.T) {
	tests := []struct {
		sig    string
		chopit bool
		want   string
	}{
		{"I", false, "int"},
		{"[[I", false, "int[][]"},
		{"Ljava/lang/String;", false, "java.lang.String"},
		{"Ljava/lang/String;", true, "String"},
		{"Ljava/lang/reflect/Method;", true, "java.lang.reflect.Method"},
		{"Ljava/util/List<Ljava/lang/String;>;", false, "java.util.List<java.lang.String>"},
		{"Ljava/util/Map<TK;[TV;>;", false, "java.util.Map<K, V[]>"},
		{"Ljava/util/List<*>;", false, "java.util.List<?>"},
		{"Ljava/util/List<+Ljava/lang/Number;>;", true, "java.util.List<? extends Number>"},
		{"Ljava/util/Comparator<-TT;>;", false, "java.util.Comparator<? super T>"},
		{"Lp/Outer<TT;>.Inner<Ljava/lang/String;>;", true, "p.Outer<T>.Inner<String>"},
		{"Ljava/util/Map$Entry;", false, "java.util.Map$Entry"},
		{"TT;", false, "T"},
	}
	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			got, err := TypeSignatureToString(tt.sig, tt.chopit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTypeSignatureConsumed(t *testing.T) {
	s, n, err := ParseTypeSignature("Ljava/util/List<Ljava/lang/String;>;I", false)
	require.NoError(t, err)
	assert.Equal(t, "java.util.List<java.lang.String>", s)
	assert.Equal(t, len("Ljava/util/List<Ljava/lang/String;>;"), n)
}

func TestTypeSignatureErrors(t *testing.T) {
	tests := []struct {
		name string
		sig  string
	}{
		{"empty", ""},
		{"missing semicolon", "Ljava/lang/String"},
		{"unbalanced angle", "Ljava/util/List<Ljava/lang/String;"},
		{"empty arguments", "Ljava/util/List<>;"},
		{"unknown character", "Q"},
		{"type variable without semicolon", "TT"},
		{"empty class name", "L;"},
		{"trailing", "II"},
		{"bad array element", "[X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TypeSignatureToString(tt.sig, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestParseMethodSignature(t *testing.T) {
	m, err := ParseMethodSignature("<T::Ljava/lang/Comparable<TT;>;U:Ljava/lang/Number;:Ljava/lang/Runnable;>(TT;[J)TU;^Ljava/io/IOException;^TX;", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"T extends Comparable<T>", "U extends Number & Runnable"}, m.TypeParameters)
	assert.Equal(t, []string{"T", "long[]"}, m.Parameters)
	assert.Equal(t, "U", m.ReturnType)
	assert.Equal(t, []string{"java.io.IOException", "X"}, m.Throws)

	args, err := MethodSignatureArgumentTypes("(ILjava/lang/String;)V", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "java.lang.String"}, args)

	ret, err := MethodSignatureReturnType("()[Ljava/lang/Object;", true)
	require.NoError(t, err)
	assert.Equal(t, "Object[]", ret)

	for _, bad := range []string{"", "V", "(I", "(I)", "(I)VV", "<>()V", "<T>()V", "(I)V^"} {
		_, err := ParseMethodSignature(bad, false)
		assert.ErrorIs(t, err, ErrFormat, "%q", bad)
	}
}

func TestMethodSignatureToString(t *testing.T) {
	t.Run("generated names follow slots", func(t *testing.T) {
		s, err := MethodSignatureToString("<T:Ljava/lang/Object;>(TT;JI)TT;^Ljava/io/IOException;", "f", "public static", true, nil)
		require.NoError(t, err)
		assert.Equal(t, "public static <T extends Object> T f(T arg0, long arg1, int arg3) throws java.io.IOException", s)

		s, err = MethodSignatureToString("(DI)V", "g", "", false, nil)
		require.NoError(t, err)
		assert.Equal(t, "void g(double arg1, int arg3)", s)

		s, err = MethodSignatureToString("(Ljava/util/List<TT;>;D[JI)V", "h", "static", true, nil)
		require.NoError(t, err)
		assert.Equal(t, "static void h(java.util.List<T> arg0, double arg1, long[] arg3, int arg4)", s)
	})

	t.Run("names from local variables", func(t *testing.T) {
		cp := NewConstantPool(
			&ConstantUtf8Info{Value: "count"},
			&ConstantUtf8Info{Value: "I"},
		)
		vars := &LocalVariableTableAttribute{
			AttributeInfo: AttributeInfo{Pool: cp},
			LocalVariableTable: []LocalVariable{
				{StartPC: 0, Length: 4, NameIndex: 1, DescriptorIndex: 2, Index: 1},
			},
		}
		s, err := MethodSignatureToString("(II)V", "m", "public", false, vars)
		require.NoError(t, err)
		assert.Equal(t, "public void m(int count, int)", s)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := MethodSignatureToString("(Ljava/lang/String)V", "m", "", false, nil)
		assert.ErrorIs(t, err, ErrFormat)
	})
}

func TestParseClassSignature(t *testing.T) {
	cs, err := ParseClassSignature("<E:Ljava/lang/Object;>Ljava/util/AbstractList<TE;>;Ljava/util/List<TE;>;Ljava/io/Serializable;", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"E extends java.lang.Object"}, cs.TypeParameters)
	assert.Equal(t, "java.util.AbstractList<E>", cs.Superclass)
	assert.Equal(t, []string{"java.util.List<E>", "java.io.Serializable"}, cs.Interfaces)
	assert.Equal(t,
		"<E extends java.lang.Object> extends java.util.AbstractList<E> implements java.util.List<E>, java.io.Serializable",
		cs.String())

	cs, err = ParseClassSignature("Ljava/lang/Object;", true)
	require.NoError(t, err)
	assert.Equal(t, "extends Object", cs.String())

	cs, err = ParseClassSignature("<E:>Ljava/lang/Object;", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"E"}, cs.TypeParameters)

	_, err = ParseClassSignature("<>Ljava/lang/Object;", false)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestCompactClassName(t *testing.T) {
	assert.Equal(t, "String", CompactClassName("java/lang/String", true))
	assert.Equal(t, "java.lang.String", CompactClassName("java/lang/String", false))
	assert.Equal(t, "java.lang.annotation.Retention", CompactClassName("java/lang/annotation/Retention", true))
	assert.Equal(t, "java.util.List", CompactClassName("java/util/List", true))
}
