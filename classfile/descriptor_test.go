package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldDescriptor(t *testing.T) {
	tests := []struct {
		desc       string
		baseType   string
		className  string
		arrayDepth int
		size       int
	}{
		{"I", "int", "", 0, 1},
		{"Z", "boolean", "", 0, 1},
		{"J", "long", "", 0, 2},
		{"Ljava/lang/String;", "", "java/lang/String", 0, 1},
		{"[I", "int", "", 1, 1},
		{"[[D", "double", "", 2, 1},
		{"[Ljava/lang/Object;", "", "java/lang/Object", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			ft, err := ParseFieldDescriptor(tt.desc)
			if err != nil {
				t.Fatalf("ParseFieldDescriptor(%q) failed: %v", tt.desc, err)
			}
			if ft.BaseType != tt.baseType {
				t.Errorf("BaseType = %q, want %q", ft.BaseType, tt.baseType)
			}
			if ft.ClassName != tt.className {
				t.Errorf("ClassName = %q, want %q", ft.ClassName, tt.className)
			}
			if ft.ArrayDepth != tt.arrayDepth {
				t.Errorf("ArrayDepth = %d, want %d", ft.ArrayDepth, tt.arrayDepth)
			}
			if ft.Size() != tt.size {
				t.Errorf("Size() = %d, want %d", ft.Size(), tt.size)
			}
		})
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	tests := []struct {
		desc        string
		numParams   int
		slots       int
		returnsVoid bool
		returnType  string
	}{
		{"()V", 0, 0, true, ""},
		{"()I", 0, 0, false, "int"},
		{"(I)V", 1, 1, true, ""},
		{"(II)I", 2, 2, false, "int"},
		{"(Ljava/lang/String;)V", 1, 1, true, ""},
		{"(IDLjava/lang/Thread;)Ljava/lang/Object;", 3, 4, false, "java/lang/Object"},
		{"(J[JD)V", 3, 5, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			md, err := ParseMethodDescriptor(tt.desc)
			if err != nil {
				t.Fatalf("ParseMethodDescriptor(%q) failed: %v", tt.desc, err)
			}
			if len(md.Parameters) != tt.numParams {
				t.Errorf("len(Parameters) = %d, want %d", len(md.Parameters), tt.numParams)
			}
			if md.ArgumentSlots() != tt.slots {
				t.Errorf("ArgumentSlots() = %d, want %d", md.ArgumentSlots(), tt.slots)
			}
			if tt.returnsVoid {
				if md.ReturnType != nil {
					t.Error("Expected nil ReturnType for void")
				}
				return
			}
			if md.ReturnType == nil {
				t.Fatal("Expected non-nil ReturnType")
			}
			if md.ReturnType.BaseType != "" && md.ReturnType.BaseType != tt.returnType {
				t.Errorf("ReturnType.BaseType = %q, want %q", md.ReturnType.BaseType, tt.returnType)
			}
			if md.ReturnType.ClassName != "" && md.ReturnType.ClassName != tt.returnType {
				t.Errorf("ReturnType.ClassName = %q, want %q", md.ReturnType.ClassName, tt.returnType)
			}
		})
	}
}

func TestDescriptorString(t *testing.T) {
	md, err := ParseMethodDescriptor("(I[Ljava/lang/String;)V")
	require.NoError(t, err)
	assert.Equal(t, "(int, java.lang.String[]) void", md.String())

	ft, err := ParseFieldDescriptor("[[Ljava/util/List;")
	require.NoError(t, err)
	assert.Equal(t, "java.util.List[][]", ft.String())
	assert.True(t, ft.IsArray())
	assert.True(t, ft.IsReference())
	assert.False(t, ft.IsPrimitive())
}

func TestMalformedDescriptors(t *testing.T) {
	for _, desc := range []string{"", "[", "L;", "Ljava/lang/String", "X", "II"} {
		_, err := ParseFieldDescriptor(desc)
		assert.ErrorIs(t, err, ErrFormat, "field %q", desc)
	}
	for _, desc := range []string{"", "I", "(I", "(I)", "(I)VV", "(V)V", "(Q)V"} {
		_, err := ParseMethodDescriptor(desc)
		assert.ErrorIs(t, err, ErrFormat, "method %q", desc)
	}
}

func TestTypeSize(t *testing.T) {
	tests := []struct {
		desc string
		want int
	}{
		{"V", 0},
		{"I", 1},
		{"J", 2},
		{"D", 2},
		{"[J", 1},
		{"Ljava/lang/Long;", 1},
	}
	for _, tt := range tests {
		got, err := TypeSize(tt.desc)
		require.NoError(t, err, tt.desc)
		assert.Equal(t, tt.want, got, tt.desc)
	}

	_, err := TypeSize("(")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestNameConversion(t *testing.T) {
	assert.Equal(t, "java.util.Map$Entry", InternalToSourceName("java/util/Map$Entry"))
	assert.Equal(t, "java/util/Map$Entry", SourceToInternalName("java.util.Map$Entry"))
}
