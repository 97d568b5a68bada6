package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dhamidi/classkit/classfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helloClass returns the bytes of
//
//	package demo;
//	public class Hello { public Hello() { super(); } }
func helloClass(t *testing.T) []byte {
	t.Helper()
	cp := classfile.NewConstantPool(
		&classfile.ConstantUtf8Info{Value: "demo/Hello"},
		&classfile.ConstantClassInfo{NameIndex: 1},
		&classfile.ConstantUtf8Info{Value: "java/lang/Object"},
		&classfile.ConstantClassInfo{NameIndex: 3},
		&classfile.ConstantUtf8Info{Value: "<init>"},
		&classfile.ConstantUtf8Info{Value: "()V"},
		&classfile.ConstantNameAndTypeInfo{NameIndex: 5, DescriptorIndex: 6},
		&classfile.ConstantMethodrefInfo{ClassIndex: 4, NameAndTypeIndex: 7},
		&classfile.ConstantUtf8Info{Value: "Code"},
	)
	code := &classfile.CodeAttribute{
		AttributeInfo: classfile.AttributeInfo{NameIndex: 9, Pool: cp},
		MaxStack:      1,
		MaxLocals:     1,
	}
	code.SetCode([]byte{0x2a, 0xb7, 0x00, 0x08, 0xb1})

	cf := &classfile.ClassFile{
		MajorVersion: 52,
		ConstantPool: cp,
		AccessFlags:  classfile.AccPublic | classfile.AccSuper,
		ThisClass:    2,
		SuperClass:   4,
		Methods: []classfile.MethodInfo{
			{AccessFlags: classfile.AccPublic, NameIndex: 5, DescriptorIndex: 6, Attributes: []classfile.Attribute{code}},
		},
	}
	data, err := cf.Bytes()
	require.NoError(t, err)
	return data
}

func writeJar(t *testing.T, path string, entries map[string][]byte, order []string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(entries[name])
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func fixtures(t *testing.T) (classPath, jarPath string) {
	t.Helper()
	dir := t.TempDir()
	data := helloClass(t)

	classPath = filepath.Join(dir, "Hello.class")
	require.NoError(t, os.WriteFile(classPath, data, 0o644))

	jarPath = filepath.Join(dir, "demo.jar")
	writeJar(t, jarPath, map[string][]byte{
		"META-INF/MANIFEST.MF": []byte("Manifest-Version: 1.0\n"),
		"demo/":                nil,
		"demo/Hello.class":     data,
		"demo/Again.class":     data,
	}, []string{"META-INF/MANIFEST.MF", "demo/", "demo/Hello.class", "demo/Again.class"})
	return classPath, jarPath
}

func TestEachClass(t *testing.T) {
	classPath, jarPath := fixtures(t)

	var names []string
	collect := func(e classEntry) error {
		names = append(names, e.Name)
		assert.NotEmpty(t, e.Data)
		return nil
	}

	require.NoError(t, eachClass(classPath, collect))
	assert.Equal(t, []string{classPath}, names)

	names = nil
	require.NoError(t, eachClass(jarPath, collect))
	assert.Equal(t, []string{"demo/Hello.class", "demo/Again.class"}, names)

	err := eachClass(filepath.Join(t.TempDir(), "Hello.java"), collect)
	assert.ErrorContains(t, err, "unsupported file extension: .java")
}

func TestFirstDifference(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want int
	}{
		{"equal", []byte{1, 2, 3}, []byte{1, 2, 3}, -1},
		{"both empty", nil, nil, -1},
		{"middle", []byte{1, 2, 3}, []byte{1, 9, 3}, 1},
		{"shorter", []byte{1, 2, 3}, []byte{1, 2}, 2},
		{"longer", []byte{1}, []byte{1, 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstDifference(tt.a, tt.b))
		})
	}
}

func TestRoundtrip(t *testing.T) {
	data := helloClass(t)
	require.NoError(t, roundtrip(data))

	err := roundtrip(append(data[:len(data):len(data)], 0))
	assert.ErrorContains(t, err, "first difference at byte")

	err = roundtrip(data[:10])
	assert.ErrorContains(t, err, "parse:")
}

func TestRenderSignature(t *testing.T) {
	tests := []struct {
		sig    string
		name   string
		access string
		chop   bool
		want   string
	}{
		{"Ljava/util/List<Ljava/lang/String;>;", "", "", false, "java.util.List<java.lang.String>"},
		{"[[I", "", "", false, "int[][]"},
		{"(ILjava/lang/String;)V", "put", "public", true, "public void put(int arg1, String arg2)"},
		{"Ljava/lang/Object;Ljava/lang/Runnable;", "", "", true, "extends Object implements Runnable"},
		{"<T:Ljava/lang/Object;>Ljava/lang/Object;", "", "", false, "<T extends java.lang.Object> extends java.lang.Object"},
	}
	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			got, err := renderSignature(tt.sig, tt.name, tt.access, tt.chop)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := renderSignature("Ljava/lang/String", "m", "", false)
	assert.ErrorIs(t, err, classfile.ErrFormat)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	classPath, jarPath := fixtures(t)

	t.Run("dump line", func(t *testing.T) {
		out, err := run(t, "dump", classPath)
		require.NoError(t, err)
		assert.Contains(t, out, "demo.Hello")
		assert.Contains(t, out, "method\t<init>")
	})

	t.Run("dump json from jar", func(t *testing.T) {
		out, err := run(t, "dump", "--format", "json", jarPath)
		require.NoError(t, err)
		assert.Equal(t, 2, bytes.Count([]byte(out), []byte(`"name": "demo.Hello"`)))
	})

	t.Run("dump listing with code", func(t *testing.T) {
		out, err := run(t, "dump", "-f", "listing", "--code", "--chop", classPath)
		require.NoError(t, err)
		assert.Contains(t, out, "aload_0")
		assert.Contains(t, out, "Constant pool:")
	})

	t.Run("dump unknown format", func(t *testing.T) {
		_, err := run(t, "dump", "-f", "yaml", classPath)
		assert.ErrorContains(t, err, "unknown format: yaml")
	})

	t.Run("disasm", func(t *testing.T) {
		out, err := run(t, "disasm", "--method", "<init>", "--indices", classPath)
		require.NoError(t, err)
		assert.Contains(t, out, "0:    aload_0\n")
		assert.Contains(t, out, "invokespecial\tjava.lang.Object.<init> ()V (8)")

		_, err = run(t, "disasm", "-m", "missing", classPath)
		assert.ErrorContains(t, err, "no method named missing")
	})

	t.Run("signature", func(t *testing.T) {
		out, err := run(t, "signature", "--chop", "Ljava/util/Map<TK;TV;>;")
		require.NoError(t, err)
		assert.Equal(t, "java.util.Map<K, V>\n", out)
	})

	t.Run("roundtrip", func(t *testing.T) {
		out, err := run(t, "roundtrip", jarPath)
		require.NoError(t, err)
		assert.Contains(t, out, "2 classes, 0 mismatched")
	})

	t.Run("constants with interning", func(t *testing.T) {
		out, err := run(t, "--intern-cache", "16", "constants", classPath)
		require.NoError(t, err)
		assert.Contains(t, out, "demo/Hello")
		assert.Contains(t, out, "java.lang.Object")
		assert.NotNil(t, utf8Cache)
	})
}
