package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// classEntry is one class file's bytes, named by its path on disk or
// inside an archive.
type classEntry struct {
	Name string
	Data []byte
}

// eachClass calls fn for path itself when it is a .class file, or for
// every .class entry of a jar or zip archive, in archive order.
func eachClass(path string, fn func(classEntry) error) error {
	switch ext := filepath.Ext(path); ext {
	case ".class":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read class file: %w", err)
		}
		return fn(classEntry{Name: path, Data: data})
	case ".jar", ".zip":
		return eachArchiveClass(path, fn)
	default:
		return fmt.Errorf("unsupported file extension: %s (expected .class, .jar or .zip)", ext)
	}
}

func eachArchiveClass(path string, fn func(classEntry) error) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		data, err := readZipEntry(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f.Name, err)
		}
		if err := fn(classEntry{Name: f.Name, Data: data}); err != nil {
			return err
		}
	}
	return nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// firstDifference returns the offset of the first byte where a and b
// differ, or -1 when they are equal.
func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}
