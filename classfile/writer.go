package classfile

import (
	"encoding/binary"
	"io"
)

// writer mirrors reader: big-endian primitives with a sticky error.
type writer struct {
	w   io.Writer
	err error
	n   int64
}

func newWriter(w io.Writer) *writer {
	return &writer{w: w}
}

func (w *writer) write(buf []byte) {
	if w.err != nil {
		return
	}
	var n int
	n, w.err = w.w.Write(buf)
	w.n += int64(n)
}

func (w *writer) writeU1(v uint8) {
	w.write([]byte{v})
}

func (w *writer) writeU2(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	w.write(buf[:])
}

func (w *writer) writeU4(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.write(buf[:])
}

func (w *writer) writeU8(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	w.write(buf[:])
}

func (w *writer) writeBytes(b []byte) {
	w.write(b)
}

func (w *writer) writeU2s(vs []uint16) {
	w.writeU2(uint16(len(vs)))
	for _, v := range vs {
		w.writeU2(v)
	}
}
