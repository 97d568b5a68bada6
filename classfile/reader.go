package classfile

import (
	"bytes"
	"encoding/binary"
	"io"
)

// reader decodes big-endian classfile primitives. The first error sticks and
// every later read returns a zero value, so callers check r.err once per
// structure.
type reader struct {
	r   io.Reader
	err error
	n   int64
}

func newReader(r io.Reader) *reader {
	return &reader{r: r}
}

func newBytesReader(data []byte) *reader {
	return &reader{r: bytes.NewReader(data)}
}

func (r *reader) read(buf []byte) {
	if r.err != nil {
		return
	}
	var n int
	n, r.err = io.ReadFull(r.r, buf)
	r.n += int64(n)
}

func (r *reader) readU1() uint8 {
	var buf [1]byte
	r.read(buf[:])
	return buf[0]
}

func (r *reader) readS1() int8 {
	return int8(r.readU1())
}

func (r *reader) readU2() uint16 {
	var buf [2]byte
	r.read(buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readS2() int16 {
	return int16(r.readU2())
}

func (r *reader) readU4() uint32 {
	var buf [4]byte
	r.read(buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readS4() int32 {
	return int32(r.readU4())
}

func (r *reader) readU8() uint64 {
	var buf [8]byte
	r.read(buf[:])
	return binary.BigEndian.Uint64(buf[:])
}

func (r *reader) readU2s() []uint16 {
	n := r.readU2()
	if r.err != nil {
		return nil
	}
	vs := make([]uint16, n)
	for i := range vs {
		vs[i] = r.readU2()
	}
	return vs
}

const maxEagerAlloc = 1 << 20

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if l, ok := r.r.(interface{ Len() int }); ok && l.Len() < n {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	if n <= maxEagerAlloc {
		buf := make([]byte, n)
		r.read(buf)
		return buf
	}
	// Large lengths come from untrusted u4 fields; grow with the data
	// actually present instead of trusting the header.
	var buf bytes.Buffer
	var copied int64
	copied, r.err = io.CopyN(&buf, r.r, int64(n))
	r.n += copied
	if r.err == io.EOF {
		r.err = io.ErrUnexpectedEOF
	}
	return buf.Bytes()
}

// remaining reports how many bytes are left when reading from a byte slice,
// or -1 for streams.
func (r *reader) remaining() int {
	if l, ok := r.r.(interface{ Len() int }); ok {
		return l.Len()
	}
	return -1
}
