package bio

import (
	"encoding/binary"
	"github.com/pkg/errors"
	"io"
)

// MaxVarBytes bounds the length prefix a Reader will allocate for.
const MaxVarBytes = 1 << 16

var ErrTooLong = errors.New("length prefix too long")

type Reader struct {
	r   io.Reader
	N   int64
	Err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		r: r,
	}
}

func (r *Reader) Read(b []byte) (int, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	n, err := io.ReadFull(r.r, b)
	r.N += int64(n)
	r.Err = err
	return n, err
}

func (r *Reader) ReadByte() (byte, error) {
	b := r.Fixed(1)
	if r.Err != nil {
		return 0, r.Err
	}
	return b[0], nil
}

func (r *Reader) Byte() byte {
	b, _ := r.ReadByte()
	return b
}

func (r *Reader) Fixed(n int) []byte {
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return nil
	}
	return b
}

func (r *Reader) Uvarint() uint64 {
	if r.Err != nil {
		return 0
	}
	n, err := binary.ReadUvarint(r)
	if err != nil && r.Err == nil {
		r.Err = err
	}
	return n
}

func (r *Reader) Uint64() uint64 {
	b := r.Fixed(8)
	if r.Err != nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *Reader) VarBytes() []byte {
	l := r.Uvarint()
	if r.Err != nil {
		return nil
	}
	if l > MaxVarBytes {
		r.Err = errors.Wrapf(ErrTooLong, "%d bytes", l)
		return nil
	}
	return r.Fixed(int(l))
}

func (r *Reader) VarString() string {
	return string(r.VarBytes())
}
