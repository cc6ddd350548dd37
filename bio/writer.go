package bio

import (
	"encoding/binary"
	"io"
)

// Writer encodes fields onto an underlying stream. The first error is
// kept in Err and every later write is a no-op.
type Writer struct {
	w   io.Writer
	N   int64
	Err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w: w,
	}
}

func (w *Writer) Write(b []byte) (int, error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err := w.w.Write(b)
	w.N += int64(n)
	w.Err = err
	return n, err
}

func (w *Writer) Byte(b byte) {
	w.Write([]byte{b})
}

func (w *Writer) Uvarint(n uint64) {
	buf := make([]byte, binary.MaxVarintLen64)
	w.Write(buf[:binary.PutUvarint(buf, n)])
}

// Uint64 writes n as eight big-endian bytes.
func (w *Writer) Uint64(n uint64) {
	w.Write(Uint64BE(n))
}

func (w *Writer) VarBytes(b []byte) {
	w.Uvarint(uint64(len(b)))
	w.Write(b)
}

func (w *Writer) VarString(s string) {
	w.VarBytes([]byte(s))
}

// Uint64BE encodes n the way the ledger's itob does.
func Uint64BE(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
