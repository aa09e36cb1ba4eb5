package codec

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// layoutWriter appends little-endian fields and keeps the first error.
type layoutWriter struct {
	buf *bytes.Buffer
	enc *bin.Encoder
	err error
}

func newLayoutWriter(size int) *layoutWriter {
	buf := bytes.NewBuffer(make([]byte, 0, size))
	return &layoutWriter{buf: buf, enc: bin.NewBorshEncoder(buf)}
}

func (w *layoutWriter) u8(v uint8) {
	if w.err == nil {
		w.err = w.enc.WriteUint8(v)
	}
}

func (w *layoutWriter) u16(v uint16) {
	if w.err == nil {
		w.err = w.enc.WriteUint16(v, bin.LE)
	}
}

func (w *layoutWriter) u32(v uint32) {
	if w.err == nil {
		w.err = w.enc.WriteUint32(v, bin.LE)
	}
}

func (w *layoutWriter) u64(v uint64) {
	if w.err == nil {
		w.err = w.enc.WriteUint64(v, bin.LE)
	}
}

func (w *layoutWriter) raw(b []byte) {
	if w.err == nil {
		w.err = w.enc.WriteBytes(b, false)
	}
}

func (w *layoutWriter) key(k solana.PublicKey) {
	w.raw(k[:])
}

// optionKey writes a u32-tagged optional key.
func (w *layoutWriter) optionKey(k *solana.PublicKey) {
	if k == nil {
		w.u32(0)
		w.key(solana.PublicKey{})
		return
	}
	w.u32(1)
	w.key(*k)
}

func (w *layoutWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// layoutReader reads little-endian fields and keeps the first error.
type layoutReader struct {
	dec *bin.Decoder
	err error
}

func newLayoutReader(data []byte) *layoutReader {
	return &layoutReader{dec: bin.NewBorshDecoder(data)}
}

func (r *layoutReader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	var v uint8
	v, r.err = r.dec.ReadUint8()
	return v
}

func (r *layoutReader) u16() uint16 {
	if r.err != nil {
		return 0
	}
	var v uint16
	v, r.err = r.dec.ReadUint16(bin.LE)
	return v
}

func (r *layoutReader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	var v uint32
	v, r.err = r.dec.ReadUint32(bin.LE)
	return v
}

func (r *layoutReader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	var v uint64
	v, r.err = r.dec.ReadUint64(bin.LE)
	return v
}

func (r *layoutReader) key() solana.PublicKey {
	var k solana.PublicKey
	if r.err != nil {
		return k
	}
	b, err := r.dec.ReadNBytes(len(k))
	if err != nil {
		r.err = err
		return k
	}
	copy(k[:], b)
	return k
}

func (r *layoutReader) optionKey() *solana.PublicKey {
	tag := r.u32()
	k := r.key()
	if r.err != nil {
		return nil
	}
	switch tag {
	case 0:
		return nil
	case 1:
		return &k
	default:
		r.err = fmt.Errorf("invalid option tag %d", tag)
		return nil
	}
}

func (r *layoutReader) optionU64() *uint64 {
	tag := r.u32()
	v := r.u64()
	if r.err != nil || tag == 0 {
		return nil
	}
	if tag != 1 {
		r.err = fmt.Errorf("invalid option tag %d", tag)
		return nil
	}
	return &v
}
