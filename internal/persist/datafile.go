// Package persist implements the versioned binary stream primitives used by
// every on-disk format in the runtime (settings.dat, check_<serial>.dat,
// media.dat, archive bundles): a u32 version header followed by fields read
// in the order established by the writer, with version-gated readers
// supplying defaults for fields added after a given version (spec §6).
package persist

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/viewtouch/posk/internal/poserr"
)

// OutputDataFile writes a versioned binary stream. The version is written
// once, in the constructor, and every subsequent Write call is in strict
// field order — callers never seek.
type OutputDataFile struct {
	w       *bufio.Writer
	version int32
	err     error
}

// NewOutputDataFile wraps w and immediately writes the version header.
func NewOutputDataFile(w io.Writer, version int32) (*OutputDataFile, error) {
	f := &OutputDataFile{w: bufio.NewWriter(w), version: version}
	if err := binary.Write(f.w, binary.BigEndian, version); err != nil {
		return nil, fmt.Errorf("%w: write version header: %v", poserr.ErrIO, err)
	}
	return f, nil
}

// Version reports the version this stream was opened with.
func (f *OutputDataFile) Version() int32 { return f.version }

func (f *OutputDataFile) fail(err error) {
	if f.err == nil && err != nil {
		f.err = fmt.Errorf("%w: %v", poserr.ErrIO, err)
	}
}

// Err returns the first write error encountered, if any.
func (f *OutputDataFile) Err() error { return f.err }

func (f *OutputDataFile) WriteInt8(v int8)   { f.fail(binary.Write(f.w, binary.BigEndian, v)) }
func (f *OutputDataFile) WriteInt16(v int16) { f.fail(binary.Write(f.w, binary.BigEndian, v)) }
func (f *OutputDataFile) WriteInt32(v int32) { f.fail(binary.Write(f.w, binary.BigEndian, v)) }
func (f *OutputDataFile) WriteInt64(v int64) { f.fail(binary.Write(f.w, binary.BigEndian, v)) }
func (f *OutputDataFile) WriteFlt(v float64) { f.fail(binary.Write(f.w, binary.BigEndian, v)) }
func (f *OutputDataFile) WriteByte(v byte) {
	f.fail(f.w.WriteByte(v))
}

// WriteStr writes a length-prefixed UTF-8 string.
func (f *OutputDataFile) WriteStr(s string) {
	f.fail(binary.Write(f.w, binary.BigEndian, int32(len(s))))
	if f.err == nil {
		_, err := f.w.WriteString(s)
		f.fail(err)
	}
}

// Flush flushes the underlying buffer; callers must call this before
// relying on the bytes being durable.
func (f *OutputDataFile) Flush() error {
	if f.err != nil {
		return f.err
	}
	if err := f.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %v", poserr.ErrIO, err)
	}
	return nil
}

// InputDataFile reads a versioned binary stream written by OutputDataFile.
type InputDataFile struct {
	r       *bufio.Reader
	version int32
	err     error
}

// NewInputDataFile wraps r and reads the version header.
func NewInputDataFile(r io.Reader) (*InputDataFile, error) {
	f := &InputDataFile{r: bufio.NewReader(r)}
	if err := binary.Read(f.r, binary.BigEndian, &f.version); err != nil {
		return nil, fmt.Errorf("%w: read version header: %v", poserr.ErrIO, err)
	}
	return f, nil
}

// Version reports the version this stream declares.
func (f *InputDataFile) Version() int32 { return f.version }

func (f *InputDataFile) fail(err error) {
	if f.err == nil && err != nil {
		f.err = fmt.Errorf("%w: %v", poserr.ErrIO, err)
	}
}

// Err returns the first read error encountered, if any.
func (f *InputDataFile) Err() error { return f.err }

func (f *InputDataFile) ReadInt8() (v int8)   { f.fail(binary.Read(f.r, binary.BigEndian, &v)); return }
func (f *InputDataFile) ReadInt16() (v int16) { f.fail(binary.Read(f.r, binary.BigEndian, &v)); return }
func (f *InputDataFile) ReadInt32() (v int32) { f.fail(binary.Read(f.r, binary.BigEndian, &v)); return }
func (f *InputDataFile) ReadInt64() (v int64) { f.fail(binary.Read(f.r, binary.BigEndian, &v)); return }
func (f *InputDataFile) ReadFlt() (v float64) { f.fail(binary.Read(f.r, binary.BigEndian, &v)); return }

func (f *InputDataFile) ReadByte() byte {
	b, err := f.r.ReadByte()
	f.fail(err)
	return b
}

// ReadStr reads a length-prefixed UTF-8 string.
func (f *InputDataFile) ReadStr() string {
	var n int32
	f.fail(binary.Read(f.r, binary.BigEndian, &n))
	if f.err != nil || n < 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f.r, buf); err != nil {
		f.fail(err)
		return ""
	}
	return string(buf)
}

// AtLeast reports whether the stream's version gates in a field added at
// minVersion. Field readers in settings/checkmodel call this before
// reading a field that did not exist in earlier formats.
func (f *InputDataFile) AtLeast(minVersion int32) bool {
	return f.version >= minVersion
}
