package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Envelope layout (little-endian):
//
//	magic        [4]byte  "FPM1"
//	version      uint16
//	codec        uint16 length + bytes
//	compression  uint16 length + bytes
//	payloadLen   uint64
//	payload      payloadLen bytes (compressed per the compression name)
//	checksum     uint32 CRC32-IEEE over everything above

// Supported compression names recorded in the envelope.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
	CompressionLZ4  = "lz4"
)

var magic = [4]byte{'F', 'P', 'M', '1'}

// formatVersion is bumped on incompatible envelope layout changes.
const formatVersion uint16 = 1

// maxPayloadSize bounds the payload length read from an envelope header.
// The length field is read before the checksum can be verified, so a
// corrupted or hostile header must not be able to drive the allocation.
// Model documents are fitted parameters, far below this.
const maxPayloadSize = 1 << 30 // 1 GiB

// ErrPayloadTooLarge indicates an envelope header declaring a payload above
// maxPayloadSize, which means corruption rather than a real model document.
type ErrPayloadTooLarge struct {
	Size uint64
}

func (e *ErrPayloadTooLarge) Error() string {
	return fmt.Sprintf("persistence: declared payload size %d exceeds limit %d", e.Size, int64(maxPayloadSize))
}

var (
	// ErrBadMagic indicates data that is not a model file.
	ErrBadMagic = errors.New("persistence: bad magic, not a model file")

	// ErrChecksum indicates a corrupted model file.
	ErrChecksum = errors.New("persistence: checksum mismatch")
)

// ErrUnsupportedVersion indicates a model file written by an incompatible
// format version.
type ErrUnsupportedVersion struct {
	Version uint16
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("persistence: unsupported format version %d", e.Version)
}

// WriteEnvelope writes payload to w wrapped in the model envelope.
// codecName records which codec produced the payload; compression selects
// how the payload is stored ("" means CompressionNone).
func WriteEnvelope(w io.Writer, codecName, compression string, payload []byte) error {
	if compression == "" {
		compression = CompressionNone
	}

	stored, err := compress(compression, payload)
	if err != nil {
		return err
	}
	if uint64(len(stored)) > maxPayloadSize {
		return &ErrPayloadTooLarge{Size: uint64(len(stored))}
	}

	cw := NewChecksumWriter(w)
	if _, err := cw.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(cw, binary.LittleEndian, formatVersion); err != nil {
		return err
	}
	if err := writeString(cw, codecName); err != nil {
		return err
	}
	if err := writeString(cw, compression); err != nil {
		return err
	}
	if err := binary.Write(cw, binary.LittleEndian, uint64(len(stored))); err != nil {
		return err
	}
	if _, err := cw.Write(stored); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, cw.Sum())
}

// ReadEnvelope reads a model envelope from r, verifies its checksum and
// returns the decompressed payload plus the recorded codec name.
func ReadEnvelope(r io.Reader) (payload []byte, codecName string, err error) {
	cr := NewChecksumReader(r)

	var m [4]byte
	if _, err := io.ReadFull(cr, m[:]); err != nil {
		return nil, "", err
	}
	if m != magic {
		return nil, "", ErrBadMagic
	}

	var version uint16
	if err := binary.Read(cr, binary.LittleEndian, &version); err != nil {
		return nil, "", err
	}
	if version != formatVersion {
		return nil, "", &ErrUnsupportedVersion{Version: version}
	}

	codecName, err = readString(cr)
	if err != nil {
		return nil, "", err
	}
	compression, err := readString(cr)
	if err != nil {
		return nil, "", err
	}

	var payloadLen uint64
	if err := binary.Read(cr, binary.LittleEndian, &payloadLen); err != nil {
		return nil, "", err
	}
	if payloadLen > maxPayloadSize {
		return nil, "", &ErrPayloadTooLarge{Size: payloadLen}
	}
	stored := make([]byte, payloadLen)
	if _, err := io.ReadFull(cr, stored); err != nil {
		return nil, "", err
	}

	want := cr.Sum()
	var got uint32
	if err := binary.Read(r, binary.LittleEndian, &got); err != nil {
		return nil, "", err
	}
	if got != want {
		return nil, "", ErrChecksum
	}

	payload, err = decompress(compression, stored)
	if err != nil {
		return nil, "", err
	}
	return payload, codecName, nil
}

func compress(name string, payload []byte) ([]byte, error) {
	switch name {
	case CompressionNone:
		return payload, nil

	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer func() { _ = enc.Close() }()
		return enc.EncodeAll(payload, nil), nil

	case CompressionLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(payload); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("persistence: unknown compression %q", name)
	}
}

func decompress(name string, stored []byte) ([]byte, error) {
	switch name {
	case CompressionNone:
		return stored, nil

	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(stored, nil)

	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(stored)))

	default:
		return nil, fmt.Errorf("persistence: unknown compression %q", name)
	}
}

func writeString(w io.Writer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("persistence: string too long: %d", len(s))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
