package flat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"os"
	"path/filepath"
)

// Snapshot format, little-endian throughout:
//
//	magic "PVEC" | version u8 | dim u32 | count u32
//	count × ( idLen u16 | id bytes | dim × float32 )
//	crc32(IEEE) u32 over everything before it
//
// The checksum makes truncation and corruption detectable so restore
// can fall back to an empty index instead of loading garbage.
const (
	snapshotMagic   = "PVEC"
	snapshotVersion = 1
)

// encodeSnapshot serialises the index to the snapshot wire format.
func encodeSnapshot(ix *Index) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(snapshotMagic)
	buf.WriteByte(snapshotVersion)

	if err := binary.Write(&buf, binary.LittleEndian, uint32(ix.dim)); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(ix.ids))); err != nil {
		return nil, err
	}

	for i, id := range ix.ids {
		if len(id) > math.MaxUint16 {
			return nil, fmt.Errorf("flat: chunk id too long: %d bytes", len(id))
		}
		if err := binary.Write(&buf, binary.LittleEndian, uint16(len(id))); err != nil {
			return nil, err
		}
		buf.WriteString(id)
		for _, v := range ix.vecs[i] {
			if err := binary.Write(&buf, binary.LittleEndian, math.Float32bits(v)); err != nil {
				return nil, err
			}
		}
	}

	sum := crc32.ChecksumIEEE(buf.Bytes())
	if err := binary.Write(&buf, binary.LittleEndian, sum); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeSnapshot parses the snapshot wire format into a fresh index.
func decodeSnapshot(data []byte) (*Index, error) {
	const headerLen = 4 + 1 + 4 + 4
	if len(data) < headerLen+4 {
		return nil, fmt.Errorf("flat: snapshot too short: %d bytes", len(data))
	}

	payload, footer := data[:len(data)-4], data[len(data)-4:]
	if crc32.ChecksumIEEE(payload) != binary.LittleEndian.Uint32(footer) {
		return nil, fmt.Errorf("flat: snapshot checksum mismatch")
	}
	if string(payload[:4]) != snapshotMagic {
		return nil, fmt.Errorf("flat: bad snapshot magic")
	}
	if payload[4] != snapshotVersion {
		return nil, fmt.Errorf("flat: unsupported snapshot version %d", payload[4])
	}

	dim := int(binary.LittleEndian.Uint32(payload[5:9]))
	count := int(binary.LittleEndian.Uint32(payload[9:13]))

	ix := NewIndex()
	ix.dim = dim

	off := headerLen
	for i := 0; i < count; i++ {
		if off+2 > len(payload) {
			return nil, fmt.Errorf("flat: snapshot truncated at entry %d", i)
		}
		idLen := int(binary.LittleEndian.Uint16(payload[off:]))
		off += 2
		if off+idLen+dim*4 > len(payload) {
			return nil, fmt.Errorf("flat: snapshot truncated at entry %d", i)
		}
		id := string(payload[off : off+idLen])
		off += idLen

		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(payload[off:]))
			off += 4
		}
		ix.ids = append(ix.ids, id)
		ix.vecs = append(ix.vecs, vec)
	}

	if off != len(payload) {
		return nil, fmt.Errorf("flat: %d trailing bytes in snapshot", len(payload)-off)
	}
	return ix, nil
}

// writeSnapshot persists the index atomically: the encoded snapshot is
// written to a temp file in the same directory and renamed over the
// target, so a crash mid-write leaves the previous snapshot intact.
func writeSnapshot(path string, ix *Index) error {
	data, err := encodeSnapshot(ix)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("flat: creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flat: writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flat: syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("flat: closing snapshot: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("flat: replacing snapshot: %w", err)
	}
	return nil
}

// readSnapshot loads a snapshot file. Callers treat any error as
// "start from an empty index".
func readSnapshot(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(data)
}
