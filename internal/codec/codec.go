// Package codec implements the portable, length-prefixed token-tuple stream
// format and the chunked-deflate compression used to persist Content and
// Title blobs, per the design note that replaces language-specific
// pickling with a format any implementation can read. Chunk-size
// thresholds are grounded on the original compression processor's exact
// constants.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// Tuple is (word_id, punct_before_id?, punct_after_id?, spacing_id?).
// A zero ID means "absent" — word IDs are assigned starting at 1.
type Tuple struct {
	WordID        uint32
	PunctBeforeID uint32
	PunctAfterID  uint32
	SpacingID     uint32
}

const (
	largeChunkSize = 100_000
	smallChunkSize = 5_000
	largeThreshold = 1_000_000
)

// ChunkSize picks the tuple-count threshold for a given total tuple count.
func ChunkSize(total int) int {
	if total > largeThreshold {
		return smallChunkSize
	}
	return largeChunkSize
}

// Chunk splits tuples into chunks no larger than ChunkSize(len(tuples)).
func Chunk(tuples []Tuple) [][]Tuple {
	if len(tuples) == 0 {
		return nil
	}
	size := ChunkSize(len(tuples))
	var chunks [][]Tuple
	for i := 0; i < len(tuples); i += size {
		end := i + size
		if end > len(tuples) {
			end = len(tuples)
		}
		chunks = append(chunks, tuples[i:end])
	}
	return chunks
}

// EncodeTuples serializes a tuple slice into a deterministic binary stream:
// a varint count, followed by each tuple as four varints (0 = absent for
// the three optional fields).
func EncodeTuples(tuples []Tuple) []byte {
	buf := make([]byte, 0, len(tuples)*8+10)
	var scratch [binary.MaxVarintLen64]byte

	putUvarint := func(v uint64) {
		n := binary.PutUvarint(scratch[:], v)
		buf = append(buf, scratch[:n]...)
	}

	putUvarint(uint64(len(tuples)))
	for _, t := range tuples {
		putUvarint(uint64(t.WordID))
		putUvarint(uint64(t.PunctBeforeID))
		putUvarint(uint64(t.PunctAfterID))
		putUvarint(uint64(t.SpacingID))
	}
	return buf
}

// DecodeTuples is the inverse of EncodeTuples.
func DecodeTuples(data []byte) ([]Tuple, error) {
	r := bytes.NewReader(data)
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("read tuple count: %w", err)
	}
	tuples := make([]Tuple, 0, count)
	for i := uint64(0); i < count; i++ {
		word, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("read word id at tuple %d: %w", i, err)
		}
		before, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("read punct_before id at tuple %d: %w", i, err)
		}
		after, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("read punct_after id at tuple %d: %w", i, err)
		}
		spacing, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("read spacing id at tuple %d: %w", i, err)
		}
		tuples = append(tuples, Tuple{
			WordID:        uint32(word),
			PunctBeforeID: uint32(before),
			PunctAfterID:  uint32(after),
			SpacingID:     uint32(spacing),
		})
	}
	return tuples, nil
}

// Compress deflates arbitrary bytes (the generic codec the storage
// interface calls for).
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("new deflate writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("deflate write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("deflate close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates bytes produced by Compress.
func Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return out, nil
}

// CompressTuples encodes then compresses a tuple chunk in one step.
func CompressTuples(tuples []Tuple) ([]byte, error) {
	return Compress(EncodeTuples(tuples))
}

// DecompressTuples is the inverse of CompressTuples.
func DecompressTuples(blob []byte) ([]Tuple, error) {
	raw, err := Decompress(blob)
	if err != nil {
		return nil, err
	}
	return DecodeTuples(raw)
}

// EncodeWordIDs serializes a plain word-ID list (used for Title blobs,
// which carry no punctuation metadata).
func EncodeWordIDs(ids []uint32) []byte {
	buf := make([]byte, 0, len(ids)*4+10)
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], uint64(len(ids)))
	buf = append(buf, scratch[:n]...)
	for _, id := range ids {
		n := binary.PutUvarint(scratch[:], uint64(id))
		buf = append(buf, scratch[:n]...)
	}
	return buf
}

// DecodeWordIDs is the inverse of EncodeWordIDs.
func DecodeWordIDs(data []byte) ([]uint32, error) {
	r := bytes.NewReader(data)
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, fmt.Errorf("read word id count: %w", err)
	}
	ids := make([]uint32, 0, count)
	for i := uint64(0); i < count; i++ {
		id, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, fmt.Errorf("read word id %d: %w", i, err)
		}
		ids = append(ids, uint32(id))
	}
	return ids, nil
}

// CompressWordIDs encodes then compresses a word-ID list in one step.
func CompressWordIDs(ids []uint32) ([]byte, error) {
	return Compress(EncodeWordIDs(ids))
}

// DecompressWordIDs is the inverse of CompressWordIDs.
func DecompressWordIDs(blob []byte) ([]uint32, error) {
	raw, err := Decompress(blob)
	if err != nil {
		return nil, err
	}
	return DecodeWordIDs(raw)
}
