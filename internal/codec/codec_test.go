package codec

import "testing"

func TestChunkSize_Thresholds(t *testing.T) {
	if got := ChunkSize(1000); got != largeChunkSize {
		t.Errorf("expected large chunk size below threshold, got %d", got)
	}
	if got := ChunkSize(1_000_001); got != smallChunkSize {
		t.Errorf("expected small chunk size above threshold, got %d", got)
	}
	if got := ChunkSize(1_000_000); got != largeChunkSize {
		t.Errorf("expected large chunk size at exact threshold, got %d", got)
	}
}

func TestChunk_SplitsByThreshold(t *testing.T) {
	tuples := make([]Tuple, 250_001)
	for i := range tuples {
		tuples[i] = Tuple{WordID: uint32(i + 1)}
	}
	chunks := Chunk(tuples)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks (100000, 100000, 50001), got %d", len(chunks))
	}
	if len(chunks[0]) != largeChunkSize || len(chunks[2]) != 50_001 {
		t.Errorf("unexpected chunk sizes: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestEncodeDecodeTuples_RoundTrip(t *testing.T) {
	tuples := []Tuple{
		{WordID: 1, PunctBeforeID: 0, PunctAfterID: 2, SpacingID: 3},
		{WordID: 4},
		{WordID: 5, PunctBeforeID: 6, PunctAfterID: 7, SpacingID: 8},
	}
	encoded := EncodeTuples(tuples)
	decoded, err := DecodeTuples(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != len(tuples) {
		t.Fatalf("expected %d tuples, got %d", len(tuples), len(decoded))
	}
	for i := range tuples {
		if decoded[i] != tuples[i] {
			t.Errorf("tuple %d mismatch: got %+v, want %+v", i, decoded[i], tuples[i])
		}
	}
}

func TestCompressDecompressTuples_RoundTrip(t *testing.T) {
	tuples := []Tuple{{WordID: 1}, {WordID: 2, PunctAfterID: 9}}
	blob, err := CompressTuples(tuples)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	decoded, err := DecompressTuples(blob)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if len(decoded) != 2 || decoded[0].WordID != 1 || decoded[1].PunctAfterID != 9 {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

func TestCompressWordIDs_RoundTrip(t *testing.T) {
	ids := []uint32{10, 20, 30}
	blob, err := CompressWordIDs(ids)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	decoded, err := DecompressWordIDs(blob)
	if err != nil {
		t.Fatalf("decompress failed: %v", err)
	}
	if len(decoded) != 3 || decoded[1] != 20 {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}
