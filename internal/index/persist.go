package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// Binary persistence format (little-endian throughout). No third-party
// binary codec appears anywhere in the example pack for this concern —
// this layout is hand-rolled stdlib encoding/binary plus hash/crc32, the
// justified exception documented in DESIGN.md: the spec requires a
// documented, versioned, checksummed layout rather than a runtime-native
// serialization blob (gob/json would not satisfy "documented binary
// layout" with an explicit checksum trailer).
//
//	magic      [4]byte  "SIDX"
//	version    uint32   format version, currently 1
//	phase      uint32   Phase at save time
//	docCount   uint32
//	docLenN    uint32         doc_lengths entry count
//	  (docID uint32, length uint32) * docLenN
//	dfN        uint32         df entry count
//	  (termLen uint16, term []byte, count uint32) * dfN
//	termN      uint32         postings term count
//	  (termLen uint16, term []byte, entryCount uint32,
//	     (docID uint32, score float64) * entryCount) * termN
//	checksum   uint32   crc32.ChecksumIEEE over every preceding byte

var magic = [4]byte{'S', 'I', 'D', 'X'}

const formatVersion = 1

// Save serializes the index's complete state to path, overwriting any
// existing file. Save is valid in any phase.
func (idx *Index) Save(path string) error {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	_, _ = w.Write(magic[:])
	_ = binary.Write(w, binary.LittleEndian, uint32(formatVersion))
	_ = binary.Write(w, binary.LittleEndian, uint32(idx.phase))
	_ = binary.Write(w, binary.LittleEndian, uint32(idx.docCount))

	_ = binary.Write(w, binary.LittleEndian, uint32(len(idx.docLengths)))
	for docID, length := range idx.docLengths {
		_ = binary.Write(w, binary.LittleEndian, uint32(docID))
		_ = binary.Write(w, binary.LittleEndian, uint32(length))
	}

	_ = binary.Write(w, binary.LittleEndian, uint32(len(idx.df)))
	for term, count := range idx.df {
		writeTerm(w, term)
		_ = binary.Write(w, binary.LittleEndian, uint32(count))
	}

	_ = binary.Write(w, binary.LittleEndian, uint32(len(idx.postings)))
	for term, postingsForTerm := range idx.postings {
		writeTerm(w, term)
		_ = binary.Write(w, binary.LittleEndian, uint32(len(postingsForTerm)))
		for docID, score := range postingsForTerm {
			_ = binary.Write(w, binary.LittleEndian, uint32(docID))
			_ = binary.Write(w, binary.LittleEndian, score)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("index: encoding for save: %w", err)
	}

	checksum := crc32.ChecksumIEEE(buf.Bytes())
	if err := binary.Write(&buf, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("index: appending checksum: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("index: writing %s: %w", path, err)
	}
	return nil
}

func writeTerm(w io.Writer, term string) {
	_ = binary.Write(w, binary.LittleEndian, uint16(len(term)))
	_, _ = w.Write([]byte(term))
}

// Load reads a saved index from path, verifying its checksum before
// replacing any in-memory state. A corrupt or unreadable file leaves the
// index completely unchanged, per spec.md §7's persistence failure rule.
// A successfully loaded index is always in PhaseFinalized: a file saved
// before Finalize is finalized as part of the load.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("index: reading %s: %w", path, err)
	}
	if len(data) < len(magic)+4 {
		return nil, fmt.Errorf("index: %s too short to be a valid index file", path)
	}

	body, trailer := data[:len(data)-4], data[len(data)-4:]
	wantChecksum := binary.LittleEndian.Uint32(trailer)
	if gotChecksum := crc32.ChecksumIEEE(body); gotChecksum != wantChecksum {
		return nil, fmt.Errorf("index: checksum mismatch in %s: corrupt file", path)
	}

	r := bytes.NewReader(body)
	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil || gotMagic != magic {
		return nil, fmt.Errorf("index: %s is not a recognized index file", path)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("index: reading version: %w", err)
	}
	if version != formatVersion {
		return nil, fmt.Errorf("index: unsupported format version %d", version)
	}

	idx := New()

	var phase, docCount uint32
	if err := binary.Read(r, binary.LittleEndian, &phase); err != nil {
		return nil, fmt.Errorf("index: reading phase: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &docCount); err != nil {
		return nil, fmt.Errorf("index: reading doc_count: %w", err)
	}
	idx.phase = Phase(phase)
	idx.docCount = int(docCount)

	var docLenN uint32
	if err := binary.Read(r, binary.LittleEndian, &docLenN); err != nil {
		return nil, fmt.Errorf("index: reading doc_lengths count: %w", err)
	}
	for i := uint32(0); i < docLenN; i++ {
		var docID, length uint32
		if err := binary.Read(r, binary.LittleEndian, &docID); err != nil {
			return nil, fmt.Errorf("index: reading doc_lengths entry: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return nil, fmt.Errorf("index: reading doc_lengths entry: %w", err)
		}
		idx.docLengths[int(docID)] = int(length)
	}

	var dfN uint32
	if err := binary.Read(r, binary.LittleEndian, &dfN); err != nil {
		return nil, fmt.Errorf("index: reading df count: %w", err)
	}
	for i := uint32(0); i < dfN; i++ {
		term, err := readTerm(r)
		if err != nil {
			return nil, fmt.Errorf("index: reading df entry: %w", err)
		}
		var count uint32
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("index: reading df entry: %w", err)
		}
		idx.df[term] = int(count)
	}

	var termN uint32
	if err := binary.Read(r, binary.LittleEndian, &termN); err != nil {
		return nil, fmt.Errorf("index: reading postings term count: %w", err)
	}
	for i := uint32(0); i < termN; i++ {
		term, err := readTerm(r)
		if err != nil {
			return nil, fmt.Errorf("index: reading postings term: %w", err)
		}
		var entryCount uint32
		if err := binary.Read(r, binary.LittleEndian, &entryCount); err != nil {
			return nil, fmt.Errorf("index: reading postings entry count: %w", err)
		}
		postingsForTerm := make(map[int]float64, entryCount)
		for j := uint32(0); j < entryCount; j++ {
			var docID uint32
			var score float64
			if err := binary.Read(r, binary.LittleEndian, &docID); err != nil {
				return nil, fmt.Errorf("index: reading posting: %w", err)
			}
			if err := binary.Read(r, binary.LittleEndian, &score); err != nil {
				return nil, fmt.Errorf("index: reading posting: %w", err)
			}
			postingsForTerm[int(docID)] = score
		}
		idx.postings[term] = postingsForTerm
	}

	if idx.phase != PhaseFinalized {
		if err := idx.Finalize(); err != nil {
			return nil, fmt.Errorf("index: finalizing loaded index: %w", err)
		}
	}
	return idx, nil
}

func readTerm(r io.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
