package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// zstdSuffix marks a compressed JSONL file.
const zstdSuffix = ".zst"

// writeJSONL writes one record per line. A path ending in .zst is zstd
// compressed.
func writeJSONL(path string, records []Record) error {
	return replaceAtomically(path, func(f *os.File) error {
		var w io.Writer = f
		var enc *zstd.Encoder
		if strings.HasSuffix(path, zstdSuffix) {
			var err error
			enc, err = zstd.NewWriter(f)
			if err != nil {
				return fmt.Errorf("creating compressor: %w", err)
			}
			w = enc
		}

		bw := bufio.NewWriter(w)
		for _, rec := range records {
			line, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshaling record: %w", err)
			}
			if _, err := bw.Write(line); err != nil {
				return fmt.Errorf("writing record: %w", err)
			}
			if err := bw.WriteByte('\n'); err != nil {
				return fmt.Errorf("writing newline: %w", err)
			}
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("flushing buffer: %w", err)
		}
		if enc != nil {
			if err := enc.Close(); err != nil {
				return fmt.Errorf("closing compressor: %w", err)
			}
		}
		return nil
	})
}

// ReadJSONL reads the records of a JSONL snapshot. Empty and malformed lines
// are skipped. A path ending in .zst is decompressed.
func ReadJSONL(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, zstdSuffix) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("creating decompressor: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Table == "" || rec.Entry == "" {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}
