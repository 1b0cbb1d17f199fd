package engine

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// EncodeSnapshot writes s as indented JSON, zstd-compressed when compress
// is set.
func EncodeSnapshot(w io.Writer, s Snapshot, compress bool) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("engine: marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	if !compress {
		_, err = w.Write(data)
		return err
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("engine: create zstd writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("engine: write snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("engine: close zstd writer: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot, detecting zstd compression from the
// stream header. Unknown fields are rejected.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))

	var src io.Reader = br
	if bytes.Equal(head, zstdMagic) {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return s, fmt.Errorf("engine: create zstd reader: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	dec := json.NewDecoder(src)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotMalformed, err)
	}
	return s, nil
}

// WriteSnapshotFile saves s to path. Paths ending in .zst are compressed.
func WriteSnapshotFile(path string, s Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("engine: cannot create snapshot file: %w", err)
	}
	if err := EncodeSnapshot(f, s, strings.HasSuffix(path, ".zst")); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadSnapshotFile loads a snapshot from path.
func ReadSnapshotFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("engine: cannot open snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeSnapshot(f)
}

// SnapshotSchema returns the JSON Schema of the snapshot record.
func SnapshotSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := reflector.Reflect(new(Snapshot))
	schema.Title = "Well Escape debug snapshot"
	schema.Description = fmt.Sprintf("Complete mutable simulation state, version %d", SnapshotVersion)
	return schema
}
