package metadata

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// gzipMagic is the two-byte header of a gzip stream
var gzipMagic = []byte{0x1f, 0x8b}

// Serialize converts an artifact to JSON format.
// The output is deterministic - same input will always produce the same output.
// Artifact digests and the build cache depend on this.
func Serialize(artifact *Artifact) ([]byte, error) {
	if artifact == nil {
		return nil, fmt.Errorf("artifact cannot be nil")
	}

	// Map keys (generics, annotations) are emitted sorted by encoding/json
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize artifact: %w", err)
	}

	return data, nil
}

// Compress compresses data using gzip compression.
// Uses best compression level since compression happens at build time.
func Compress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}

	if len(data) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close() // Ignore close error when write failed
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses gzip-compressed data
func Decompress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}

	if len(data) == 0 {
		return []byte{}, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() {
		_ = reader.Close() // Ignore close error - we already have the data
	}()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}

	return decompressed, nil
}

// WriteToFile writes uncompressed JSON for an artifact to a file
func WriteToFile(artifact *Artifact, outputPath string) error {
	if artifact == nil {
		return fmt.Errorf("artifact cannot be nil")
	}

	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	data, err := Serialize(artifact)
	if err != nil {
		return err
	}

	return writeFile(outputPath, data)
}

// WriteCompressedToFile writes a gzip-compressed artifact to a file
func WriteCompressedToFile(artifact *Artifact, outputPath string) error {
	if artifact == nil {
		return fmt.Errorf("artifact cannot be nil")
	}

	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	data, err := Serialize(artifact)
	if err != nil {
		return err
	}

	compressed, err := Compress(data)
	if err != nil {
		return fmt.Errorf("failed to compress artifact: %w", err)
	}

	return writeFile(outputPath, compressed)
}

// ReadFile loads an artifact written by WriteToFile or WriteCompressedToFile
func ReadFile(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	if bytes.HasPrefix(data, gzipMagic) {
		data, err = Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
		}
	}

	a, err := FromJSON(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	return a, nil
}

func writeFile(outputPath string, data []byte) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact to %s: %w", outputPath, err)
	}

	return nil
}
