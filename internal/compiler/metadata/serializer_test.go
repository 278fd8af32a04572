package metadata

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conduit-lang/beanc/internal/compiler/typeref"
)

func sampleArtifact() *Artifact {
	optional := true
	str := typeref.Named("java.lang.String")
	return &Artifact{
		Version:      SchemaVersion,
		SourceHash:   "abc123",
		Definition:   "com.acme.$FooDefinition",
		BeanType:     "com.acme.Foo",
		ProvidedType: typeref.Named("com.acme.Foo"),
		Package:      "com.acme",
		SimpleName:   "Foo",
		Singleton:    true,
		Annotations: map[string]map[string]any{
			"javax.inject.Singleton": {},
			"io.beanc.Requires":      {"property": "foo.enabled"},
		},
		Constructor: &ConstructorMetadata{
			DeclaringType: typeref.Named("com.acme.Foo"),
			Parameters:    []ParameterMetadata{{Name: "name", Type: str}},
		},
		InjectionPoints: []InjectionPointMetadata{
			{
				Kind:          "field-value",
				DeclaringType: typeref.Named("com.acme.Foo"),
				Name:          "name",
				Type:          &str,
				Generics:      typeref.Generics{"V": str, "K": str},
				Optional:      &optional,
			},
		},
		ExecutableMethods: []ExecutableMethodMetadata{
			{
				Handle:            "com.acme.$FooDefinition$Exec0",
				Key:               "com.acme.Foo#run()",
				DeclaringType:     typeref.Named("com.acme.Foo"),
				Name:              "run",
				ReturnType:        typeref.Named("void"),
				GenericReturnType: typeref.Named("void"),
				Parameters:        []ParameterMetadata{},
			},
		},
	}
}

// TestSerialize_RoundTrip tests that serialization is reversible
func TestSerialize_RoundTrip(t *testing.T) {
	original := sampleArtifact()

	data, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if !json.Valid(data) {
		t.Fatal("Serialized data is not valid JSON")
	}

	restored, err := FromJSON(string(data))
	if err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if restored.Definition != original.Definition {
		t.Errorf("Definition mismatch: got %s, want %s", restored.Definition, original.Definition)
	}
	if !restored.ProvidedType.Equal(original.ProvidedType) {
		t.Errorf("ProvidedType mismatch: got %s, want %s", restored.ProvidedType, original.ProvidedType)
	}
	if len(restored.InjectionPoints) != 1 {
		t.Fatalf("InjectionPoints length mismatch: got %d, want 1", len(restored.InjectionPoints))
	}
	ip := restored.InjectionPoints[0]
	if ip.Optional == nil || !*ip.Optional {
		t.Error("Optional flag did not survive the round trip")
	}
	if !ip.Generics.Equal(original.InjectionPoints[0].Generics) {
		t.Errorf("Generics mismatch: got %v", ip.Generics)
	}

	if _, ok := restored.Handle("com.acme.$FooDefinition$Exec0"); !ok {
		t.Error("Executable handle not found after round trip")
	}
	if _, ok := restored.Handle("missing"); ok {
		t.Error("Unexpected handle found")
	}
}

// TestSerialize_Deterministic tests that serialization produces consistent output
func TestSerialize_Deterministic(t *testing.T) {
	data1, err := Serialize(sampleArtifact())
	if err != nil {
		t.Fatalf("First serialization failed: %v", err)
	}

	data2, err := Serialize(sampleArtifact())
	if err != nil {
		t.Fatalf("Second serialization failed: %v", err)
	}

	if !bytes.Equal(data1, data2) {
		t.Error("Serialization is not deterministic")
	}

	// generic keys are emitted sorted
	if bytes.Index(data1, []byte(`"K"`)) > bytes.Index(data1, []byte(`"V"`)) {
		t.Error("Generic keys are not sorted")
	}
}

// TestSerialize_NilArtifact tests error handling for nil artifacts
func TestSerialize_NilArtifact(t *testing.T) {
	_, err := Serialize(nil)
	if err == nil {
		t.Fatal("Expected error for nil artifact, got nil")
	}

	if !strings.Contains(err.Error(), "artifact cannot be nil") {
		t.Errorf("Expected 'artifact cannot be nil' error, got: %v", err)
	}
}

// TestToJSON_MethodKindsOmitOptional checks the optional flag is absent when nil
func TestToJSON_MethodKindsOmitOptional(t *testing.T) {
	a := &Artifact{
		InjectionPoints: []InjectionPointMetadata{{Kind: "post-construct", Name: "init"}},
	}
	out, err := a.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if strings.Contains(out, `"optional"`) {
		t.Errorf("post-construct point should not carry an optional flag:\n%s", out)
	}
}

// TestCompress_RoundTrip tests compression of serialized artifacts
func TestCompress_RoundTrip(t *testing.T) {
	original, err := Serialize(sampleArtifact())
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	compressed, err := Compress(original)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if !bytes.HasPrefix(compressed, gzipMagic) {
		t.Error("Compressed data does not start with the gzip header")
	}

	decompressed, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}

	if !bytes.Equal(original, decompressed) {
		t.Error("Decompressed data doesn't match original")
	}
}

// TestCompress_EdgeCases tests nil and empty inputs
func TestCompress_EdgeCases(t *testing.T) {
	if _, err := Compress(nil); err == nil {
		t.Error("Expected error compressing nil")
	}
	if _, err := Decompress(nil); err == nil {
		t.Error("Expected error decompressing nil")
	}

	out, err := Compress([]byte{})
	if err != nil || len(out) != 0 {
		t.Errorf("Expected empty output for empty input, got %v (%v)", out, err)
	}
	out, err = Decompress([]byte{})
	if err != nil || len(out) != 0 {
		t.Errorf("Expected empty output for empty input, got %v (%v)", out, err)
	}

	if _, err := Decompress([]byte("not gzip")); err == nil {
		t.Error("Expected error decompressing invalid data")
	}
}

// TestWriteAndReadFile tests plain and compressed artifact files
func TestWriteAndReadFile(t *testing.T) {
	dir := t.TempDir()
	artifact := sampleArtifact()

	plain := filepath.Join(dir, "nested", "foo.json")
	if err := WriteToFile(artifact, plain); err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}

	compressed := filepath.Join(dir, "foo.json.gz")
	if err := WriteCompressedToFile(artifact, compressed); err != nil {
		t.Fatalf("WriteCompressedToFile failed: %v", err)
	}

	plainInfo, err := os.Stat(plain)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	gzInfo, err := os.Stat(compressed)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if gzInfo.Size() >= plainInfo.Size() {
		t.Errorf("Compressed file (%d bytes) is not smaller than plain (%d bytes)", gzInfo.Size(), plainInfo.Size())
	}

	for _, path := range []string{plain, compressed} {
		got, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) failed: %v", path, err)
		}
		if got.Definition != artifact.Definition {
			t.Errorf("ReadFile(%s): definition %s, want %s", path, got.Definition, artifact.Definition)
		}
	}
}

// TestWriteToFile_Errors tests argument validation
func TestWriteToFile_Errors(t *testing.T) {
	if err := WriteToFile(nil, "x.json"); err == nil {
		t.Error("Expected error for nil artifact")
	}
	if err := WriteToFile(sampleArtifact(), ""); err == nil {
		t.Error("Expected error for empty path")
	}
	if err := WriteCompressedToFile(nil, "x.json.gz"); err == nil {
		t.Error("Expected error for nil artifact")
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error reading missing file")
	}
}
