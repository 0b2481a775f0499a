package loaders

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
)

func fakeSPIRV(order binary.AppendByteOrder) []byte {
	words := []uint32{spirvMagic, 0x00010000, 0, 8, 0, 0xdeadbeef}
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		b = order.AppendUint32(b, w)
	}
	return b
}

func TestBytesToBytecode(t *testing.T) {
	for _, order := range []binary.AppendByteOrder{binary.LittleEndian, binary.BigEndian} {
		code, err := bytesToBytecode(fakeSPIRV(order))
		if err != nil {
			t.Fatalf("%v: %v", order, err)
		}
		if code[0] != spirvMagic || code[5] != 0xdeadbeef {
			t.Fatalf("%v: words decoded wrong: %x", order, code)
		}
	}

	if _, err := bytesToBytecode([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidSPIRV) {
		t.Fatalf("short input: %v", err)
	}
	if _, err := bytesToBytecode(make([]byte, 24)); !errors.Is(err, ErrInvalidSPIRV) {
		t.Fatalf("zero magic: %v", err)
	}
}

func TestShaderNameAndStage(t *testing.T) {
	tests := []struct {
		path    string
		name    string
		stage   metadata.ShaderStage
		wantErr bool
	}{
		{"assets/shaders/triangle.vert.spv", "triangle", metadata.ShaderStageVertex, false},
		{"triangle.frag.spv", "triangle", metadata.ShaderStageFragment, false},
		{"triangle.spv", "", 0, true},
		{"triangle.geom.spv", "", 0, true},
	}
	for _, tt := range tests {
		name, stage, err := ShaderNameAndStage(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v", tt.path, err)
			continue
		}
		if !tt.wantErr && (name != tt.name || stage != tt.stage) {
			t.Errorf("%s: got %s/%v", tt.path, name, stage)
		}
	}
}

func TestShaderLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triangle.frag.spv")
	if err := os.WriteFile(path, fakeSPIRV(binary.LittleEndian), 0o644); err != nil {
		t.Fatal(err)
	}

	sl := &ShaderLoader{}
	res, err := sl.Load(path, metadata.ResourceTypeShader, nil)
	if err != nil {
		t.Fatal(err)
	}
	data, ok := res.Data.(*metadata.ShaderModuleData)
	if !ok {
		t.Fatalf("unexpected data %T", res.Data)
	}
	if res.Name != "triangle" || data.Stage != metadata.ShaderStageFragment || len(data.Code) != 6 {
		t.Fatalf("unexpected resource %+v", res)
	}
	if _, err := sl.Load(filepath.Join(dir, "missing.vert.spv"), metadata.ResourceTypeShader, nil); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestBinaryLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	bl := &BinaryLoader{}
	res, err := bl.Load(path, metadata.ResourceTypeBinary, map[string]string{"name": "blob"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "blob" || res.DataSize != 3 {
		t.Fatalf("unexpected resource %+v", res)
	}
	_ = bl.Unload(res)
	if res.Data != nil {
		t.Fatal("unload should drop the data")
	}
}
