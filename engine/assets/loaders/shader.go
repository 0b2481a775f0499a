package loaders

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
)

const spirvMagic uint32 = 0x07230203

var ErrInvalidSPIRV = errors.New("invalid SPIR-V module")

// ShaderLoader reads a compiled SPIR-V module. The stage is taken from the
// file name: <name>.<vert|frag>.spv
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading shader %s", path)
	}
	code, err := bytesToBytecode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", path)
	}
	name, stage, err := ShaderNameAndStage(path)
	if err != nil {
		return nil, err
	}

	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		Type:     metadata.ResourceTypeShader,
		DataSize: uint64(len(data)),
		Data: &metadata.ShaderModuleData{
			Stage: stage,
			Code:  code,
			Bytes: data,
		},
	}, nil
}

func (sl *ShaderLoader) Unload(res *metadata.Resource) error {
	if res != nil {
		res.Data = nil
	}
	return nil
}

// ShaderNameAndStage splits "dir/triangle.vert.spv" into "triangle" and the
// vertex stage.
func ShaderNameAndStage(path string) (string, metadata.ShaderStage, error) {
	base := strings.TrimSuffix(filepath.Base(path), ".spv")
	ext := filepath.Ext(base)
	if ext == "" {
		return "", 0, errors.Newf("shader file %s has no stage suffix", path)
	}
	stage, err := metadata.ShaderStageFromString(strings.TrimPrefix(ext, "."))
	if err != nil {
		return "", 0, err
	}
	return strings.TrimSuffix(base, ext), stage, nil
}

// bytesToBytecode converts a SPIR-V blob into host order words. The magic
// number decides the byte order of the file.
func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) < 20 || len(b)%4 != 0 {
		return nil, errors.Wrapf(ErrInvalidSPIRV, "size %d", len(b))
	}
	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(b) == spirvMagic:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(b) == spirvMagic:
		order = binary.BigEndian
	default:
		return nil, errors.Wrap(ErrInvalidSPIRV, "bad magic number")
	}

	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = order.Uint32(b[i*4:])
	}
	return byteCode, nil
}
