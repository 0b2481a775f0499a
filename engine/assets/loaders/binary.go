package loaders

import (
	"os"
	"path/filepath"

	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
)

type BinaryLoader struct{}

func (bl *BinaryLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	name := filepath.Base(path)
	if p, ok := params.(map[string]string); ok && p["name"] != "" {
		name = p["name"]
	}

	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		Type:     metadata.ResourceTypeBinary,
		DataSize: uint64(len(buf)),
		Data:     buf,
	}, nil
}

func (bl *BinaryLoader) Unload(res *metadata.Resource) error {
	if res != nil {
		res.Data = nil
		res.DataSize = 0
	}
	return nil
}
