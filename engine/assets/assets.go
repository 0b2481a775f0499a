package assets

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Lakasabasz/Vulkan-test/engine/assets/loaders"
	"github.com/Lakasabasz/Vulkan-test/engine/core"
	"github.com/Lakasabasz/Vulkan-test/engine/renderer/metadata"
	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Writes to the same file are coalesced for this long before a reload is
// requested; compilers usually write a module in several chunks.
const reloadDebounce = 150 * time.Millisecond

var ErrAssetNotFound = errors.New("asset not found")

type AssetInfo struct {
	ID         uuid.UUID
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

type AssetManager struct {
	baseDir string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex
}

func NewAssetManager(baseDir string) (*AssetManager, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving asset directory %s", baseDir)
	}
	return &AssetManager{
		baseDir: abs,
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
	}, nil
}

// Initialize indexes every known asset under the base directory and registers
// the loaders.
func (am *AssetManager) Initialize() error {
	fi, err := os.Stat(am.baseDir)
	if err != nil {
		return errors.Wrapf(err, "asset directory %s", am.baseDir)
	}
	if !fi.IsDir() {
		return errors.Newf("asset path %s is not a directory", am.baseDir)
	}

	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeBinary, &loaders.BinaryLoader{})

	if err := am.walk(am.baseDir, nil); err != nil {
		return err
	}
	core.LogInfo("Asset manager indexed %d assets in %s", am.Count(), am.baseDir)
	return nil
}

func (am *AssetManager) BaseDir() string {
	return am.baseDir
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// LoadAsset loads an indexed asset. For shaders the name is the file name
// without the .spv extension, e.g. "triangle.vert".
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	var rel string
	switch resourceType {
	case metadata.ResourceTypeShader:
		rel = filepath.Join("shaders", name+".spv")
	case metadata.ResourceTypeBinary:
		rel = name
	default:
		return nil, errors.Newf("unsupported resource type %s", resourceType)
	}

	am.mutex.Lock()
	asset, exists := am.assets[rel]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[rel] = asset
	}
	loader, loaderExists := am.loaders[resourceType]
	am.mutex.Unlock()

	if !exists {
		return nil, errors.Wrapf(ErrAssetNotFound, "%s", rel)
	}
	if !loaderExists {
		return nil, errors.Newf("no loader registered for asset type: %s", resourceType)
	}
	return loader.Load(filepath.Join(am.baseDir, rel), resourceType, params)
}

func (am *AssetManager) UnloadAsset(res *metadata.Resource) error {
	am.mutex.RLock()
	loader, ok := am.loaders[res.Type]
	am.mutex.RUnlock()
	if !ok {
		return nil
	}
	return loader.Unload(res)
}

// Get returns the index entry of a path relative to the base directory.
func (am *AssetManager) Get(rel string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	a, ok := am.assets[filepath.Clean(rel)]
	return a, ok
}

// List returns the indexed assets of one type sorted by path.
func (am *AssetManager) List(t metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		if a.Type == t {
			out = append(out, a)
		}
	}
	am.mutex.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Watch follows the asset directory until ctx is cancelled. Changed shader
// modules are indexed again and announced with EVENT_CODE_SHADER_RELOAD.
func (am *AssetManager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer w.Close()

	if err := am.walk(am.baseDir, w); err != nil {
		return err
	}

	pending := map[string]struct{}{}
	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := am.walk(e.Name, w); err != nil {
						core.LogWarn("watching %s: %v", e.Name, err)
					}
					continue
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if am.handleFileEvent(e.Name) == metadata.ResourceTypeShader {
					pending[e.Name] = struct{}{}
					timer.Reset(reloadDebounce)
				}
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
				// Can't stat a deleted directory, so just try to remove it from the watch list.
				_ = w.Remove(e.Name)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			core.LogError("asset watcher: %v", err)

		case <-timer.C:
			for p := range pending {
				if err := core.EventPost(core.EventContext{
					Type: core.EVENT_CODE_SHADER_RELOAD,
					Data: &core.ShaderEvent{Path: p},
				}); err != nil {
					core.LogWarn(err.Error())
				}
				delete(pending, p)
			}
		}
	}
}

// walk indexes every file under root and, when a watcher is given, adds each
// directory to it.
func (am *AssetManager) walk(root string, w *fsnotify.Watcher) error {
	return filepath.Walk(root, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if w != nil {
				return w.Add(walkPath)
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

func (am *AssetManager) relative(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(am.baseDir, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return rel, true
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) metadata.ResourceType {
	rel, ok := am.relative(path)
	if !ok {
		return metadata.ResourceTypeNone
	}
	assetType := determineAssetType(rel)
	if assetType == metadata.ResourceTypeNone {
		return assetType
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	info, exists := am.assets[rel]
	if !exists {
		info = AssetInfo{ID: uuid.New(), Path: rel, Type: assetType}
	}
	am.assets[rel] = info
	return assetType
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	rel, ok := am.relative(path)
	if !ok {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	delete(am.assets, rel)
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".spv":
		return metadata.ResourceTypeShader
	case ".vert", ".frag", ".glsl":
		return metadata.ResourceTypeShaderSource
	case ".bin":
		return metadata.ResourceTypeBinary
	case ".txt", ".toml":
		return metadata.ResourceTypeText
	default:
		return metadata.ResourceTypeNone
	}
}
