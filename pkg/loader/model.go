package loader

import (
	"context"
	"fmt"

	"github.com/taigrr/skykeep/pkg/assets"
	"github.com/taigrr/skykeep/pkg/models"
	"github.com/taigrr/skykeep/pkg/render"
	"github.com/taigrr/skykeep/pkg/scene"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ModelLoader builds one render group per descriptor.
type ModelLoader struct {
	fetcher  assets.Fetcher
	textures *TextureLoader
	log      *zap.Logger
}

// NewModelLoader returns a loader fetching models through f and textures through tl.
func NewModelLoader(f assets.Fetcher, tl *TextureLoader, log *zap.Logger) *ModelLoader {
	return &ModelLoader{fetcher: f, textures: tl, log: log.Named("loader").Named("model")}
}

// Load builds the group for descriptor index of total. Textures load
// concurrently and each settles on its own; a texture failure never fails the
// model. Any geometry failure returns *ModelLoadError and releases every
// texture loaded for the descriptor.
func (l *ModelLoader) Load(ctx context.Context, d assets.Descriptor, index, total int) (*scene.Group, error) {
	log := l.log.With(zap.Int("index", index), zap.Int("total", total), zap.String("model", string(d.Model)))

	textures := l.loadTextures(ctx, d.Textures)
	complete := len(textures) >= ExpectedTextures
	if !complete {
		log.Warn("texture-incomplete model, keeping embedded materials",
			zap.Int("loaded", len(textures)),
			zap.Int("expected", ExpectedTextures),
		)
	}

	meshes, err := l.loadGeometry(ctx, d.Model)
	if err != nil {
		disposeTextures(textures)
		return nil, &ModelLoadError{Index: index, Handle: d.Model, Err: err}
	}

	if !complete || l.bindMaterials(log, meshes, textures) == 0 {
		disposeTextures(textures)
	}

	log.Info("model loaded", zap.Int("meshes", len(meshes)), zap.Bool("textured", complete))
	return scene.NewGroup(string(d.Model), index, meshes, false), nil
}

// LoadOrFallback returns the loaded group, or procedural geometry in its place.
func (l *ModelLoader) LoadOrFallback(ctx context.Context, d assets.Descriptor, index, total int) *scene.Group {
	g, err := l.Load(ctx, d, index, total)
	if err == nil {
		return g
	}
	l.log.Warn("using fallback castle", zap.Error(err))
	return Fallback(index)
}

// Fallback returns the procedural castle group for index.
func Fallback(index int) *scene.Group {
	return scene.NewGroup(fmt.Sprintf("fallback-%d", index), index, models.FallbackCastle(index), true)
}

// LoadAll loads every descriptor in manifest order, each fully resolved before
// the next begins. The result has one group per descriptor.
func (l *ModelLoader) LoadAll(ctx context.Context, m *assets.Manifest) []*scene.Group {
	total := m.Len()
	groups := make([]*scene.Group, 0, total)
	for i := range total {
		groups = append(groups, l.LoadOrFallback(ctx, m.Castles[i], i, total))
	}
	return groups
}

// LoadManifest opens the manifest and loads it. An unreadable or malformed
// manifest yields no groups.
func (l *ModelLoader) LoadManifest(ctx context.Context, open func() (*assets.Manifest, error)) []*scene.Group {
	m, err := open()
	if err != nil {
		l.log.Warn("manifest unavailable, showing no castles", zap.Error(err))
		return nil
	}
	return l.LoadAll(ctx, m)
}

// loadTextures requests every handle together and waits for all to settle.
// The result maps role to texture for the ones that loaded.
func (l *ModelLoader) loadTextures(ctx context.Context, handles []assets.Handle) map[Role]*render.Texture {
	results := make([]*render.Texture, len(handles))

	var g errgroup.Group
	for i, h := range handles {
		g.Go(func() error {
			tex, err := l.textures.Load(ctx, h, i)
			if err == nil {
				results[i] = tex
			}
			// Failures are dropped; siblings keep loading.
			return nil
		})
	}
	_ = g.Wait()

	loaded := make(map[Role]*render.Texture, len(results))
	for i, tex := range results {
		if tex != nil {
			loaded[Role(i)] = tex
		}
	}
	return loaded
}

func (l *ModelLoader) loadGeometry(ctx context.Context, h assets.Handle) ([]*models.Mesh, error) {
	data, err := l.fetcher.Fetch(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	asset, err := models.DecodeGLTF(data)
	if err != nil {
		return nil, err
	}

	meshes := models.Flatten(asset)
	if len(meshes) == 0 {
		return nil, models.ErrNoRenderableRoot
	}

	switch asset.(type) {
	case models.SceneAsset:
		l.log.Debug("resolved scene root", zap.String("model", string(h)))
	case models.MeshAsset:
		l.log.Debug("resolved bare mesh", zap.String("model", string(h)))
	}
	return meshes, nil
}

// bindMaterials gives every mesh with UVs a fresh PBR material over the shared
// textures and returns how many meshes were bound.
func (l *ModelLoader) bindMaterials(log *zap.Logger, meshes []*models.Mesh, textures map[Role]*render.Texture) int {
	bound := 0
	for _, m := range meshes {
		if !m.HasUV {
			log.Warn("mesh has no UVs, leaving its material", zap.String("mesh", m.Name))
			continue
		}
		m.Material = render.NewPBRMaterial(m.Name,
			textures[RoleNormal],
			textures[RoleBaseColor],
			textures[RoleMetalRough],
		)
		bound++
	}
	return bound
}

func disposeTextures(textures map[Role]*render.Texture) {
	for _, t := range textures {
		t.Dispose()
	}
}
