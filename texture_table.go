package compose

import (
	"fmt"
	"sync"
)

// MaxBindingTextureArrayCount is the number of slots a texture array binding
// is padded to on backends without partially bound binding arrays.
const MaxBindingTextureArrayCount = 30

// solidPixel is bound in place of an empty table so the binding is never
// empty.
var solidPixel = SolidTexture(White)

// TextureTable is the bindless texture table: a frame-stable array of
// textures addressed by the TextureIndex of each instance, plus one
// dedicated font atlas slot.
//
// The table is built before a frame is submitted and only read while the
// frame renders. Add and Reset are safe for concurrent use with each other,
// but must not overlap a frame that reads the table.
type TextureTable struct {
	mu       sync.RWMutex
	textures []*Texture
	lookup   map[*Texture]int32
	atlas    *Texture
}

// NewTextureTable creates an empty table.
func NewTextureTable() *TextureTable {
	return &TextureTable{lookup: make(map[*Texture]int32)}
}

// Add appends tex and returns its index. A texture added twice keeps its
// first index.
func (t *TextureTable) Add(tex *Texture) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.lookup[tex]; ok {
		return i
	}
	i := int32(len(t.textures)) //nolint:gosec // table size is bounded by memory
	t.textures = append(t.textures, tex)
	t.lookup[tex] = i
	return i
}

// Len returns the number of distinct textures in the table.
func (t *TextureTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.textures)
}

// Texture returns the texture at index i, or ErrTextureIndexOutOfRange.
func (t *TextureTable) Texture(i int32) (*Texture, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || int(i) >= len(t.textures) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrTextureIndexOutOfRange, i, len(t.textures))
	}
	return t.textures[i], nil
}

// Lookup returns the texture at index i without a bounds check. It is the
// shading fast path; indices must have been checked with ValidateInstances.
func (t *TextureTable) Lookup(i int32) *Texture {
	return t.textures[i]
}

// SetFontAtlas binds the font atlas used by text instances.
func (t *TextureTable) SetFontAtlas(tex *Texture) {
	t.mu.Lock()
	t.atlas = tex
	t.mu.Unlock()
}

// FontAtlas returns the bound font atlas, or nil.
func (t *TextureTable) FontAtlas() *Texture {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.atlas
}

// Views returns the textures to bind for a frame. An empty table binds a
// single solid white pixel. When partiallyBound is false the result is padded
// to MaxBindingTextureArrayCount by repeating the first entry.
func (t *TextureTable) Views(partiallyBound bool) []*Texture {
	t.mu.RLock()
	views := make([]*Texture, len(t.textures), max(len(t.textures), MaxBindingTextureArrayCount))
	copy(views, t.textures)
	t.mu.RUnlock()

	if len(views) == 0 {
		views = append(views, solidPixel)
	}
	if !partiallyBound {
		for len(views) < MaxBindingTextureArrayCount {
			views = append(views, views[0])
		}
	}
	return views
}

// Reset empties the table and unbinds the font atlas.
func (t *TextureTable) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.lookup)
	t.textures = t.textures[:0]
	t.atlas = nil
}
