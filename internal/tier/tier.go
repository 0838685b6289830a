// Package tier holds the finished-object caches, one primary and one
// level-of-detail map per asset kind. None of the types here are safe for
// concurrent use.
package tier

import "github.com/meigma/assetpipe/internal/assettype"

// Cache maps content hashes to finished objects for one asset kind.
type Cache[T any] struct {
	primary map[string]T
	lod     map[string]T
}

// NewCache creates an empty cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{
		primary: make(map[string]T),
		lod:     make(map[string]T),
	}
}

func (c *Cache[T]) slot(t assettype.Tier) map[string]T {
	if t == assettype.TierPrimary {
		return c.primary
	}
	return c.lod
}

// Get returns the object stored for hash in tier t.
func (c *Cache[T]) Get(t assettype.Tier, hash string) (T, bool) {
	v, ok := c.slot(t)[hash]
	return v, ok
}

// Put stores v for hash in tier t. An existing object is kept and returned
// instead, so every caller shares the first object stored.
func (c *Cache[T]) Put(t assettype.Tier, hash string, v T) T {
	m := c.slot(t)
	if existing, ok := m[hash]; ok {
		return existing
	}
	m[hash] = v
	return v
}

// Holds reports whether either tier stores hash.
func (c *Cache[T]) Holds(hash string) bool {
	if _, ok := c.primary[hash]; ok {
		return true
	}
	_, ok := c.lod[hash]
	return ok
}

// Len returns the number of objects in tier t.
func (c *Cache[T]) Len(t assettype.Tier) int {
	return len(c.slot(t))
}

// Clear drops every object.
func (c *Cache[T]) Clear() {
	clear(c.primary)
	clear(c.lod)
}

// Set groups the caches of every kind.
type Set struct {
	Textures  *Cache[*assettype.Texture]
	Meshes    *Cache[*assettype.Mesh]
	Materials *Cache[*assettype.Material]
}

// NewSet creates empty caches for every kind.
func NewSet() *Set {
	return &Set{
		Textures:  NewCache[*assettype.Texture](),
		Meshes:    NewCache[*assettype.Mesh](),
		Materials: NewCache[*assettype.Material](),
	}
}

// Holds reports whether the cache for kind k stores hash in either tier.
// Kinds without a cache never hold anything.
func (s *Set) Holds(k assettype.Kind, hash string) bool {
	switch k {
	case assettype.KindTexture:
		return s.Textures.Holds(hash)
	case assettype.KindMesh:
		return s.Meshes.Holds(hash)
	case assettype.KindMaterial:
		return s.Materials.Holds(hash)
	default:
		return false
	}
}

// Len returns the total number of objects across every kind and tier.
func (s *Set) Len() int {
	n := 0
	for _, t := range []assettype.Tier{assettype.TierPrimary, assettype.TierLOD} {
		n += s.Textures.Len(t) + s.Meshes.Len(t) + s.Materials.Len(t)
	}
	return n
}

// Clear drops every object of every kind.
func (s *Set) Clear() {
	s.Textures.Clear()
	s.Meshes.Clear()
	s.Materials.Clear()
}
