package assetpipe

import (
	"strings"

	"github.com/meigma/assetpipe/internal/assettype"
	"github.com/meigma/assetpipe/internal/batch"
)

// Ref identifies one asset inside a container file.
type Ref = assettype.Ref

// Container is an open container file.
type Container = assettype.Container

// Kind identifies the content kind of an asset.
type Kind = assettype.Kind

// Asset kinds.
const (
	KindOther    = assettype.KindOther
	KindTexture  = assettype.KindTexture
	KindMesh     = assettype.KindMesh
	KindMaterial = assettype.KindMaterial
)

// ParseKind converts a kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	return assettype.ParseKind(s)
}

// Tier selects the primary or level-of-detail slot of an object cache.
type Tier = assettype.Tier

// Cache tiers.
const (
	TierPrimary = assettype.TierPrimary
	TierLOD     = assettype.TierLOD
)

// Outcome classifies how a request was satisfied.
type Outcome = assettype.Outcome

// Request outcomes.
const (
	OutcomeHit       = assettype.OutcomeHit
	OutcomePreloaded = assettype.OutcomePreloaded
	OutcomeLoaded    = assettype.OutcomeLoaded
)

// Texture is a finished, shareable texture.
type Texture = assettype.Texture

// Mesh is a finished, shareable mesh.
type Mesh = assettype.Mesh

// Material is a finished, shareable material.
type Material = assettype.Material

// SkipSuffixes returns a skip filter matching assets whose name ends in any
// of suffixes.
func SkipSuffixes(suffixes ...string) func(Ref) bool {
	return func(ref Ref) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(ref.Name, s) {
				return true
			}
		}
		return false
	}
}

// Groups cuts plan into the runs of consecutive refs sharing a container
// that the workers pace by. A consumer calls WaitForWorkers once before
// each run.
func Groups(plan []Ref) [][]Ref {
	split := batch.SplitGroups(plan)
	out := make([][]Ref, len(split))
	for i, g := range split {
		out[i] = g.Refs
	}
	return out
}
