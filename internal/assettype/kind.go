// Package assettype defines the identifiers, finished object types and
// sentinel errors shared across the pipeline packages.
package assettype

// Kind identifies the content kind of an asset.
type Kind uint8

const (
	KindOther Kind = iota
	KindTexture
	KindMesh
	KindMaterial
)

// Kinds lists every kind that owns a tiered object cache.
var Kinds = [...]Kind{KindTexture, KindMesh, KindMaterial}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindOther:
		return "other"
	case KindTexture:
		return "texture"
	case KindMesh:
		return "mesh"
	case KindMaterial:
		return "material"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "other":
		return KindOther, true
	case "texture":
		return KindTexture, true
	case "mesh":
		return KindMesh, true
	case "material":
		return KindMaterial, true
	default:
		return KindOther, false
	}
}

// Decodable reports whether the decode worker prepares an intermediate
// object for this kind.
func (k Kind) Decodable() bool {
	return k == KindTexture || k == KindMesh
}

// Tier selects the primary or level-of-detail slot of a tiered cache.
type Tier uint8

const (
	TierPrimary Tier = iota
	TierLOD
)

// TierOf maps the accessor's isPrimary flag to a Tier.
func TierOf(primary bool) Tier {
	if primary {
		return TierPrimary
	}
	return TierLOD
}

// String returns the human-readable name of the tier.
func (t Tier) String() string {
	if t == TierPrimary {
		return "primary"
	}
	return "lod"
}

// Outcome classifies how the accessor satisfied a request.
type Outcome uint8

const (
	// OutcomeHit means a finished object was served from a tiered cache.
	OutcomeHit Outcome = iota

	// OutcomePreloaded means the object was assembled from prefetched data.
	OutcomePreloaded

	// OutcomeLoaded means the object was read and decoded synchronously.
	OutcomeLoaded
)

// String returns the human-readable name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomePreloaded:
		return "preloaded"
	case OutcomeLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}
