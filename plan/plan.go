// Package plan reads load plans: the ordered list of assets a consumer will
// request, written as JSON with comments and trailing commas.
//
//	{
//	  // every asset of the level pack, in storage order
//	  "groups": [
//	    {"container": "levels/forest.pack"},
//	    {"container": "props.pack", "assets": ["rock", "rock_mat"]},
//	  ],
//	}
package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/meigma/assetpipe"
	"github.com/meigma/assetpipe/pack"
)

// ErrInvalidPlan is returned for plans that parse but make no sense.
var ErrInvalidPlan = errors.New("plan: invalid plan")

// Plan is an ordered list of groups.
type Plan struct {
	Groups []Group `json:"groups"`
}

// Group names assets of one container. Without Assets it stands for every
// asset in the container, in storage order.
type Group struct {
	Container string   `json:"container"`
	Assets    []string `json:"assets,omitempty"`
}

// Parse decodes a plan from JSON with comments.
func Parse(data []byte) (*Plan, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSONC: %w", ErrInvalidPlan, err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	var p Plan
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and parses the plan file at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Save writes p to path as indented JSON, replacing the file atomically.
func Save(path string, p *Plan) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return atomic.WriteFile(path, bytes.NewReader(data))
}

// Validate checks that every group names a container.
func (p *Plan) Validate() error {
	for i, g := range p.Groups {
		if g.Container == "" {
			return fmt.Errorf("%w: group %d has no container", ErrInvalidPlan, i)
		}
		for _, name := range g.Assets {
			if name == "" {
				return fmt.Errorf("%w: group %d has an empty asset name", ErrInvalidPlan, i)
			}
		}
	}
	return nil
}

// Containers returns the distinct containers of p in first-use order.
func (p *Plan) Containers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range p.Groups {
		if !seen[g.Container] {
			seen[g.Container] = true
			out = append(out, g.Container)
		}
	}
	return out
}

// Packs opens packs by container name. *pack.Library implements it.
type Packs interface {
	Pack(ctx context.Context, container string) (*pack.Pack, error)
}

// Resolve expands p into pipeline refs, opening each container through
// packs. A named asset missing from its pack fails with an error wrapping
// assetpipe.ErrNotFound.
func Resolve(ctx context.Context, packs Packs, p *Plan) ([]assetpipe.Ref, error) {
	var refs []assetpipe.Ref
	for _, g := range p.Groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pk, err := packs.Pack(ctx, g.Container)
		if err != nil {
			return nil, err
		}
		if len(g.Assets) == 0 {
			refs = append(refs, pk.Refs()...)
			continue
		}
		for _, name := range g.Assets {
			a, ok := pk.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s in %s", assetpipe.ErrNotFound, name, g.Container)
			}
			refs = append(refs, pk.Ref(a))
		}
	}
	return refs, nil
}
