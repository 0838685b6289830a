package batch

import (
	"cmp"
	"slices"
)

// Group is a run of consecutive plan entries stored in the same container.
type Group struct {
	Container string
	Refs      []Ref
}

// SplitGroups cuts plan into runs of consecutive refs sharing a container.
// A container that appears in two separate runs yields two groups.
func SplitGroups(plan []Ref) []Group {
	var groups []Group
	for i := 0; i < len(plan); {
		j := i + 1
		for j < len(plan) && plan[j].Container == plan[i].Container {
			j++
		}
		groups = append(groups, Group{Container: plan[i].Container, Refs: plan[i:j:j]})
		i = j
	}
	return groups
}

// SortByOffset orders refs by ascending container offset.
func SortByOffset(refs []Ref) {
	slices.SortStableFunc(refs, func(a, b Ref) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
}

// span is a contiguous byte range covering one or more refs.
// All refs in a span can be fetched with a single read.
type span struct {
	start int64
	end   int64
	refs  []Ref
}

// groupAdjacent coalesces refs that are adjacent in the container.
//
// Refs must be sorted by Offset and validated before calling this function.
// A span is closed early once it would grow past maxBytes (0 for no limit).
// The refs slice must be non-empty.
func groupAdjacent(refs []Ref, maxBytes int64) []span {
	spans := make([]span, 0, len(refs))
	current := span{
		start: refs[0].Offset,
		end:   refs[0].Offset + refs[0].Size,
		refs:  []Ref{refs[0]},
	}

	for _, ref := range refs[1:] {
		end := ref.Offset + ref.Size
		if ref.Offset == current.end && (maxBytes == 0 || end-current.start <= maxBytes) {
			current.end = end
			current.refs = append(current.refs, ref)
			continue
		}
		spans = append(spans, current)
		current = span{start: ref.Offset, end: end, refs: []Ref{ref}}
	}
	return append(spans, current)
}
