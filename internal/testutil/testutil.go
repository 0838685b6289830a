// Package testutil provides in-memory containers and payload builders for
// pipeline tests.
package testutil

import (
	_ "crypto/sha256" // registers sha256 for go-digest
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/assetpipe/internal/assettype"
)

// ErrInjected is returned by reads that hit a poisoned asset.
var ErrInjected = errors.New("testutil: injected read fault")

// MemSource is a concurrency-safe set of in-memory containers that records
// every open and read.
type MemSource struct {
	mu         sync.Mutex
	containers map[string]*memData
	opens      map[string]int
	reads      []readRecord
	poisoned   map[location]bool
	gate       chan struct{}
	waiting    int
}

type memData struct {
	data []byte
	refs []assettype.Ref
}

type readRecord struct {
	container string
	off       int64
	end       int64
}

// NewMemSource creates an empty source.
func NewMemSource() *MemSource {
	return &MemSource{
		containers: make(map[string]*memData),
		opens:      make(map[string]int),
		poisoned:   make(map[location]bool),
	}
}

// Add appends payload to container as a new asset and returns its ref. The
// hash is the sha256 digest of the payload, so equal payloads share a hash.
func (s *MemSource) Add(container, name string, kind assettype.Kind, payload []byte) assettype.Ref {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.containers[container]
	if !ok {
		c = &memData{}
		s.containers[container] = c
	}
	ref := assettype.Ref{
		Container: container,
		Name:      name,
		Offset:    int64(len(c.data)),
		Size:      int64(len(payload)),
		Kind:      kind,
		Hash:      digest.FromBytes(payload).String(),
	}
	c.data = append(c.data, payload...)
	c.refs = append(c.refs, ref)
	return ref
}

// Refs returns every asset added to container, in insertion order.
func (s *MemSource) Refs(container string) []assettype.Ref {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.containers[container]; ok {
		return append([]assettype.Ref(nil), c.refs...)
	}
	return nil
}

// Poison makes every read overlapping ref fail with ErrInjected.
func (s *MemSource) Poison(ref assettype.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poisoned[location{container: ref.Container, off: ref.Offset}] = true
}

// Hold makes every read block until the returned release function is called.
func (s *MemSource) Hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Open implements the pipeline source contract.
func (s *MemSource) Open(container string) (assettype.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.containers[container]
	if !ok {
		return nil, fmt.Errorf("testutil: open %s: %w", container, assettype.ErrNotFound)
	}
	s.opens[container]++
	return &memContainer{src: s, name: container, data: c.data}, nil
}

// Locate finds the first asset in container with the given hash.
func (s *MemSource) Locate(container, hash string) (assettype.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.containers[container]; ok {
		for _, ref := range c.refs {
			if ref.Hash == hash {
				return ref, nil
			}
		}
	}
	return assettype.Ref{}, fmt.Errorf("testutil: %s in %s: %w", hash, container, assettype.ErrNotFound)
}

// Opens returns how many times container was opened.
func (s *MemSource) Opens(container string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens[container]
}

// ReadCount returns how many reads fetched ref's full byte range.
func (s *MemSource) ReadCount(ref assettype.Ref) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.reads {
		if r.container == ref.Container && r.off <= ref.Offset && r.end >= ref.Offset+ref.Size {
			n++
		}
	}
	return n
}

// Waiting returns how many reads are blocked by Hold.
func (s *MemSource) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting
}

// TotalReads returns the number of read calls across all containers.
func (s *MemSource) TotalReads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reads)
}

func (s *MemSource) readAt(container string, data, p []byte, off int64) (int, error) {
	s.mu.Lock()
	gate := s.gate
	if gate != nil {
		s.waiting++
	}
	s.mu.Unlock()
	if gate != nil {
		<-gate
		s.mu.Lock()
		s.waiting--
		s.mu.Unlock()
	}

	s.mu.Lock()
	end := off + int64(len(p))
	for loc := range s.poisoned {
		if loc.container == container && loc.off >= off && loc.off < end {
			s.mu.Unlock()
			return 0, ErrInjected
		}
	}
	s.reads = append(s.reads, readRecord{container: container, off: off, end: end})
	s.mu.Unlock()

	if off >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// location is the start of an asset inside a container.
type location struct {
	container string
	off       int64
}

// memContainer is an open view of one in-memory container.
type memContainer struct {
	src  *MemSource
	name string
	data []byte
}

func (c *memContainer) ReadAt(p []byte, off int64) (int, error) {
	return c.src.readAt(c.name, c.data, p, off)
}

func (c *memContainer) Size() int64 {
	return int64(len(c.data))
}

func (c *memContainer) Close() error {
	return nil
}
