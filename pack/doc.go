// Package pack implements the asset pack container format and a library of
// open packs that serves as the pipeline's asset source.
//
// A pack file is laid out as:
//
//	magic    "APAK"
//	version  uint32, little-endian
//	indexLen uint64, little-endian
//	index    indexLen bytes of FlatBuffers (schema/pack.fbs)
//	data     asset payloads
//
// Index entries are sorted by asset name, enabling O(log n) lookups. Asset
// offsets are relative to the start of the data section. Each asset carries
// the OCI digest of its payload, which doubles as its content hash: equal
// payloads in different packs share a hash.
//
// Packs named by an http:// or https:// URL are read with HTTP range
// requests (see package [github.com/meigma/assetpipe/pack/http]).
package pack

//go:generate flatc --go --go-namespace fb -o internal schema/pack.fbs
