// Package codec encodes and decodes the binary payloads stored for mesh,
// texture and material assets.
//
// Every payload starts with a one-byte type tag followed by the asset name.
// Integers and floats are little-endian; strings are uvarint length-prefixed;
// arrays carry an int32 element count.
//
// Mesh payloads hold, in order: positions, colors, UVs, normals, tangents,
// bone weights, bind poses, then a count-prefixed list of index arrays (one
// per sub-mesh).
//
// Texture payloads hold a linear-color flag and a length-prefixed image
// blob. The blob is a zstd frame wrapping the image header and raw pixels;
// [Decoder] keeps a pool of zstd decoders so the decode worker and cold
// loads can unpack blobs without reallocating decoder state.
package codec
