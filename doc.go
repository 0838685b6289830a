// Package assetpipe loads texture, mesh and material assets from container
// files ahead of a consumer, so that disk reads and payload decoding overlap
// with the consumer's own work and identical content is read and decoded
// only once.
//
// A [Pipeline] is given the ordered list of assets the consumer will request
// (the plan). It walks the plan in groups of consecutive assets from the same
// container. A load worker reads each group's payloads into a bounded
// eviction cache and hands texture and mesh payloads to a decode worker,
// which replaces them with decoded intermediate objects. Two pacing counters
// keep both workers at most a few groups ahead of the consumer.
//
// The consumer calls [Pipeline.WaitForWorkers] once per group and then
// requests finished objects with [Pipeline.GetTexture], [Pipeline.GetMesh]
// and [Pipeline.GetMaterial]. Finished objects are kept in per-kind primary
// and level-of-detail caches keyed by content hash, so later requests for
// the same content are served without touching the container again.
//
// # Quick Start
//
//	lib := pack.NewLibrary()
//	defer lib.Close()
//	refs, err := plan.Resolve(ctx, lib, p)
//	if err != nil {
//	    return err
//	}
//	pipe := assetpipe.New(lib, assetpipe.WithLogger(logger))
//	if err := pipe.Start(ctx, refs); err != nil {
//	    return err
//	}
//	defer pipe.Dispose()
//	for _, group := range assetpipe.Groups(refs) {
//	    if err := pipe.WaitForWorkers(ctx); err != nil {
//	        return err
//	    }
//	    for _, ref := range group {
//	        mesh, err := pipe.GetMesh(ref.Hash, ref.Container, true)
//	        ...
//	    }
//	}
package assetpipe
