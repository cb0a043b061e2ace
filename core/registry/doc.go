// Package registry implements the control plane for topic channels: creation
// and removal of topics by unique name, identifier bookkeeping, and attribute
// readback for inspection tooling.
//
// A Registry owns the mapping from name to topic and a fixed-size bitmap of
// numeric identifiers, reassigning the lowest free one. It holds no
// package-level state; construct one with New and pass it to whatever surface
// exposes the control plane.
//
// # Basic Usage
//
//	reg := registry.New(registry.WithMaxTopics(64))
//
//	tp, err := reg.Create("sensors")
//	if err != nil {
//		return err
//	}
//	if err := tp.Configure(4, 16); err != nil {
//		return err
//	}
//
//	// ... open handles, exchange messages ...
//
//	if err := reg.Remove("sensors"); err != nil {
//		return err
//	}
//
// Remove refuses to destroy a topic that still has open handles; the caller
// is responsible for closing or revoking them first.
package registry
