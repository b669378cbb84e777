package core

import (
	"github.com/kianmeng/drt-tools/internal/types"
)

// SourcePackages is the set of source packages whose binaries declare
// Multi-Arch: same. For such a source a rebuild on any one architecture
// produces binaries interchangeable with all others, so the engine
// collapses its architecture list to ANY. Immutable after construction.
type SourcePackages struct {
	maSameSources map[string]struct{}
}

// NewSourcePackages scans binary package index entries, one slice per
// architecture-specific index. Insertion order is irrelevant: the
// contributions merge by set union.
func NewSourcePackages(indices ...[]types.BinaryPackage) SourcePackages {
	maSame := map[string]struct{}{}
	for _, index := range indices {
		for _, pkg := range index {
			if pkg.MultiArch != "same" {
				continue
			}
			maSame[pkg.SourceName()] = struct{}{}
		}
	}
	return SourcePackages{maSameSources: maSame}
}

// IsMASame reports whether the source's binaries are Multi-Arch: same.
func (s SourcePackages) IsMASame(source string) bool {
	_, ok := s.maSameSources[source]
	return ok
}

// Len returns the number of Multi-Arch: same sources.
func (s SourcePackages) Len() int {
	return len(s.maSameSources)
}
