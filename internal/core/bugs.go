package core

import (
	"github.com/kianmeng/drt-tools/internal/types"
)

// BugIndex indexes a UDD bug dump by source package so the processing
// pipeline can drop rebuilds that would run into release-critical
// bugs.
type BugIndex struct {
	bugs        []types.Bug
	sourceIndex map[string][]int
}

// NewBugIndex builds the by-source index.
func NewBugIndex(bugs []types.Bug) BugIndex {
	index := BugIndex{
		bugs:        bugs,
		sourceIndex: map[string][]int{},
	}
	for idx, bug := range bugs {
		index.sourceIndex[bug.Source] = append(index.sourceIndex[bug.Source], idx)
	}
	return index
}

// BugsForSource returns the bugs filed against a source package, or
// nil if there are none.
func (b BugIndex) BugsForSource(source string) []types.Bug {
	indices, ok := b.sourceIndex[source]
	if !ok {
		return nil
	}
	bugs := make([]types.Bug, 0, len(indices))
	for _, idx := range indices {
		bugs = append(bugs, b.bugs[idx])
	}
	return bugs
}

// RCBugForSource returns the first release-critical bug filed against
// a source package, if any.
func (b BugIndex) RCBugForSource(source string) (types.Bug, bool) {
	for _, idx := range b.sourceIndex[source] {
		if b.bugs[idx].Severity.IsRC() {
			return b.bugs[idx], true
		}
	}
	return types.Bug{}, false
}

// Len returns the number of indexed bugs.
func (b BugIndex) Len() int {
	return len(b.bugs)
}
