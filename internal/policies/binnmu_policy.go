// Package policies evaluates per-item migration policy verdicts for
// the binNMU decision engine.
package policies

import (
	"strings"

	"github.com/kianmeng/drt-tools/internal/types"
)

// BuilddSignerSuffix marks uploads produced by the official build
// daemons.
const BuilddSignerSuffix = "@buildd.debian.org"

// BinNMURequired decides whether a rebuild would actually unblock the
// item. It is false when the build-provenance policy already passes,
// when the upload is still too young to force a rebuild, or when any
// other policy rejects the item: a binNMU would not let it migrate
// anyway.
func BinNMURequired(info *types.PolicyInfo) bool {
	if info == nil {
		return false
	}
	if b := info.BuiltOnBuildd; b != nil && b.Verdict == types.VerdictPass {
		return false
	}
	if age := info.Age; age != nil {
		// Deliberately below the full age requirement: old enough that
		// the rebuild does not reset the clock in a way that matters.
		threshold := min(age.AgeRequirement/2, age.AgeRequirement-1)
		if age.CurrentAge < threshold {
			return false
		}
	}
	for _, extra := range info.Extras {
		if extra.Verdict != types.VerdictPass {
			return false
		}
	}
	return true
}

// RebuildArchitectures returns the architectures whose current binary
// was not produced by an official buildd, in signer-map order. A
// missing signer counts as unofficial.
func RebuildArchitectures(b *types.BuiltOnBuildd) []types.Architecture {
	if b == nil {
		return nil
	}
	var archs []types.Architecture
	for _, signer := range b.SignedBy {
		if strings.HasSuffix(signer.Signer, BuilddSignerSuffix) {
			continue
		}
		archs = append(archs, signer.Architecture)
	}
	return archs
}
