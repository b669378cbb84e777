package core

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kianmeng/drt-tools/internal/policies"
	"github.com/kianmeng/drt-tools/internal/types"
)

// RemovalVersion is the feed's sentinel for a pending package removal.
const RemovalVersion = "-"

// puItemSuffix marks (testing-)proposed-updates requests, which follow
// a separate approval path.
const puItemSuffix = "_pu"

// DecisionEngine turns an excuses snapshot into rebuild directives.
// It carries no per-item state; only the read-only Multi-Arch index.
type DecisionEngine struct {
	sourcePackages SourcePackages
}

// NewDecisionEngine creates an engine over the given Multi-Arch index.
func NewDecisionEngine(sourcePackages SourcePackages) DecisionEngine {
	return DecisionEngine{sourcePackages: sourcePackages}
}

// Decide emits one directive per item that a binNMU would unblock,
// preserving the snapshot's item order. Items that cannot be evaluated
// are skipped, never reported as errors.
func (e DecisionEngine) Decide(excuses types.Excuses) []types.RebuildDirective {
	var directives []types.RebuildDirective
	for _, item := range excuses.Sources {
		if directive, ok := e.decideItem(item); ok {
			directives = append(directives, directive)
		}
	}
	return directives
}

func (e DecisionEngine) decideItem(item types.ExcusesItem) (types.RebuildDirective, bool) {
	if item.NewVersion == RemovalVersion {
		// removal, nothing to rebuild
		return types.RebuildDirective{}, false
	}
	if sameVersion(item) {
		// already a binNMU in flight
		return types.RebuildDirective{}, false
	}
	if strings.HasSuffix(item.ItemName, puItemSuffix) {
		return types.RebuildDirective{}, false
	}
	if item.Component != nil && *item.Component != types.ComponentMain {
		return types.RebuildDirective{}, false
	}
	if item.InvalidatedByOtherPackage != nil && *item.InvalidatedByOtherPackage {
		return types.RebuildDirective{}, false
	}
	if item.MissingBuilds != nil {
		// a missing build needs a give-back, not a binNMU
		return types.RebuildDirective{}, false
	}
	if item.PolicyInfo == nil {
		return types.RebuildDirective{}, false
	}
	if !policies.BinNMURequired(item.PolicyInfo) {
		return types.RebuildDirective{}, false
	}
	archs := policies.RebuildArchitectures(item.PolicyInfo.BuiltOnBuildd)
	if len(archs) == 0 {
		return types.RebuildDirective{}, false
	}
	for _, arch := range archs {
		if arch == types.ArchAll {
			// arch:all binaries cannot be rebuilt per architecture
			return types.RebuildDirective{}, false
		}
	}
	directive := types.RebuildDirective{
		Source:  item.Source,
		Version: item.NewVersion,
	}
	if e.sourcePackages.IsMASame(item.Source) {
		directive.AnyArchitecture = true
	} else {
		directive.Architectures = archs
	}
	return directive, true
}

// sameVersion compares the proposed and migrated versions under parsed
// version equality. A version the feed should never produce is logged
// and the item skipped rather than aborting the run.
func sameVersion(item types.ExcusesItem) bool {
	newVersion, err := ParseVersion(item.NewVersion)
	if err != nil {
		log.Warn().Str("source", item.Source).Str("version", item.NewVersion).
			Err(err).Msg("skipping item with unparsable new version")
		return true
	}
	if item.OldVersion == RemovalVersion {
		// not yet in the target suite
		return false
	}
	oldVersion, err := ParseVersion(item.OldVersion)
	if err != nil {
		log.Warn().Str("source", item.Source).Str("version", item.OldVersion).
			Err(err).Msg("skipping item with unparsable old version")
		return true
	}
	if cmp, err := newVersion.Compare(oldVersion); err == nil && cmp < 0 {
		log.Warn().Str("source", item.Source).
			Str("new-version", item.NewVersion).Str("old-version", item.OldVersion).
			Msg("proposed version sorts below the migrated one")
	}
	return newVersion.Equal(oldVersion)
}
