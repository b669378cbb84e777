package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kianmeng/drt-tools/internal/types"
)

func eligibleItem(source string) types.ExcusesItem {
	return types.ExcusesItem{
		Source:      source,
		ItemName:    source,
		NewVersion:  "1.2-1",
		OldVersion:  "1.1-1",
		IsCandidate: true,
		PolicyInfo: &types.PolicyInfo{
			BuiltOnBuildd: &types.BuiltOnBuildd{
				SignedBy: []types.ArchSigner{
					{Architecture: types.ArchAmd64, Signer: "someone@example.org"},
					{Architecture: types.ArchArm64, Signer: "buildd@buildd.debian.org"},
				},
				Verdict: types.VerdictRejectedPermanently,
			},
		},
	}
}

func decideOne(t *testing.T, engine DecisionEngine, item types.ExcusesItem) []types.RebuildDirective {
	t.Helper()
	return engine.Decide(types.Excuses{Sources: []types.ExcusesItem{item}})
}

// ---------------------------------------------------------------------------
// gate sequence
// ---------------------------------------------------------------------------

func TestDecideEmitsDirective(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	directives := decideOne(t, engine, eligibleItem("foo"))

	require.Len(t, directives, 1)
	expected := types.RebuildDirective{
		Source:        "foo",
		Version:       "1.2-1",
		Architectures: []types.Architecture{types.ArchAmd64},
	}
	if diff := cmp.Diff(expected, directives[0]); diff != "" {
		t.Errorf("directive mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, `nmu foo_1.2-1 . amd64 . unstable . -m "Rebuild on buildd"`,
		directives[0].WBCommand("unstable", "Rebuild on buildd"))
}

func TestDecideSkipsRemovals(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.NewVersion = RemovalVersion

	assert.Empty(t, decideOne(t, engine, item))
}

func TestDecideSkipsExistingBinNMUs(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.OldVersion = item.NewVersion

	assert.Empty(t, decideOne(t, engine, item))
}

func TestDecideTreatsZeroEpochAsEqual(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.NewVersion = "0:1.2-1"
	item.OldVersion = "1.2-1"

	assert.Empty(t, decideOne(t, engine, item))
}

func TestDecideSkipsProposedUpdates(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.ItemName = "foo_pu"

	assert.Empty(t, decideOne(t, engine, item))
}

func TestDecideSkipsNonMainComponents(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	for _, component := range []types.Component{types.ComponentContrib, types.ComponentNonFree} {
		item := eligibleItem("foo")
		item.Component = &component
		assert.Empty(t, decideOne(t, engine, item), string(component))
	}

	// main and unspecified both pass the gate
	item := eligibleItem("foo")
	component := types.ComponentMain
	item.Component = &component
	assert.Len(t, decideOne(t, engine, item), 1)
}

func TestDecideSkipsInvalidatedItems(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	invalidated := true
	item.InvalidatedByOtherPackage = &invalidated

	assert.Empty(t, decideOne(t, engine, item))

	// an explicit false does not exclude
	invalidated = false
	assert.Len(t, decideOne(t, engine, item), 1)
}

func TestDecideSkipsMissingBuilds(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.MissingBuilds = &types.MissingBuilds{
		OnArchitectures: []types.Architecture{types.ArchS390x},
	}

	assert.Empty(t, decideOne(t, engine, item))
}

func TestDecideSkipsWithoutPolicyInfo(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.PolicyInfo = nil

	assert.Empty(t, decideOne(t, engine, item))
}

func TestDecideSkipsWithoutBuildProvenance(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.PolicyInfo = &types.PolicyInfo{}

	assert.Empty(t, decideOne(t, engine, item))
}

func TestDecideSkipsUnparsableVersions(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.NewVersion = "not a version!"

	assert.Empty(t, decideOne(t, engine, item))
}

// ---------------------------------------------------------------------------
// eligibility
// ---------------------------------------------------------------------------

func TestDecideAgeGateBoundary(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())

	// threshold is min(10/2, 10-1) = 5
	item := eligibleItem("foo")
	item.PolicyInfo.Age = &types.AgeInfo{
		AgeRequirement: 10,
		CurrentAge:     4,
		Verdict:        types.VerdictRejectedTemporarily,
	}
	assert.Empty(t, decideOne(t, engine, item))

	item.PolicyInfo.Age.CurrentAge = 5
	assert.Len(t, decideOne(t, engine, item), 1)
}

func TestDecideSkipsWhenProvenancePassed(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.PolicyInfo.BuiltOnBuildd.Verdict = types.VerdictPass

	assert.Empty(t, decideOne(t, engine, item))
}

func TestDecideSkipsWhenOtherPolicyRejects(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.PolicyInfo.Extras = map[string]types.UnknownPolicyInfo{
		"autopkgtest": {Verdict: types.VerdictRejectedTemporarily},
	}
	assert.Empty(t, decideOne(t, engine, item))

	item.PolicyInfo.Extras["autopkgtest"] = types.UnknownPolicyInfo{Verdict: types.VerdictPass}
	assert.Len(t, decideOne(t, engine, item), 1)
}

// ---------------------------------------------------------------------------
// architecture set
// ---------------------------------------------------------------------------

func TestDecideSkipsArchAll(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.PolicyInfo.BuiltOnBuildd.SignedBy = []types.ArchSigner{
		{Architecture: types.ArchAmd64, Signer: "buildd@buildd.debian.org"},
		{Architecture: types.ArchAll, Signer: "someone@example.org"},
	}

	// arch:all cannot be rebuilt even though amd64 is official
	assert.Empty(t, decideOne(t, engine, item))
}

func TestDecideSkipsWhenAllArchitecturesOfficial(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.PolicyInfo.BuiltOnBuildd.SignedBy = []types.ArchSigner{
		{Architecture: types.ArchAmd64, Signer: "buildd@buildd.debian.org"},
		{Architecture: types.ArchArm64, Signer: "buildd-arm64@buildd.debian.org"},
	}

	assert.Empty(t, decideOne(t, engine, item))
}

func TestDecideMissingSignerCountsAsUnofficial(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.PolicyInfo.BuiltOnBuildd.SignedBy = []types.ArchSigner{
		{Architecture: types.ArchI386, Signer: ""},
	}

	directives := decideOne(t, engine, item)
	require.Len(t, directives, 1)
	assert.Equal(t, []types.Architecture{types.ArchI386}, directives[0].Architectures)
}

func TestDecidePreservesSignerOrder(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	item := eligibleItem("foo")
	item.PolicyInfo.BuiltOnBuildd.SignedBy = []types.ArchSigner{
		{Architecture: types.ArchS390x, Signer: "a@example.org"},
		{Architecture: types.ArchAmd64, Signer: "b@example.org"},
		{Architecture: types.ArchArmhf, Signer: "buildd@buildd.debian.org"},
		{Architecture: types.ArchI386, Signer: "c@example.org"},
	}

	directives := decideOne(t, engine, item)
	require.Len(t, directives, 1)
	assert.Equal(t, "s390x amd64 i386", directives[0].ArchitectureList())
}

func TestDecideCollapsesMultiArchSame(t *testing.T) {
	index := NewSourcePackages([]types.BinaryPackage{
		{Package: "libfoo1", Source: "foo", MultiArch: "same"},
	})
	engine := NewDecisionEngine(index)

	directives := decideOne(t, engine, eligibleItem("foo"))
	require.Len(t, directives, 1)
	assert.True(t, directives[0].AnyArchitecture)
	assert.Equal(t, `nmu foo_1.2-1 . ANY . unstable . -m "Rebuild on buildd"`,
		directives[0].WBCommand("unstable", "Rebuild on buildd"))
}

// ---------------------------------------------------------------------------
// ordering
// ---------------------------------------------------------------------------

func TestDecidePreservesItemOrder(t *testing.T) {
	engine := NewDecisionEngine(NewSourcePackages())
	excuses := types.Excuses{Sources: []types.ExcusesItem{
		eligibleItem("zsh"),
		eligibleItem("abc"),
		eligibleItem("mmm"),
	}}

	directives := engine.Decide(excuses)
	require.Len(t, directives, 3)
	assert.Equal(t, "zsh", directives[0].Source)
	assert.Equal(t, "abc", directives[1].Source)
	assert.Equal(t, "mmm", directives[2].Source)
}
