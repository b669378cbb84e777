package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kianmeng/drt-tools/internal/types"
)

func TestDumpExcuses(t *testing.T) {
	item := eligibleItem("foo")
	item.PolicyInfo.Age = &types.AgeInfo{AgeRequirement: 10, CurrentAge: 5}
	item.PolicyInfo.Extras = map[string]types.UnknownPolicyInfo{
		"implicit-deps": {Verdict: types.VerdictPass},
		"autopkgtest":   {Verdict: types.VerdictPass},
	}
	service := Service{Excuses: &fakeExcuses{excuses: types.Excuses{
		GeneratedDate: "2026-08-12 07:52:12",
		Sources:       []types.ExcusesItem{item},
	}}}

	result, err := service.DumpExcuses(context.Background(), DumpExcusesRequest{ExcusesPath: "excuses.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "2026-08-12 07:52:12", result.GeneratedDate)
	require.Len(t, result.Items, 1)

	dump := result.Items[0]
	assert.Equal(t, "foo", dump.Source)
	assert.Equal(t, "1.2-1", dump.NewVersion)
	assert.True(t, dump.IsCandidate)
	// fixed policies first, then the open-ended ones alphabetically
	assert.Equal(t, []string{"age", "builtonbuildd", "autopkgtest", "implicit-deps"}, dump.Policies)
}

func TestDumpExcusesWithoutPolicyInfo(t *testing.T) {
	service := Service{Excuses: &fakeExcuses{excuses: types.Excuses{
		Sources: []types.ExcusesItem{{Source: "foo", ItemName: "foo"}},
	}}}

	result, err := service.DumpExcuses(context.Background(), DumpExcusesRequest{ExcusesPath: "excuses.yaml"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Empty(t, result.Items[0].Policies)
}
