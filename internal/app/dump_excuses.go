package app

import (
	"context"
	"sort"

	assert "github.com/ZanzyTHEbar/assert-lib"
)

// DumpExcuses parses a cached excuses snapshot and summarizes every
// item, mainly for inspecting what the feed actually carries.
func (s Service) DumpExcuses(ctx context.Context, req DumpExcusesRequest) (DumpExcusesResult, error) {
	assert.NotEmpty(ctx, req.ExcusesPath, "excuses path must be set")

	excuses, err := s.Excuses.Load(req.ExcusesPath)
	if err != nil {
		return DumpExcusesResult{}, err
	}
	result := DumpExcusesResult{
		GeneratedDate: excuses.GeneratedDate,
		Items:         make([]DumpItem, 0, len(excuses.Sources)),
	}
	for _, item := range excuses.Sources {
		dump := DumpItem{
			ItemName:    item.ItemName,
			Source:      item.Source,
			NewVersion:  item.NewVersion,
			OldVersion:  item.OldVersion,
			IsCandidate: item.IsCandidate,
		}
		if info := item.PolicyInfo; info != nil {
			if info.Age != nil {
				dump.Policies = append(dump.Policies, "age")
			}
			if info.BuiltOnBuildd != nil {
				dump.Policies = append(dump.Policies, "builtonbuildd")
			}
			extras := make([]string, 0, len(info.Extras))
			for name := range info.Extras {
				extras = append(extras, name)
			}
			sort.Strings(extras)
			dump.Policies = append(dump.Policies, extras...)
		}
		result.Items = append(result.Items, dump)
	}
	return result, nil
}
