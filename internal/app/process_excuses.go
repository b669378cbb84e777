package app

import (
	"context"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"github.com/kianmeng/drt-tools/internal/adapters"
	"github.com/kianmeng/drt-tools/internal/core"
	"github.com/kianmeng/drt-tools/internal/ports"
	"github.com/kianmeng/drt-tools/internal/types"
)

const defaultLoadWorkers = 4

// ProcessExcuses runs the full pipeline: fetch the snapshot inputs,
// build the Multi-Arch index, evaluate every excuses item, and write
// the resulting wanna-build commands.
func (s Service) ProcessExcuses(ctx context.Context, req ProcessExcusesRequest) (ProcessExcusesResult, error) {
	assert.NotEmpty(ctx, req.CacheDir, "cache directory must be set")
	assert.NotEmpty(ctx, req.TargetSuite, "target suite must be set")
	assert.NotEmpty(ctx, req.Message, "message must be set")

	fetch, err := s.fetchInputs(ctx, req)
	if err != nil {
		return ProcessExcusesResult{}, err
	}
	if fetch.Unchanged && !req.Force {
		log.Info().Msg("excuses feed unchanged, nothing to do")
		return ProcessExcusesResult{Unchanged: true}, nil
	}

	sourcePackages, err := s.loadSourcePackages(ctx, fetch.PackagesPaths, req.Workers)
	if err != nil {
		return ProcessExcusesResult{}, err
	}
	log.Debug().Int("ma-same-sources", sourcePackages.Len()).Msg("built source package index")

	excuses, err := s.Excuses.Load(fetch.ExcusesPath)
	if err != nil {
		return ProcessExcusesResult{}, err
	}
	log.Info().Int("items", len(excuses.Sources)).
		Str("generated", excuses.GeneratedDate).Msg("processing excuses")

	engine := core.NewDecisionEngine(sourcePackages)
	directives := engine.Decide(excuses)

	excluded := 0
	if req.BugsPath != "" {
		directives, excluded, err = s.filterRCBugged(req.BugsPath, directives)
		if err != nil {
			return ProcessExcusesResult{}, err
		}
	}

	if err := s.DirectiveWriter.Write(req.Output, directives, req.TargetSuite, req.Message); err != nil {
		return ProcessExcusesResult{}, err
	}
	return ProcessExcusesResult{
		Directives: len(directives),
		Excluded:   excluded,
		OutputPath: req.Output,
	}, nil
}

func (s Service) fetchInputs(ctx context.Context, req ProcessExcusesRequest) (ports.MirrorResult, error) {
	request := ports.MirrorRequest{
		ExcusesURL:       req.ExcusesURL,
		MirrorURL:        req.MirrorURL,
		Suite:            req.Suite,
		CacheDir:         req.CacheDir,
		Workers:          req.Workers,
		HTTPTimeoutSec:   req.HTTPTimeoutSec,
		HTTPRetries:      req.HTTPRetries,
		HTTPRetryDelayMs: req.HTTPRetryDelayMs,
	}
	if req.SkipDownload {
		return adapters.CachedMirrorResult(req.CacheDir), nil
	}
	return s.Mirror.Fetch(ctx, request)
}

// loadSourcePackages parses the per-architecture indices with bounded
// parallelism; each file is independent and the contributions merge by
// set union. Any parse failure fails the whole build.
func (s Service) loadSourcePackages(ctx context.Context, paths map[types.Architecture]string, workerCount int) (core.SourcePackages, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if workerCount <= 0 {
		workerCount = defaultLoadWorkers
	}
	if len(paths) < workerCount {
		workerCount = len(paths)
	}
	indices := make([][]types.BinaryPackage, 0, len(paths))
	var mu sync.Mutex
	var errMu sync.Mutex
	var firstErr error
	sem := make(chan struct{}, workerCount)
	var wg sync.WaitGroup
	for arch, path := range paths {
		arch, path := arch, path
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			packages, err := s.Packages.Load(path)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				errMu.Unlock()
				return
			}
			log.Debug().Str("architecture", arch.String()).
				Int("packages", len(packages)).Msg("parsed packages index")
			mu.Lock()
			indices = append(indices, packages)
			mu.Unlock()
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return core.SourcePackages{}, firstErr
	}
	return core.NewSourcePackages(indices...), nil
}

// filterRCBugged drops directives whose source carries a
// release-critical bug: the rebuild would most likely fail the same
// way the maintainer upload will.
func (s Service) filterRCBugged(bugsPath string, directives []types.RebuildDirective) ([]types.RebuildDirective, int, error) {
	bugs, err := s.Bugs.Load(bugsPath)
	if err != nil {
		return nil, 0, err
	}
	index := core.NewBugIndex(bugs)
	kept := directives[:0]
	excluded := 0
	for _, directive := range directives {
		if bug, ok := index.RCBugForSource(directive.Source); ok {
			log.Warn().Str("source", directive.Source).Int("bug", bug.ID).
				Str("severity", string(bug.Severity)).
				Msg("skipping source with release-critical bug")
			excluded++
			continue
		}
		kept = append(kept, directive)
	}
	return kept, excluded, nil
}
