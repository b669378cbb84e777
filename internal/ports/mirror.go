package ports

import (
	"context"

	"github.com/kianmeng/drt-tools/internal/types"
)

// MirrorRequest describes one full snapshot fetch: the excuses feed
// plus one binary package index per architecture, stored under
// CacheDir.
type MirrorRequest struct {
	ExcusesURL       string
	MirrorURL        string
	Suite            string
	Component        string
	Architectures    []types.Architecture
	CacheDir         string
	Workers          int
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

// MirrorResult points at the downloaded files. Unchanged reports that
// the excuses feed was not modified since the cached copy, in which
// case a rerun would only reproduce the previous output.
type MirrorResult struct {
	ExcusesPath   string
	PackagesPaths map[types.Architecture]string
	Unchanged     bool
}

// MirrorPort fetches the snapshot inputs. The fetch is all-or-nothing:
// a partial set of indices is worse than none.
type MirrorPort interface {
	Fetch(ctx context.Context, request MirrorRequest) (MirrorResult, error)
}
