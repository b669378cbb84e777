package app

type ProcessExcusesRequest struct {
	CacheDir         string
	ExcusesURL       string
	MirrorURL        string
	Suite            string
	TargetSuite      string
	Message          string
	Output           string
	BugsPath         string
	SkipDownload     bool
	Force            bool
	Workers          int
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

type ProcessExcusesResult struct {
	Directives int
	Excluded   int
	Unchanged  bool
	OutputPath string
}

type DumpExcusesRequest struct {
	ExcusesPath string
}

type DumpExcusesResult struct {
	GeneratedDate string
	Items         []DumpItem
}

type DumpItem struct {
	ItemName    string
	Source      string
	NewVersion  string
	OldVersion  string
	IsCandidate bool
	Policies    []string
}
