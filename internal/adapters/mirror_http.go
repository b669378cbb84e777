package adapters

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"github.com/kianmeng/drt-tools/internal/ports"
	"github.com/kianmeng/drt-tools/internal/shared"
	"github.com/kianmeng/drt-tools/internal/types"
)

const (
	DefaultExcusesURL = "https://release.debian.org/britney/excuses.yaml"
	DefaultMirrorURL  = "https://deb.debian.org/debian"
	DefaultSuite      = "unstable"
	DefaultComponent  = "main"
)

const defaultMirrorWorkers = 4
const defaultHTTPTimeout = 60 * time.Second
const defaultHTTPRetries = 3
const defaultHTTPRetryDelay = 200 * time.Millisecond
const maxHTTPRetryDelay = 2 * time.Second

type httpRetryConfig struct {
	timeout   time.Duration
	retries   int
	baseDelay time.Duration
}

func normalizeHTTPConfig(timeoutSec int, retries int, delayMs int) httpRetryConfig {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	retryCount := retries
	if retryCount <= 0 {
		retryCount = defaultHTTPRetries
	}
	baseDelay := time.Duration(delayMs) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = defaultHTTPRetryDelay
	}
	return httpRetryConfig{
		timeout:   timeout,
		retries:   retryCount,
		baseDelay: baseDelay,
	}
}

// CachedMirrorResult points at the cache files a previous fetch left
// behind, for offline runs.
func CachedMirrorResult(cacheDir string) ports.MirrorResult {
	result := ports.MirrorResult{
		ExcusesPath:   filepath.Join(cacheDir, "excuses.yaml"),
		PackagesPaths: map[types.Architecture]string{},
	}
	for _, arch := range types.ReleaseArchitectures {
		result.PackagesPaths[arch] = filepath.Join(cacheDir, fmt.Sprintf("Packages_%s", arch))
	}
	return result
}

type MirrorHTTPAdapter struct{}

func NewMirrorHTTPAdapter() MirrorHTTPAdapter {
	return MirrorHTTPAdapter{}
}

// Fetch downloads the excuses feed and one Packages index per
// architecture into the cache directory. The excuses download is
// conditional on the cached copy's timestamp; an unmodified feed
// short-circuits the index downloads entirely. Index downloads run
// with bounded parallelism and fail the whole fetch on first error.
func (a MirrorHTTPAdapter) Fetch(ctx context.Context, request ports.MirrorRequest) (ports.MirrorResult, error) {
	if request.CacheDir == "" {
		return ports.MirrorResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cache directory is required")
	}
	if err := os.MkdirAll(request.CacheDir, 0755); err != nil {
		return ports.MirrorResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create cache directory").
			WithCause(err)
	}
	excusesURL := request.ExcusesURL
	if excusesURL == "" {
		excusesURL = DefaultExcusesURL
	}
	mirrorURL := request.MirrorURL
	if mirrorURL == "" {
		mirrorURL = DefaultMirrorURL
	}
	suite := request.Suite
	if suite == "" {
		suite = DefaultSuite
	}
	component := request.Component
	if component == "" {
		component = DefaultComponent
	}
	architectures := request.Architectures
	if len(architectures) == 0 {
		architectures = types.ReleaseArchitectures
	}
	httpCfg := normalizeHTTPConfig(request.HTTPTimeoutSec, request.HTTPRetries, request.HTTPRetryDelayMs)

	excusesPath := filepath.Join(request.CacheDir, "excuses.yaml")
	modified, err := downloadFile(ctx, excusesURL, excusesPath, httpCfg)
	if err != nil {
		return ports.MirrorResult{}, err
	}
	result := ports.MirrorResult{
		ExcusesPath:   excusesPath,
		PackagesPaths: map[types.Architecture]string{},
	}
	if !modified {
		for _, arch := range architectures {
			result.PackagesPaths[arch] = filepath.Join(request.CacheDir, fmt.Sprintf("Packages_%s", arch))
		}
		result.Unchanged = true
		return result, nil
	}

	if err := a.fetchIndices(ctx, mirrorURL, suite, component, architectures, request.CacheDir, request.Workers, httpCfg); err != nil {
		return ports.MirrorResult{}, err
	}
	for _, arch := range architectures {
		result.PackagesPaths[arch] = filepath.Join(request.CacheDir, fmt.Sprintf("Packages_%s", arch))
	}
	return result, nil
}

func (a MirrorHTTPAdapter) fetchIndices(ctx context.Context, mirrorURL string, suite string, component string, architectures []types.Architecture, cacheDir string, workerCount int, httpCfg httpRetryConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var errMu sync.Mutex
	var firstErr error
	if workerCount <= 0 {
		workerCount = defaultMirrorWorkers
	}
	if len(architectures) < workerCount {
		workerCount = len(architectures)
	}
	sem := make(chan struct{}, workerCount)
	var wg sync.WaitGroup
	for _, arch := range architectures {
		arch := arch
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			url := fmt.Sprintf("%s/dists/%s/%s/binary-%s/Packages.gz", mirrorURL, suite, component, arch)
			dest := filepath.Join(cacheDir, fmt.Sprintf("Packages_%s", arch))
			if err := downloadUnpacked(ctx, url, dest, httpCfg); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				errMu.Unlock()
				return
			}
			log.Debug().Str("architecture", arch.String()).Msg("fetched packages index")
		}()
	}
	wg.Wait()
	return firstErr
}

// downloadFile fetches a URL to dest using If-Modified-Since against
// the cached copy. It reports whether the remote file was modified.
func downloadFile(ctx context.Context, url string, dest string, cfg httpRetryConfig) (bool, error) {
	var since time.Time
	if info, err := os.Stat(dest); err == nil {
		since = info.ModTime()
	}
	resp, err := doRequest(ctx, url, since, cfg)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotModified {
		log.Debug().Str("url", url).Msg("not modified")
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to download file").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}
	if err := writeTo(dest, resp.Body); err != nil {
		return false, err
	}
	if modTime, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		_ = os.Chtimes(dest, modTime, modTime)
	}
	return true, nil
}

// downloadUnpacked fetches a gzip-compressed URL and stores the
// decompressed content.
func downloadUnpacked(ctx context.Context, url string, dest string, cfg httpRetryConfig) error {
	resp, err := doRequest(ctx, url, time.Time{}, cfg)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to download packages index").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}
	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read gzipped packages index").
			WithCause(err)
	}
	defer gz.Close()
	return writeTo(dest, gz)
}

func writeTo(dest string, reader io.Reader) error {
	// write to a temp file first so an interrupted download never
	// leaves a truncated cache entry behind
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp*")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create cache file").
			WithCause(err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write cache file").
			WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to close cache file").
			WithCause(err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to move cache file into place").
			WithCause(err)
	}
	return nil
}

func doRequest(ctx context.Context, url string, since time.Time, cfg httpRetryConfig) (*http.Response, error) {
	client := &http.Client{Timeout: cfg.timeout}
	var lastErr error
	for attempt := 0; attempt < cfg.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request canceled").
				WithCause(ctx.Err())
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create request").
				WithCause(err)
		}
		if !since.IsZero() {
			req.Header.Set("If-Modified-Since", since.UTC().Format(http.TimeFormat))
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("request canceled").
					WithCause(ctx.Err())
			}
			lastErr = err
			if attempt < cfg.retries-1 {
				time.Sleep(httpRetryDelay(attempt, cfg))
				continue
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request failed").
				WithCause(err)
		}
		if (resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests) && attempt < cfg.retries-1 {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			time.Sleep(httpRetryDelay(attempt, cfg))
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("request failed").
		WithCause(lastErr)
}

func httpRetryDelay(attempt int, cfg httpRetryConfig) time.Duration {
	delay := cfg.baseDelay * time.Duration(1<<attempt)
	if delay > maxHTTPRetryDelay {
		delay = maxHTTPRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

var _ ports.MirrorPort = MirrorHTTPAdapter{}
