//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kianmeng/drt-tools/internal/app"
)

// TestE2EProcessExcusesWithTestcontainers runs the whole pipeline
// against a containerized stand-in for the Debian archive: excuses
// feed, per-architecture Packages.gz indices, conditional requests.
func TestE2EProcessExcusesWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers e2e in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startArchiveMock(ctx, t)
	t.Cleanup(cleanup)

	cacheDir := t.TempDir()
	outPath := filepath.Join(t.TempDir(), "nmu.commands")

	service := app.NewService()
	result, err := service.ProcessExcuses(ctx, app.ProcessExcusesRequest{
		CacheDir:         cacheDir,
		ExcusesURL:       endpoint + "/excuses.yaml",
		MirrorURL:        endpoint,
		Suite:            "unstable",
		TargetSuite:      "unstable",
		Message:          "Rebuild on buildd",
		Output:           outPath,
		Workers:          2,
		HTTPTimeoutSec:   10,
		HTTPRetries:      1,
		HTTPRetryDelayMs: 100,
	})
	require.NoError(t, err)
	require.False(t, result.Unchanged)
	require.Equal(t, 2, result.Directives)

	actual, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t,
		"nmu foo_1.2-1 . amd64 . unstable . -m \"Rebuild on buildd\"\n"+
			"nmu bar_2.0-3 . ANY . unstable . -m \"Rebuild on buildd\"\n",
		string(actual))

	// a second run finds the feed unmodified and does nothing
	result, err = service.ProcessExcuses(ctx, app.ProcessExcusesRequest{
		CacheDir:       cacheDir,
		ExcusesURL:     endpoint + "/excuses.yaml",
		MirrorURL:      endpoint,
		Suite:          "unstable",
		TargetSuite:    "unstable",
		Message:        "Rebuild on buildd",
		Output:         outPath,
		HTTPTimeoutSec: 10,
		HTTPRetries:    1,
	})
	require.NoError(t, err)
	assert.True(t, result.Unchanged)
}

func startArchiveMock(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8080/tcp"},
		Cmd:          []string{"python", "-c", archiveMockScript},
		WaitingFor:   wait.ForListeningPort("8080/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080/tcp")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return endpoint, cleanup
}

const archiveExcusesYAML = `generated-date: 2026-08-12 07:52:12
sources:
- item-name: foo
  source: foo
  is-candidate: true
  new-version: 1.2-1
  old-version: 1.1-1
  policy_info:
    builtonbuildd:
      signed-by:
        amd64: someone@example.org
        arm64: buildd-arm64@buildd.debian.org
      verdict: REJECTED_PERMANENTLY
- item-name: bar
  source: bar
  is-candidate: true
  new-version: 2.0-3
  old-version: 2.0-1
  policy_info:
    builtonbuildd:
      signed-by:
        i386: porter@example.org
      verdict: REJECTED_PERMANENTLY
`

const archivePackagesIndex = `Package: foo
Version: 1.2-1

Package: libbar2
Source: bar
Version: 2.0-3
Multi-Arch: same
`

const archiveMockScript = `
import gzip
import os

root = "/srv/archive"
archs = [
    "amd64", "arm64", "armel", "armhf", "i386",
    "ppc64el", "mipsel", "mips64el", "s390x",
]
excuses = """` + archiveExcusesYAML + `"""
packages = """` + archivePackagesIndex + `"""

os.makedirs(root, exist_ok=True)
with open(os.path.join(root, "excuses.yaml"), "w") as f:
    f.write(excuses)
for arch in archs:
    path = os.path.join(root, "dists", "unstable", "main", "binary-%s" % arch)
    os.makedirs(path, exist_ok=True)
    with gzip.open(os.path.join(path, "Packages.gz"), "wt") as f:
        f.write(packages)

os.execvp("python", ["python", "-m", "http.server", "8080", "--directory", root])
`
