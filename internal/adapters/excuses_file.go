// Package adapters implements the ports against the filesystem and
// the Debian archive's HTTP endpoints.
package adapters

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"github.com/kianmeng/drt-tools/internal/ports"
	"github.com/kianmeng/drt-tools/internal/types"
)

type ExcusesFileAdapter struct{}

func NewExcusesFileAdapter() ExcusesFileAdapter {
	return ExcusesFileAdapter{}
}

// Load reads and deserializes an excuses.yaml snapshot. Gzip-compressed
// files are handled transparently. A structural parse failure is fatal
// and names the document.
func (a ExcusesFileAdapter) Load(path string) (types.Excuses, error) {
	file, err := os.Open(path)
	if err != nil {
		return types.Excuses{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("excuses file not found: %s", path)).
			WithCause(err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return types.Excuses{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("failed to read gzipped excuses file: %s", path)).
				WithCause(err)
		}
		defer gz.Close()
		reader = gz
	}

	var excuses types.Excuses
	if err := yaml.NewDecoder(reader).Decode(&excuses); err != nil {
		return types.Excuses{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid excuses format: %s", path)).
			WithCause(err)
	}
	return excuses, nil
}

var _ ports.ExcusesPort = ExcusesFileAdapter{}
