package adapters

import (
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"github.com/kianmeng/drt-tools/internal/ports"
	"github.com/kianmeng/drt-tools/internal/types"
)

type BugsFileAdapter struct{}

func NewBugsFileAdapter() BugsFileAdapter {
	return BugsFileAdapter{}
}

// Load reads a UDD bug dump, a YAML list with one entry per bug.
func (a BugsFileAdapter) Load(path string) ([]types.Bug, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("bugs file not found: %s", path)).
			WithCause(err)
	}
	var bugs []types.Bug
	if err := yaml.Unmarshal(data, &bugs); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid bugs file format: %s", path)).
			WithCause(err)
	}
	return bugs, nil
}

var _ ports.BugsPort = BugsFileAdapter{}
