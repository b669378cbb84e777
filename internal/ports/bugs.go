package ports

import (
	"github.com/kianmeng/drt-tools/internal/types"
)

// BugsPort loads a UDD bug dump from a local file.
type BugsPort interface {
	Load(path string) ([]types.Bug, error)
}
