package ports

import (
	"github.com/kianmeng/drt-tools/internal/types"
)

// PackagesPort loads the binary package paragraphs of one
// architecture-specific index file.
type PackagesPort interface {
	Load(path string) ([]types.BinaryPackage, error)
}
