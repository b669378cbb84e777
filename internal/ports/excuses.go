// Package ports defines the interfaces between the application layer
// and its collaborators: snapshot and index readers, the archive
// mirror, and the directive sink.
package ports

import (
	"github.com/kianmeng/drt-tools/internal/types"
)

// ExcusesPort loads an excuses snapshot from a local file.
type ExcusesPort interface {
	Load(path string) (types.Excuses, error)
}
