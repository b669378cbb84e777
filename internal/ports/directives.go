package ports

import (
	"github.com/kianmeng/drt-tools/internal/types"
)

// DirectiveWriterPort renders rebuild directives as wanna-build
// commands, either to stdout or to a file.
type DirectiveWriterPort interface {
	Write(path string, directives []types.RebuildDirective, suite string, message string) error
}
