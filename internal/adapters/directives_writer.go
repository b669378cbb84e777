package adapters

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/kianmeng/drt-tools/internal/ports"
	"github.com/kianmeng/drt-tools/internal/types"
)

// StdoutPath selects standard output as the directive sink.
const StdoutPath = "-"

type DirectiveWriterAdapter struct {
	// Out overrides standard output, for tests.
	Out io.Writer
}

func NewDirectiveWriterAdapter() *DirectiveWriterAdapter {
	return &DirectiveWriterAdapter{}
}

// Write renders one wanna-build command per directive.
func (a *DirectiveWriterAdapter) Write(path string, directives []types.RebuildDirective, suite string, message string) error {
	var builder strings.Builder
	for _, directive := range directives {
		builder.WriteString(directive.WBCommand(suite, message))
		builder.WriteString("\n")
	}
	if path == StdoutPath || strings.TrimSpace(path) == "" {
		out := a.Out
		if out == nil {
			out = os.Stdout
		}
		_, err := io.WriteString(out, builder.String())
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write directives").
				WithCause(err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to create output directory for %s", path)).
			WithCause(err)
	}
	if err := os.WriteFile(path, []byte(builder.String()), 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to write directives to %s", path)).
			WithCause(err)
	}
	return nil
}

var _ ports.DirectiveWriterPort = (*DirectiveWriterAdapter)(nil)
