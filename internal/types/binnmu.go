package types

import (
	"fmt"
	"strings"
)

// BinaryPackage is one paragraph of a binary package index. Only the
// fields the Multi-Arch scan needs are modeled.
type BinaryPackage struct {
	Package   string
	Source    string
	MultiArch string
}

// SourceName resolves the source package the binary was built from.
// A missing Source field means the source shares the binary's name; a
// trailing parenthesized version annotation is dropped.
func (b BinaryPackage) SourceName() string {
	if b.Source == "" {
		return b.Package
	}
	fields := strings.Fields(b.Source)
	if len(fields) == 0 {
		return b.Package
	}
	return fields[0]
}

// RebuildDirective is one binNMU the engine proposes: rebuild the
// given source version on the listed architectures, or on any single
// architecture when AnyArchitecture is set.
type RebuildDirective struct {
	Source          string
	Version         string
	Architectures   []Architecture
	AnyArchitecture bool
}

// ArchitectureList renders the architecture part of the wanna-build
// command: the literal ANY, or the explicit space-separated list in
// signer-map order.
func (d RebuildDirective) ArchitectureList() string {
	if d.AnyArchitecture {
		return "ANY"
	}
	tokens := make([]string, 0, len(d.Architectures))
	for _, arch := range d.Architectures {
		tokens = append(tokens, arch.String())
	}
	return strings.Join(tokens, " ")
}

// WBCommand renders the directive as a wanna-build nmu command for the
// given target suite and justification message.
func (d RebuildDirective) WBCommand(suite string, message string) string {
	return fmt.Sprintf("nmu %s_%s . %s . %s . -m %q",
		d.Source, d.Version, d.ArchitectureList(), suite, message)
}
