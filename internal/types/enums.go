package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Architecture is one of the release's supported build architectures.
// ArchAll is the pseudo-architecture for architecture-independent
// packages.
type Architecture string

const (
	ArchAll      Architecture = "all"
	ArchAmd64    Architecture = "amd64"
	ArchArm64    Architecture = "arm64"
	ArchArmel    Architecture = "armel"
	ArchArmhf    Architecture = "armhf"
	ArchI386     Architecture = "i386"
	ArchMips64el Architecture = "mips64el"
	ArchMipsel   Architecture = "mipsel"
	ArchPpc64el  Architecture = "ppc64el"
	ArchS390x    Architecture = "s390x"
)

// ReleaseArchitectures lists the real architectures of the release in
// the order the archive publishes them. ArchAll is deliberately absent:
// there is no binary-all index to mirror and no buildd to rebuild on.
var ReleaseArchitectures = []Architecture{
	ArchAmd64,
	ArchArm64,
	ArchArmel,
	ArchArmhf,
	ArchI386,
	ArchPpc64el,
	ArchMipsel,
	ArchMips64el,
	ArchS390x,
}

var knownArchitectures = map[Architecture]struct{}{
	ArchAll:      {},
	ArchAmd64:    {},
	ArchArm64:    {},
	ArchArmel:    {},
	ArchArmhf:    {},
	ArchI386:     {},
	ArchMips64el: {},
	ArchMipsel:   {},
	ArchPpc64el:  {},
	ArchS390x:    {},
}

// ParseArchitecture maps a lower-case token to an Architecture.
func ParseArchitecture(value string) (Architecture, bool) {
	arch := Architecture(value)
	_, ok := knownArchitectures[arch]
	return arch, ok
}

func (a *Architecture) UnmarshalYAML(node *yaml.Node) error {
	var value string
	if err := node.Decode(&value); err != nil {
		return err
	}
	arch, ok := ParseArchitecture(value)
	if !ok {
		return fmt.Errorf("unknown architecture %q", value)
	}
	*a = arch
	return nil
}

func (a Architecture) String() string {
	return string(a)
}

// Component is the archive area a source package lives in.
type Component string

const (
	ComponentMain    Component = "main"
	ComponentContrib Component = "contrib"
	ComponentNonFree Component = "non-free"
)

func (c *Component) UnmarshalYAML(node *yaml.Node) error {
	var value string
	if err := node.Decode(&value); err != nil {
		return err
	}
	switch Component(value) {
	case ComponentMain, ComponentContrib, ComponentNonFree:
		*c = Component(value)
		return nil
	default:
		return fmt.Errorf("unknown component %q", value)
	}
}

// Verdict is a migration policy's own conclusion about an item.
type Verdict string

const (
	VerdictPass                               Verdict = "PASS"
	VerdictPassHinted                         Verdict = "PASS_HINTED"
	VerdictRejectedNeedsApproval              Verdict = "REJECTED_NEEDS_APPROVAL"
	VerdictRejectedPermanently                Verdict = "REJECTED_PERMANENTLY"
	VerdictRejectedTemporarily                Verdict = "REJECTED_TEMPORARILY"
	VerdictRejectedCannotDetermineIfPermanent Verdict = "REJECTED_CANNOT_DETERMINE_IF_PERMANENT"
)

func (v *Verdict) UnmarshalYAML(node *yaml.Node) error {
	var value string
	if err := node.Decode(&value); err != nil {
		return err
	}
	switch Verdict(value) {
	case VerdictPass,
		VerdictPassHinted,
		VerdictRejectedNeedsApproval,
		VerdictRejectedPermanently,
		VerdictRejectedTemporarily,
		VerdictRejectedCannotDetermineIfPermanent:
		*v = Verdict(value)
		return nil
	default:
		return fmt.Errorf("unknown verdict %q", value)
	}
}

// Severity is the severity of a bug report, ordered from least to most
// severe.
type Severity string

const (
	SeverityWishlist  Severity = "wishlist"
	SeverityNormal    Severity = "normal"
	SeverityImportant Severity = "important"
	SeveritySerious   Severity = "serious"
	SeverityGrave     Severity = "grave"
	SeverityCritical  Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityWishlist:  0,
	SeverityNormal:    1,
	SeverityImportant: 2,
	SeveritySerious:   3,
	SeverityGrave:     4,
	SeverityCritical:  5,
}

// IsRC reports whether the severity makes a bug release-critical.
func (s Severity) IsRC() bool {
	return severityRank[s] >= severityRank[SeveritySerious]
}

func (s *Severity) UnmarshalYAML(node *yaml.Node) error {
	var value string
	if err := node.Decode(&value); err != nil {
		return err
	}
	if _, ok := severityRank[Severity(value)]; !ok {
		return fmt.Errorf("unknown severity %q", value)
	}
	*s = Severity(value)
	return nil
}
