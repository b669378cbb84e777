// Package core implements the domain logic of drt-tools: package
// version handling, the Multi-Arch source index, the binNMU decision
// engine, and the release-critical bug index.
package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"
)

// PackageVersion is a parsed Debian package version: an optional
// epoch, the upstream version, and an optional Debian revision. Values
// are immutable once constructed.
type PackageVersion struct {
	epoch           *uint
	upstreamVersion string
	debianRevision  string
	hasRevision     bool
}

// NewPackageVersion builds a version from components, validating the
// character sets. A nil epoch means no epoch; a nil revision means a
// native package.
func NewPackageVersion(epoch *uint, upstreamVersion string, debianRevision *string) (PackageVersion, error) {
	if upstreamVersion == "" || !validVersionChars(upstreamVersion, ".+-~") {
		return PackageVersion{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid upstream version %q", upstreamVersion))
	}
	version := PackageVersion{epoch: epoch, upstreamVersion: upstreamVersion}
	if debianRevision != nil {
		if *debianRevision == "" || !validVersionChars(*debianRevision, ".+~") {
			return PackageVersion{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid Debian revision %q", *debianRevision))
		}
		version.debianRevision = *debianRevision
		version.hasRevision = true
	}
	return version, nil
}

// ParseVersion parses a version string. The epoch is everything before
// the last colon and must be an unsigned integer; the revision is
// everything after the last hyphen of the remainder, so "1.0-2-1"
// keeps "1.0-2" as the upstream version.
func ParseVersion(value string) (PackageVersion, error) {
	var epoch *uint
	remainder := value
	if idx := strings.LastIndex(remainder, ":"); idx >= 0 {
		parsed, err := strconv.ParseUint(remainder[:idx], 10, 32)
		if err != nil {
			return PackageVersion{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid epoch in %q", value)).
				WithCause(err)
		}
		e := uint(parsed)
		epoch = &e
		remainder = remainder[idx+1:]
	}
	var revision *string
	if idx := strings.LastIndex(remainder, "-"); idx >= 0 {
		r := remainder[idx+1:]
		revision = &r
		remainder = remainder[:idx]
	}
	return NewPackageVersion(epoch, remainder, revision)
}

// Epoch returns the epoch, treating a missing epoch as 0.
func (v PackageVersion) Epoch() uint {
	if v.epoch == nil {
		return 0
	}
	return *v.epoch
}

// HasEpoch reports whether an epoch was present in the input.
func (v PackageVersion) HasEpoch() bool {
	return v.epoch != nil
}

// IsNative reports whether the version has no Debian revision.
func (v PackageVersion) IsNative() bool {
	return !v.hasRevision
}

// UpstreamVersion returns the upstream component.
func (v PackageVersion) UpstreamVersion() string {
	return v.upstreamVersion
}

// DebianRevision returns the revision and whether one is present.
func (v PackageVersion) DebianRevision() (string, bool) {
	return v.debianRevision, v.hasRevision
}

// Equal reports component-wise equality: epoch with missing treated as
// 0, upstream version, and revision including its presence.
func (v PackageVersion) Equal(other PackageVersion) bool {
	return v.Epoch() == other.Epoch() &&
		v.upstreamVersion == other.upstreamVersion &&
		v.hasRevision == other.hasRevision &&
		v.debianRevision == other.debianRevision
}

// Compare returns -1, 0, or 1 under full Debian version ordering.
func (v PackageVersion) Compare(other PackageVersion) (int, error) {
	left, err := debversion.NewVersion(v.String())
	if err != nil {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to order version").
			WithCause(err)
	}
	right, err := debversion.NewVersion(other.String())
	if err != nil {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to order version").
			WithCause(err)
	}
	switch cmp := left.Compare(right); {
	case cmp < 0:
		return -1, nil
	case cmp > 0:
		return 1, nil
	default:
		return 0, nil
	}
}

// String renders the canonical form: [epoch:]upstream[-revision].
func (v PackageVersion) String() string {
	var builder strings.Builder
	if v.epoch != nil {
		fmt.Fprintf(&builder, "%d:", *v.epoch)
	}
	builder.WriteString(v.upstreamVersion)
	if v.hasRevision {
		builder.WriteString("-")
		builder.WriteString(v.debianRevision)
	}
	return builder.String()
}

func validVersionChars(value string, extra string) bool {
	for _, c := range value {
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			continue
		}
		if strings.ContainsRune(extra, c) {
			continue
		}
		return false
	}
	return true
}
