package adapters

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/kianmeng/drt-tools/internal/ports"
	"github.com/kianmeng/drt-tools/internal/types"
)

type PackagesFileAdapter struct{}

func NewPackagesFileAdapter() PackagesFileAdapter {
	return PackagesFileAdapter{}
}

// Load streams a binary package index, one RFC822-style paragraph per
// package, keeping only the Package, Source, and Multi-Arch fields.
func (a PackagesFileAdapter) Load(path string) ([]types.BinaryPackage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("packages file not found: %s", path)).
			WithCause(err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("failed to read gzipped packages file: %s", path)).
				WithCause(err)
		}
		defer gz.Close()
		reader = gz
	}

	packages, err := ParsePackages(reader)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid packages file: %s", path)).
			WithCause(err)
	}
	return packages, nil
}

// ParsePackages parses binary package paragraphs from a reader.
// Continuation lines and unknown fields are skipped; a paragraph
// without a Package field is malformed.
func ParsePackages(reader io.Reader) ([]types.BinaryPackage, error) {
	var packages []types.BinaryPackage
	var current types.BinaryPackage
	seenField := false

	flush := func() error {
		if !seenField {
			return nil
		}
		if current.Package == "" {
			return fmt.Errorf("paragraph without Package field")
		}
		packages = append(packages, current)
		current = types.BinaryPackage{}
		seenField = false
		return nil
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			// continuation of a field we do not track
			continue
		}
		name, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("malformed field line %q", line)
		}
		value = strings.TrimSpace(value)
		switch name {
		case "Package":
			current.Package = value
			seenField = true
		case "Source":
			current.Source = value
			seenField = true
		case "Multi-Arch":
			current.MultiArch = value
			seenField = true
		default:
			seenField = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return packages, nil
}

var _ ports.PackagesPort = PackagesFileAdapter{}
