// Package types holds the data model shared across drt-tools: the
// excuses snapshot produced by the testing migration software, the
// binary package index entries, and the rebuild directives emitted by
// the decision engine.
package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Excuses is the root of an excuses.yaml snapshot.
type Excuses struct {
	// GeneratedDate is kept as the raw feed string; nothing downstream
	// computes with it.
	GeneratedDate string `yaml:"generated-date"`
	// Sources lists one item per pending migration. Not every item is
	// a source package, but the feed names the field that way.
	Sources []ExcusesItem `yaml:"sources"`
}

// ExcusesItem is one migration candidate with its policy verdicts.
type ExcusesItem struct {
	Maintainer                string         `yaml:"maintainer"`
	IsCandidate               bool           `yaml:"is-candidate"`
	NewVersion                string         `yaml:"new-version"`
	OldVersion                string         `yaml:"old-version"`
	ItemName                  string         `yaml:"item-name"`
	Source                    string         `yaml:"source"`
	InvalidatedByOtherPackage *bool          `yaml:"invalidated-by-other-package"`
	Component                 *Component     `yaml:"component"`
	MissingBuilds             *MissingBuilds `yaml:"missing-builds"`
	PolicyInfo                *PolicyInfo    `yaml:"policy_info"`
	Excuses                   []string       `yaml:"excuses"`
}

// MissingBuilds lists architectures with no binary at all.
type MissingBuilds struct {
	OnArchitectures []Architecture `yaml:"on-architectures"`
}

// AgeInfo is the age policy's sub-record.
type AgeInfo struct {
	AgeRequirement int     `yaml:"age-requirement"`
	CurrentAge     int     `yaml:"current-age"`
	Verdict        Verdict `yaml:"verdict"`
}

// UnknownPolicyInfo captures the verdict of any policy the tool does
// not inspect by name.
type UnknownPolicyInfo struct {
	Verdict Verdict `yaml:"verdict"`
}

// ArchSigner records who signed the upload of the binary for one
// architecture. An empty Signer means the feed carried no signer.
type ArchSigner struct {
	Architecture Architecture
	Signer       string
}

// BuiltOnBuildd is the build-provenance policy's sub-record. SignedBy
// preserves the order the feed lists the architectures in, which is
// also the order architectures appear in emitted directives.
type BuiltOnBuildd struct {
	SignedBy []ArchSigner
	Verdict  Verdict
}

func (b *BuiltOnBuildd) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("builtonbuildd: expected mapping, got %s", nodeKind(node))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]
		switch key {
		case "signed-by":
			if err := b.decodeSigners(value); err != nil {
				return err
			}
		case "verdict":
			if err := value.Decode(&b.Verdict); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *BuiltOnBuildd) decodeSigners(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("signed-by: expected mapping, got %s", nodeKind(node))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var arch Architecture
		if err := node.Content[i].Decode(&arch); err != nil {
			return err
		}
		var signer string
		// A null signer stays empty: the binary exists but the feed
		// does not know who produced it.
		if node.Content[i+1].Tag != "!!null" {
			if err := node.Content[i+1].Decode(&signer); err != nil {
				return err
			}
		}
		b.SignedBy = append(b.SignedBy, ArchSigner{Architecture: arch, Signer: signer})
	}
	return nil
}

// PolicyInfo bundles the two policies the engine inspects by name and
// an open-ended bag for everything else the feed may grow.
type PolicyInfo struct {
	Age           *AgeInfo
	BuiltOnBuildd *BuiltOnBuildd
	Extras        map[string]UnknownPolicyInfo
}

func (p *PolicyInfo) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("policy_info: expected mapping, got %s", nodeKind(node))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]
		switch key {
		case "age":
			age := &AgeInfo{}
			if err := value.Decode(age); err != nil {
				return err
			}
			p.Age = age
		case "builtonbuildd":
			b := &BuiltOnBuildd{}
			if err := value.Decode(b); err != nil {
				return err
			}
			p.BuiltOnBuildd = b
		default:
			// Unknown policies are kept by name with their verdict so
			// the engine can still require them all to pass.
			var info UnknownPolicyInfo
			if value.Kind == yaml.MappingNode {
				if err := value.Decode(&info); err != nil {
					return err
				}
			}
			if p.Extras == nil {
				p.Extras = map[string]UnknownPolicyInfo{}
			}
			p.Extras[key] = info
		}
	}
	return nil
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
