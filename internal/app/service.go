// Package app wires the ports together into the operations the CLI
// exposes.
package app

import (
	"time"

	"github.com/kianmeng/drt-tools/internal/adapters"
	"github.com/kianmeng/drt-tools/internal/ports"
)

type Service struct {
	Mirror          ports.MirrorPort
	Excuses         ports.ExcusesPort
	Packages        ports.PackagesPort
	Bugs            ports.BugsPort
	DirectiveWriter ports.DirectiveWriterPort
	Clock           func() time.Time
}

func NewService() Service {
	return Service{
		Mirror:          adapters.NewMirrorHTTPAdapter(),
		Excuses:         adapters.NewExcusesFileAdapter(),
		Packages:        adapters.NewPackagesFileAdapter(),
		Bugs:            adapters.NewBugsFileAdapter(),
		DirectiveWriter: adapters.NewDirectiveWriterAdapter(),
		Clock:           time.Now,
	}
}
