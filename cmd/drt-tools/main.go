package main

import (
	"github.com/kianmeng/drt-tools/internal/cli"
)

func main() {
	cli.Execute()
}
