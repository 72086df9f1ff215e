package main

import (
	"github.com/PIH/iniz-exporters/cmd"
)

// version is set via ldflags during build
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
