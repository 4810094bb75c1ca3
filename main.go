package main

import (
	"os"

	"github.com/weedai/weedcoco-go/cmd"
	"github.com/weedai/weedcoco-go/internal/buildinfo"
)

// Injected with -ldflags "-X main.version=... -X main.buildDate=..."
var (
	version   = "dev"
	buildDate = ""
)

func main() {
	os.Exit(cmd.Execute(buildinfo.NewContext(version, buildDate)))
}
