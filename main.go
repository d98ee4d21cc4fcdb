package main

import (
	"os"

	"github.com/di37/climate-agent-observability/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
