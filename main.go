package main

import (
	"fmt"
	"os"

	"github.com/yourusername/sysdiag/cmd"
)

// Version is set during build
var Version = "0.1.0"

func main() {
	if err := cmd.Execute(Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
