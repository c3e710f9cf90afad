package main

import (
	"fmt"
	"os"

	"github.com/sirosfoundation/go-netvisor/cmd/netvisor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
