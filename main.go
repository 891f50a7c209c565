// Package main provides the entrypoint for gh-cleanowners-app.
package main

import (
	"fmt"
	"os"

	"github.com/isometry/gh-cleanowners-app/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
