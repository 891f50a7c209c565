// Package main provides the AWS Lambda entrypoint for gh-cleanowners-app.
package main

import (
	"fmt"
	"os"

	"github.com/isometry/gh-cleanowners-app/cmd"
)

func main() {
	root := cmd.New()
	root.SetArgs([]string{cmd.ModeLambda})
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
