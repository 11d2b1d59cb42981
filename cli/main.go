// ABOUTME: Entry point for the sparkcalc CLI
// ABOUTME: Runs electrical calculations locally or against the SparkCalc API

package main

import (
	"fmt"
	"os"

	"github.com/sparkcalc/sparkcalc/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
