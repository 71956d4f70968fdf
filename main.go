// Package main is the entry point for the dtokit jokes API and its tools.
package main

import (
	"context"
	"log"
	"os"

	"dtokit/src/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}
