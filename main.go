// Package main is the entry point for the zigtestgen CLI.
package main

import "zigtestgen.dev/pkg/zigtestgen/cmd"

func main() {
	cmd.Execute()
}
