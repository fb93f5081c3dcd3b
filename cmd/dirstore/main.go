// Package main provides the dirstore CLI.
package main

import "github.com/mesh-intelligence/dirstore/internal/cli"

func main() {
	cli.Execute()
}
