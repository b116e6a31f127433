// Command serbaguna is the personal multi-tool CLI.
package main

import "github.com/mesh-intelligence/serbaguna/internal/cli"

func main() {
	cli.Execute()
}
