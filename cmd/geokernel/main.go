// Command geokernel inspects, merges, compares and stores geometric
// models.
package main

import "github.com/mesh-intelligence/geokernel/internal/cli"

func main() {
	cli.Execute()
}
