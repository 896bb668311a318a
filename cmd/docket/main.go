// Command docket manages the clients, cases and documents of a law
// practice.
package main

import "github.com/mesh-intelligence/docket/internal/cli"

func main() {
	cli.Execute()
}
