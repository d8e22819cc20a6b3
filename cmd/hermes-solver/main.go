// Idiomatic entrypoint for the cobra CLI; the command tree itself lives
// in internal/cli.
package main

import (
	"github.com/fknop/hermes/internal/cli"
)

func main() {
	cli.Execute()
}
