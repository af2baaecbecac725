// # cmd/genstub/main.go
package main

import (
	"os"

	"genstub/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
