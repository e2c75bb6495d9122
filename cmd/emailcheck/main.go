package main

import (
	"os"

	"github.com/dalemusser/emailcheck/internal/cli"
)

func main() {
	os.Exit(cli.Run("emailcheck", os.Args[1:]))
}
