package main

import (
	"os"

	"github.com/raysh454/courier/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
