package main

import (
	"os"

	"sanctuary-app/internal/app/cli"
)

func main() {
	os.Exit(cli.Execute())
}
