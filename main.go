package main

import (
	"os"

	"react-intl-lint/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
