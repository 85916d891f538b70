package main

import (
	"os"

	"github.com/Z3rio/frs-manager/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
