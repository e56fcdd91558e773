package main

import (
	"os"

	"github.com/scan-io-git/dfaudit/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
