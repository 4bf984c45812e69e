package main

import (
	"os"

	"github.com/verblevel/verblevel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
