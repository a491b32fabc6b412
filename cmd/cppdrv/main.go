package main

import (
	"os"

	"github.com/cppdrv/cppdrv"

	_ "github.com/cppdrv/cppdrv/pass/builtin"
)

func main() {
	os.Exit(cppdrv.Run(os.Args, 0, nil))
}
