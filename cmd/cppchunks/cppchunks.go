package main

import (
	"fmt"
	"os"

	"github.com/cppdrv/cppdrv/cpp/chunk"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: cppchunks <cpp-command-line>\n")
}

// cppchunks prints how a command line would be classified: one chunk per
// argument position (consumed ones shown empty) plus the extracted
// driver-private options.
func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	ret, err := chunk.Classify(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for i, c := range ret.Chunks {
		fmt.Printf("%d: %q\n", i, []string(c))
	}
	fmt.Printf("options: %+v\n", ret.Options)
}
