// cmd/mathsolver: HTTP server and command-line front end for the solver.
//
// Usage:
//
//	mathsolver serve --config configs/mathsolver.yaml
//	mathsolver solve "2x + 3 = 7" --pretty
//	mathsolver detect "lim x->0 sin(x)/x"
//	mathsolver train --out models/classifier.json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
