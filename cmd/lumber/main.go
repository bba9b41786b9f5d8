// Command lumber is a small demonstration harness for the resolution
// engine in pkg/lumber: it loads a JSON-encoded set of ground facts and
// a query, builds a Database and Question from them through the engine's
// public seams (BuildDatabase, NewQuestion), and prints every answer.
//
// It is deliberately not a Lumber-language interpreter: parsing the
// source language is out of the engine's scope (spec.md §1), so this
// harness speaks a tiny JSON fact format instead of Lumber syntax.
package main

import (
	"fmt"
	"os"

	"github.com/lumber-lang/lumber/cmd/lumber/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
