// Command jscore runs scripts on the tree-walking engine, evaluates
// snippets, hosts a REPL and drives test262 runs.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
