// Command sdkgen is the thin CLI front end for the cross-compilation
// SDK bundle assembler. Per spec §1/§6 it only parses flags and
// dispatches into internal/recipe; all engineering lives in the core
// packages.
package main

func main() {
	Execute()
}
