// Command tagpack validates TagPacks and ActorPacks, loads them into the tag
// store and computes digests offline.
//
// Usage:
//
//	tagpack [flags] <command> [args]
//
// Commands:
//
//	validate - check pack files without touching the database
//	insert   - validate and insert pack files
//	digest   - print the tag digest of every subject in a TagPack
//	token    - issue a bearer token for the HTTP API
package main

import (
	"fmt"
	"os"

	"github.com/yourorg/tagpack-service/cmd/tagpack/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
