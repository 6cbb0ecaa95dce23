// Package main provides the oggextract CLI tool.
//
// Usage:
//
//	oggextract [flags] <command> [args]
//
// Commands:
//
//	probe    - Report codec, format and duration of Ogg streams
//	dump     - List the samples of a stream
//	rtp      - Packetize a stream into an RTP dump
//	config   - Configuration management
//	version  - Print the version
//
// Configuration:
//
//	The CLI stores configuration in ~/.oggextract/
//	Use 'oggextract config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/oggextract/cmd/oggextract/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
