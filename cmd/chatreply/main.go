// Command chatreply sends a conversation to any supported provider and
// streams the reply to stdout.
//
// Usage:
//
//	chatreply ask --provider openai --model gpt-4o-mini "Tell me a joke"
//	chatreply ask --provider lorem --model lorem-slow hello   # no key needed, Ctrl-C to stop
//	chatreply providers
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
