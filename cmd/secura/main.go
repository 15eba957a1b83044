// Package main — entry point of the secura signaling service (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/Sheeddhartho/Secura/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
