// Command echoserver starts a local target for trying courier requests.
// Usage: go run ./cmd/echoserver [port]
// Default port: 9999
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/raysh454/courier/internal/echoserver"
)

func main() {
	cfg := echoserver.DefaultConfig()

	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	fmt.Println("Routes:")
	fmt.Println("  GET  /json           JSON document")
	fmt.Println("  GET  /text           plain text (falls back to {\"raw\": ...})")
	fmt.Println("  GET  /html           HTML page with a <title>")
	fmt.Println("  GET  /latin1         ISO-8859-1 encoded text")
	fmt.Println("  ANY  /empty          204 with no body")
	fmt.Println("  ANY  /echo           reflects method, headers and body")
	fmt.Println("  ANY  /status/{code}  responds with the given status")
	fmt.Println("  ANY  /counter        increasing count, for history diffs")
	fmt.Println()

	server := echoserver.NewEchoServer(cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
