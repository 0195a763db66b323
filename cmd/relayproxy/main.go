// Command relayproxy runs the HTTP recording/replaying proxy server.
package main

import "github.com/esse/relayproxy/internal/cli"

func main() {
	cli.Execute()
}
