package main

import "launchpad-client/internal/cli"

func main() {
	cli.Execute()
}
