package main

import "github.com/storacha/sandbox/cmd/cli"

func main() {
	cli.Execute()
}
