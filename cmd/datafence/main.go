package main

import "github.com/finvault/datafence/internal/cli"

func main() {
	cli.Execute()
}
