package main

import "bidtest/internal/cli"

func main() {
	cli.Execute()
}
