package main

import "github.com/mcoot/gamematch/internal/cli"

func main() {
	cli.Execute()
}
