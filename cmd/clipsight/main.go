package main

import "github.com/ddudnik/clipsight/internal/cli"

func main() {
	cli.Main()
}
