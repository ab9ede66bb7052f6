package main

import "docmorph/internal/cli"

func main() {
	cli.Execute()
}
