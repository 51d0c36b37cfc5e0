package main

import "github.com/ppiankov/mtm/internal/cli"

func main() {
	cli.Execute()
}
