package main

import "github.com/mcoot/lanterngame/internal/cli"

func main() {
	cli.Execute()
}
