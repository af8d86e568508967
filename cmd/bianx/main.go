package main

import "github.com/souvikmukherjee/util-bian-modelling/internal/cli"

func main() {
	cli.Execute()
}
