package main

import "github.com/ogulcanaydogan/cost-manager/internal/cli"

func main() {
	cli.Execute()
}
