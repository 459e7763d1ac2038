package main

import (
	"github.com/NVIDIA/cpr-recipe/pkg/cli"
)

func main() {
	cli.Execute()
}
