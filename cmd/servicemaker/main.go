package main

import (
	"github.com/NVIDIA/servicemaker/pkg/cli"
)

func main() {
	cli.Execute()
}
