package main

import (
	"github.com/onlydole/forklift/internal/cli"
)

func main() {
	cli.Execute()
}
