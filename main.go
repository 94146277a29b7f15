package main

import (
	"context"
	"os"

	"github.com/eudai-lab/eudaimon/pkg/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		os.Exit(1)
	}
}
