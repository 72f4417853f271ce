package main

import (
	"context"
	"fmt"
	"os"

	"github.com/example/nextaction/internal/cli"
)

func main() {
	if err := cli.RootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
