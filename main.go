package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/projecteru2/hatchery/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130) //nolint:mnd // 128 + SIGINT
		}
		os.Exit(1)
	}
}
