package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bryanwahyu/errexplain/internal/cli"
)

func main() {
	ctx := context.Background()

	root := cli.NewRootCmd(cli.Options{ConfigPath: os.Getenv("CONFIG_PATH")})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
