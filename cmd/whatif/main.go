package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/danielpatrickdp/whatif-engine/internal/cli"
)

// #region main
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "whatif:", err)
		stop()
		os.Exit(1)
	}
}
// #endregion main
