package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/wealthwise/wealthwise/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", client.UserMessage(err))
		os.Exit(1)
	}
}
