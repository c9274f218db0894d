package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) retry(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: retry <capture id|all>")
		return
	}

	if args[0] == "all" {
		n := a.core.RetryAllFailed(ctx)
		fmt.Printf("Retrying %d captures\n", n)
		return
	}

	if err := a.core.RetryCapture(ctx, args[0]); err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Println("Retrying capture", args[0])
}
