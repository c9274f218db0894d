package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) deleteCapture(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: delcap <capture id>")
		return
	}
	if err := a.core.DeleteCapture(args[0]); err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Println("Capture removed")
}

func (a *App) deleteExpense(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: delete <expense id>")
		return
	}
	if err := a.core.DeleteExpense(ctx, args[0]); err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Println("Expense deleted (restorable for 30 days with 'restore')")
}

func (a *App) restore(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: restore <expense id>")
		return
	}
	if err := a.core.RestoreDeleted(args[0]); err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Println("Expense restored")
}

func (a *App) purge(ctx context.Context) {
	n := a.core.PurgeExpired(ctx)
	fmt.Printf("Purged %d expired deleted expenses\n", n)
}
