package cli

import (
	"fmt"
)

func (a *App) listQueue() {
	items := a.core.Captures()
	if len(items) == 0 {
		fmt.Println("The capture queue is empty")
		return
	}
	for _, item := range items {
		fmt.Println(formatCapture(item))
	}
}

func (a *App) listExpenses() {
	expenses := a.core.Expenses()
	if len(expenses) == 0 {
		fmt.Println("No saved expenses")
		return
	}
	for _, e := range expenses {
		fmt.Println(formatExpense(e))
	}
}

func (a *App) listDeleted() {
	deleted := a.core.Deleted()
	if len(deleted) == 0 {
		fmt.Println("No recently deleted expenses")
		return
	}
	for _, d := range deleted {
		fmt.Printf("%s  (deleted %s)\n", formatExpense(d.Expense), d.DeletedAt.Format("2006-01-02"))
	}
}
