package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/core"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
)

// review walks the user through confirming a needs-review capture. The
// parsed draft prefills every field; Enter keeps a value. An invalid amount
// keeps the review open so the user can correct it.
func (a *App) review(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: review <capture id>")
		return
	}
	id := args[0]

	var item *models.QueuedCapture
	for _, c := range a.core.Captures() {
		if c.ID == id {
			item = &c
			break
		}
	}
	if item == nil || item.Status != models.StatusNeedsReview || item.ParsedDraft == nil {
		fmt.Println("No capture awaiting review with id", id)
		return
	}
	draft := item.ParsedDraft

	fmt.Println("Captured:", item.RawText)

	for {
		amount, err := GetTextWithDefault(a.reader, "Amount", draft.Amount.String(), os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
		currency, err := GetTextWithDefault(a.reader, "Currency", draft.Currency, os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
		category, err := GetTextWithDefault(a.reader, "Category", draft.Category, os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
		date, err := GetTextWithDefault(a.reader, "Date (YYYY-MM-DD)", draft.ExpenseDate.Format("2006-01-02"), os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
		description, err := GetTextWithDefault(a.reader, "Description", draft.Description, os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}

		err = a.core.ReviewSave(ctx, id, core.ReviewEdit{
			Amount:      amount,
			Currency:    currency,
			Category:    category,
			ExpenseDate: date,
			Description: description,
		})
		if errors.Is(err, core.ErrInvalidAmount) {
			errc("%s\n", err.Error())
			continue
		}
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
		fmt.Println("Expense saved")
		return
	}
}
