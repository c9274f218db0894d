package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/models"
)

var errc = color.New(color.BgRed, color.FgWhite).PrintfFunc()

func timeNowZone() (string, int) {
	return time.Now().Zone()
}

// statusBadge renders a queue status as a colored tag.
func statusBadge(s models.CaptureStatus) string {
	switch s {
	case models.StatusPending:
		return color.New(color.BgYellow, color.FgBlack).Sprintf(" %s ", s)
	case models.StatusSyncing:
		return color.New(color.BgBlue, color.FgWhite).Sprintf(" %s ", s)
	case models.StatusNeedsReview:
		return color.New(color.BgMagenta, color.FgWhite).Sprintf(" %s ", s)
	case models.StatusSaved:
		return color.New(color.BgGreen, color.FgBlack).Sprintf(" %s ", s)
	case models.StatusFailed:
		return color.New(color.BgRed, color.FgWhite).Sprintf(" %s ", s)
	default:
		return string(s)
	}
}

func formatCapture(c models.QueuedCapture) string {
	line := fmt.Sprintf("%s %s  %s", c.ID, statusBadge(c.Status), c.RawText)
	if c.Source == models.SourceVoice {
		line += fmt.Sprintf("  [voice %.1fs]", c.AudioDurationSeconds)
	}
	if c.LastError != "" {
		line += fmt.Sprintf("  (%s, retries: %d)", c.LastError, c.RetryCount)
	}
	return line
}

func formatExpense(e models.ExpenseRecord) string {
	return fmt.Sprintf("%s  %s  %s %s  %s  %s",
		e.ID,
		e.ExpenseDate.Format("2006-01-02"),
		e.Amount.StringFixed(2), e.Currency,
		e.Category,
		e.Description,
	)
}
