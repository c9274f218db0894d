package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
)

// addText captures a typed expense phrase. The text may come inline with the
// command; otherwise the user is prompted.
func (a *App) addText(ctx context.Context, inline string) {
	text := inline
	if text == "" {
		var err error
		text, err = GetSimpleText(a.reader, "Describe the expense (e.g. \"spent 150 pesos on tacos\")", os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
	}

	id, err := a.core.AddTextCapture(ctx, text, "", "")
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Println("Queued capture", id)
}

// addVoice captures an already recorded voice memo: the CLI has no
// microphone, so it takes a file path plus its duration.
func (a *App) addVoice(ctx context.Context) {
	path, err := GetSimpleText(a.reader, "Path to the audio file", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	durText, err := GetSimpleText(a.reader, "Duration in seconds", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	duration, err := strconv.ParseFloat(durText, 64)
	if err != nil {
		log.Printf("error: invalid duration %q", durText)
		return
	}

	transcript, err := GetTextWithDefault(a.reader, "Transcript (optional)", "", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	id, err := a.core.AddVoiceCapture(ctx, path, duration, transcript, "", "")
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	fmt.Println("Queued capture", id)
}
