package cli

import (
	"context"
	"log"
	"os"
)

func (a *App) login(ctx context.Context) {
	userName, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	if err := a.core.Login(ctx, userName, string(password)); err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return
	}

	a.userName = userName
	log.Printf("Login successful")
}

func (a *App) register(ctx context.Context) {
	userName, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	currency, err := GetTextWithDefault(a.reader, "Default currency", "USD", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	if err := a.core.Register(ctx, userName, string(password), currency); err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return
	}

	a.userName = userName
	log.Printf("Registration successful")
}
