// Package cli is the interactive terminal frontend: a small REPL over the
// client core.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aguerraochoa/Speakance-sub000/internal/client/api"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/config"
	"github.com/aguerraochoa/Speakance-sub000/internal/client/core"
	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
)

type App struct {
	config   *config.Config
	core     *core.Core
	reader   *bufio.Reader
	userName string
}

func NewApp(c *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	apiClient := api.New(c.ServerAddr, c.RequestTimeout, log)

	tz := "UTC"
	if name := timeZoneName(); name != "" {
		tz = name
	}

	cr := core.New(core.Options{
		Config:        c,
		API:           apiClient,
		Log:           log,
		Timezone:      tz,
		AllowAutoSave: true,
	})

	return &App{config: c, core: cr, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) status() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.core.Online() {
		s += "online"
	} else {
		s += "offline"
	}
	return fmt.Sprintf("(%s)", s)
}

// showOpError prints and clears the operational error banner, if set.
func (a *App) showOpError() {
	if msg := a.core.OperationalError(); msg != "" {
		errc("%s\n", msg)
		a.core.ClearOperationalError()
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.core.Close()

	fmt.Println("Welcome to Speakance CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	go a.core.StartOnlineWatcher(ctx, a.config.OnlineCheckInterval)

	for {
		a.showOpError()
		fmt.Printf("spk %s> ", a.status())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			a.help()
		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "add":
			a.addText(ctx, strings.Join(args, " "))
		case "addvoice":
			a.addVoice(ctx)
		case "q", "queue":
			a.listQueue()
		case "l", "list":
			a.listExpenses()
		case "deleted":
			a.listDeleted()
		case "retry":
			a.retry(ctx, args)
		case "review":
			a.review(ctx, args)
		case "delcap":
			a.deleteCapture(args)
		case "delete":
			a.deleteExpense(ctx, args)
		case "restore":
			a.restore(args)
		case "purge":
			a.purge(ctx)
		case "sync":
			a.core.Sync(ctx)
			fmt.Println("Sync started")
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

func (a *App) help() {
	fmt.Println("Available commands:")
	fmt.Println("  add [text]   capture a typed expense")
	fmt.Println("  addvoice     capture a recorded voice memo")
	fmt.Println("  queue (q)    show the capture queue")
	fmt.Println("  list (l)     show saved expenses")
	fmt.Println("  deleted      show recently deleted expenses")
	fmt.Println("  retry <id|all>")
	fmt.Println("  review <id>  confirm a needs-review capture")
	fmt.Println("  delcap <id>  remove a queue entry")
	fmt.Println("  delete <id>  delete a saved expense")
	fmt.Println("  restore <id> bring back a recently deleted expense")
	fmt.Println("  purge        drop expired deleted expenses")
	fmt.Println("  sync         run all background synchronization now")
	fmt.Println("  register / login / exit")
}

// timeZoneName returns the device's zone, best effort: the TZ variable if
// set, otherwise the local zone abbreviation.
func timeZoneName() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	name, _ := timeNowZone()
	return name
}
