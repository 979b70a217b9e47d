package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"

	"github.com/lightingmap/go-client/api"
	"github.com/lightingmap/go-client/internal/config"
	"github.com/lightingmap/go-client/session"
	"github.com/lightingmap/go-client/token/refresh"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running client: %s\n", err)
	}
	log.Printf("Client stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	storage, err := session.NewFileStorage(c.GetDataFolder())
	if err != nil {
		return fmt.Errorf("session.NewFileStorage: %w", err)
	}

	authClient := api.NewAuthClient(c.GetBaseURL())
	store, err := session.NewStore(storage, authClient)
	if err != nil {
		return fmt.Errorf("session.NewStore: %w", err)
	}
	store.Restore()

	coordinator, err := refresh.NewCoordinator(store, authClient,
		refresh.WithLeadTime(c.GetRefreshLeadTime()),
		refresh.WithCheckInterval(c.GetExpiryCheckInterval()),
	)
	if err != nil {
		return fmt.Errorf("refresh.NewCoordinator: %w", err)
	}

	client, err := api.NewClient(c.GetBaseURL(), store, coordinator,
		api.WithTimeout(c.GetRequestTimeout()),
	)
	if err != nil {
		return fmt.Errorf("api.NewClient: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !store.Authenticated() {
		if err := login(ctx, store); err != nil {
			return err
		}
	}
	coordinator.Start(ctx)
	defer coordinator.Stop()

	comuni, err := client.ListComuni(ctx)
	if err != nil {
		return fmt.Errorf("client.ListComuni: %w", err)
	}
	for _, comune := range comuni {
		log.Printf("%s (%s) - %d lamps\n", comune.Name, comune.Province, comune.LampCount)
	}

	waitForStopSignal()
	return nil
}

func login(ctx context.Context, store *session.Store) error {
	email := os.Getenv("LM_EMAIL")
	password := os.Getenv("LM_PASSWORD")
	if email == "" || password == "" {
		return errors.New("no stored session: set LM_EMAIL and LM_PASSWORD to log in")
	}
	user, err := store.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("store.Login: %w", err)
	}
	log.Printf("Logged in as %s\n", user.FullName())
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
