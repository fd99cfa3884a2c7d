package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/tutortime/tutortime"
	"github.com/tutortime/tutortime/config"
	"github.com/tutortime/tutortime/mailer"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	ctx := context.Background()

	db, err := tutortime.OpenDatabase(cfg.Db.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := tutortime.Migrate(ctx, db, nil); err != nil {
		log.Fatal(err)
	}

	repo := tutortime.NewRepositoryManager(db)

	provider := tutortime.NewUserProvider(repo.Users())

	auther := tutortime.NewAuthenticator(provider, cfg.GetAuth())

	slots := tutortime.NewSlotStateMachine(repo.Appointments())

	smtp := mailer.NewClient(&cfg.Smtp)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: true,
			StrictRouting:     false,
		}))
	})

	tutortime.RegisterRoutes(srv.Router(), tutortime.RouteDeps{
		Config: cfg.GetAuth(),
		Repo:   repo,
		Auther: auther,
		Slots:  slots,
		Mailer: smtp,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		if err := srv.Serve(addr); err != nil {
			log.Fatal(err)
		}
	}()

	WaitExitSignal()
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
