package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/tutortime/tutortime"
	"github.com/tutortime/tutortime/config"
)

// Seeds an admin account. Safe to rerun, an existing email aborts without
// touching the record.
func main() {
	configPath := flag.String("config", "config.yml", "path to the config file")
	email := flag.String("email", "admin@tutortime.local", "admin email")
	name := flag.String("name", "Administrator", "admin display name")
	password := flag.String("password", "", "admin password, required")
	flag.Parse()

	if *password == "" {
		log.Fatal("missing -password")
	}

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

	hash, err := tutortime.HashPassword(*password)
	if err != nil {
		log.Fatal(err)
	}

	admin := &tutortime.User{
		Name:         *name,
		Email:        tutortime.NormalizeEmail(*email),
		Role:         tutortime.RoleAdmin,
		PasswordHash: hash,
		Admitted:     true,
	}

	if id, err := hashid.NewUUID(admin.Email); err == nil {
		admin.ID = id
	}

	created, err := repo.Users().Register(ctx, admin)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("admin created: %s (%s)\n", created.Email, created.ID)
}
