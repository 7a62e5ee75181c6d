package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/you/hrplusauth/internal/config"
	"github.com/you/hrplusauth/internal/infrastructure/auth"
	"github.com/you/hrplusauth/internal/infrastructure/database"
	"github.com/you/hrplusauth/internal/infrastructure/repositories"
	"github.com/you/hrplusauth/internal/logging"
	"github.com/you/hrplusauth/internal/seed"
)

func main() {
	usersPath := flag.String("users", "config/users.example.yml", "YAML file with the users to create")
	flag.Parse()

	if err := run(*usersPath); err != nil {
		fmt.Fprintf(os.Stderr, "seed-users: %v\n", err)
		os.Exit(1)
	}
}

func run(usersPath string) error {
	log := logging.Setup("hrplus-seed", "text", nil)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	users, err := seed.LoadUsers(usersPath)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	res, err := seed.Users(context.Background(), repositories.NewUserRepository(db), auth.NewPasswordService(), users)
	if err != nil {
		return err
	}
	log.Info("users seeded", "created", res.Created, "skipped", res.Skipped)
	return nil
}
