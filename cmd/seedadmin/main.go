package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"

	"github.com/tanushree1025/DESIGN-THEETA/internal/config"
	"github.com/tanushree1025/DESIGN-THEETA/internal/core/domain"
	"github.com/tanushree1025/DESIGN-THEETA/internal/platform/logger"
	"github.com/tanushree1025/DESIGN-THEETA/internal/plugins/postgres"
)

type seedConfig struct {
	Name     string `env:"SEED_ADMIN_NAME, default=Super Admin"`
	Email    string `env:"SEED_ADMIN_EMAIL, default=admin@designtheeta.com"`
	Password string `env:"SEED_ADMIN_PASSWORD, default=admin123"`
}

// Bootstraps the first admin account. Safe to run repeatedly.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}
	var seed seedConfig
	if err := envconfig.Process(ctx, &seed); err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg)

	pdb, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "err", err)
		os.Exit(1)
	}
	defer pdb.Close()

	users := postgres.NewUserRepository(pdb)

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("password hash failed", "err", err)
		os.Exit(1)
	}

	// lookup and insert run in one transaction so concurrent seed runs
	// cannot both create the account
	err = postgres.WithTx(ctx, pdb, func(txCtx context.Context) error {
		existing, err := users.GetByEmail(txCtx, seed.Email)
		if err == nil {
			log.Info("admin already exists", "email", existing.Email)
			return nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		admin := &domain.User{
			ID:           uuid.New(),
			Name:         seed.Name,
			Email:        seed.Email,
			PasswordHash: string(hash),
			Role:         domain.RoleAdmin,
		}
		if err := users.Create(txCtx, admin); err != nil {
			return err
		}
		log.Info("admin created", "email", admin.Email)
		return nil
	})
	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
}
