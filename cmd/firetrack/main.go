package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/firetrack/backend/internal/config"
	"github.com/firetrack/backend/internal/db"
	"github.com/firetrack/backend/internal/queue/asynqserver"
	"github.com/firetrack/backend/internal/queue/client"
	"github.com/firetrack/backend/internal/repository"
	"github.com/firetrack/backend/internal/service"
	"github.com/firetrack/backend/pkg/hash"
	"github.com/firetrack/backend/pkg/logger"
	"github.com/firetrack/backend/pkg/otp"

	"github.com/hibiken/asynq"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	err := run(ctx, os.Args[1], os.Args[2:], os.Stdout, openMySQL)
	if errors.Is(err, errUnknownCommand) {
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: firetrack <command> [flags]

users are selected with -user <uuid> or -email <addr>

commands:
  register -email <addr> -password <p>   create a user and send its activation code
  issue    -user|-email                  issue or refresh the activation code and print it
  notify   -user|-email                  issue or refresh the activation code and send it
  activate -user|-email -code <n>        validate a code and activate the user
  revoke   -user|-email                  delete the activation code of a user
  purge                                  delete every expired activation code
  demo     -email <addr>                 walk through activation against an in-memory store

codes are delivered through the email queue when REDIS_TYPE is set, and printed otherwise`)
}

// openMySQL builds services backed by the MySQL store configured in the environment.
func openMySQL(ctx context.Context, out io.Writer) (*service.Services, func(), error) {
	cfg, err := config.LoadStore()
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	logger.SetupLogger(config.EnvProd, cfg.LogLevel)

	dbMySQL, err := db.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql connect: %w", err)
	}
	closers := []func() error{dbMySQL.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		logger.Sync()
	}

	if err := db.Migrate(ctx, dbMySQL); err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("mysql migrate: %w", err)
	}

	var notifier service.ActivationNotifier = &printNotifier{out: out}
	if os.Getenv("REDIS_TYPE") != "" {
		cacheCfg, err := config.LoadCache()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("read redis config: %w", err)
		}

		asynqClient := asynq.NewClient(asynqserver.RedisOptions(*cacheCfg))
		closers = append(closers, asynqClient.Close)
		notifier = client.NewActivationNotifier(asynqClient)
	}

	services := service.NewServices(service.Deps{
		Config:       &config.Config{Activation: cfg.Activation, Auth: cfg.Auth},
		Hasher:       hash.NewBcryptHasher(cfg.Auth.PasswordCost),
		OtpGenerator: otp.NewCryptoGenerator(),
		Notifier:     notifier,
		Repos:        repository.NewRepositories(dbMySQL),
	})

	return services, closeAll, nil
}
