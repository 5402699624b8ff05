package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/firetrack/backend/internal/config"
	"github.com/firetrack/backend/internal/domain"
	"github.com/firetrack/backend/internal/repository"
	"github.com/firetrack/backend/internal/repository/memory"
	"github.com/firetrack/backend/internal/service"
	"github.com/firetrack/backend/pkg/hash"
	"github.com/firetrack/backend/pkg/otp"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	errUnknownCommand = errors.New("unknown command")
	errNoUser         = errors.New("one of user or email is required")
)

type openFunc func(ctx context.Context, out io.Writer) (*service.Services, func(), error)

func run(ctx context.Context, name string, args []string, out io.Writer, open openFunc) error {
	switch name {
	case "register":
		return cmdRegister(ctx, args, out, open)
	case "issue":
		return cmdIssue(ctx, args, out, open)
	case "notify":
		return cmdNotify(ctx, args, out, open)
	case "activate":
		return cmdActivate(ctx, args, out, open)
	case "revoke":
		return cmdRevoke(ctx, args, out, open)
	case "purge":
		return cmdPurge(ctx, args, out, open)
	case "demo":
		return cmdDemo(ctx, args, out)
	default:
		return errUnknownCommand
	}
}

type userFlags struct {
	id    string
	email string
}

func addUserFlags(fs *flag.FlagSet) *userFlags {
	f := &userFlags{}
	fs.StringVar(&f.id, "user", "", "user id")
	fs.StringVar(&f.email, "email", "", "user email")
	return f
}

func (f *userFlags) validate() error {
	switch {
	case f.id != "" && f.email != "":
		return errors.New("user and email are mutually exclusive")
	case f.email != "":
		return nil
	case f.id != "":
		if _, err := uuid.Parse(f.id); err != nil {
			return fmt.Errorf("parse user id: %w", err)
		}
		return nil
	default:
		return errNoUser
	}
}

func (f *userFlags) lookup(ctx context.Context, users service.Users) (*domain.User, error) {
	if f.email != "" {
		return users.GetByEmail(ctx, f.email)
	}

	return users.GetOneByID(ctx, uuid.MustParse(f.id))
}

// withUser parses the user selection flags, opens the store and resolves the user.
func withUser(
	ctx context.Context,
	fs *flag.FlagSet,
	args []string,
	out io.Writer,
	open openFunc,
	fn func(services *service.Services, user *domain.User) error,
) error {
	uf := addUserFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := uf.validate(); err != nil {
		return err
	}

	services, closeFn, err := open(ctx, out)
	if err != nil {
		return err
	}
	defer closeFn()

	user, err := uf.lookup(ctx, services.Users)
	if err != nil {
		return err
	}

	return fn(services, user)
}

func cmdRegister(ctx context.Context, args []string, out io.Writer, open openFunc) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "user password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("email and password are required")
	}

	services, closeFn, err := open(ctx, out)
	if err != nil {
		return err
	}
	defer closeFn()

	user, err := services.Users.Register(ctx, *email, *password)
	if user != nil && errors.Is(err, service.ErrActivationCodeNotSent) {
		fmt.Fprintf(out, "registered %s as %s, activation code not sent: %v\n", user.Email, user.ID, err)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "registered %s as %s\n", user.Email, user.ID)
	return nil
}

func cmdIssue(ctx context.Context, args []string, out io.Writer, open openFunc) error {
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	return withUser(ctx, fs, args, out, open, func(services *service.Services, user *domain.User) error {
		code, err := services.ActivationCodes.IssueOrRefresh(ctx, user)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "code=%s expires=%s attempts=%d\n", code, code.ExpirationTime.Format(time.RFC3339), code.Attempts)
		return nil
	})
}

func cmdNotify(ctx context.Context, args []string, out io.Writer, open openFunc) error {
	fs := flag.NewFlagSet("notify", flag.ContinueOnError)
	return withUser(ctx, fs, args, out, open, func(services *service.Services, user *domain.User) error {
		code, err := services.Users.ResendActivationCode(ctx, user.ID)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "activation code sent to %s, %d attempts remaining\n",
			user.Email, services.ActivationCodes.RemainingAttempts(code))
		return nil
	})
}

func cmdActivate(ctx context.Context, args []string, out io.Writer, open openFunc) error {
	fs := flag.NewFlagSet("activate", flag.ContinueOnError)
	code := fs.Int("code", 0, "activation code")
	return withUser(ctx, fs, args, out, open, func(services *service.Services, user *domain.User) error {
		activated, err := services.ActivationCodes.ValidateAndActivate(ctx, user, *code)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "user %s activated\n", activated.ID)
		return nil
	})
}

func cmdRevoke(ctx context.Context, args []string, out io.Writer, open openFunc) error {
	fs := flag.NewFlagSet("revoke", flag.ContinueOnError)
	return withUser(ctx, fs, args, out, open, func(services *service.Services, user *domain.User) error {
		if err := services.Users.RevokeActivationCode(ctx, user.ID); err != nil {
			return err
		}

		fmt.Fprintf(out, "activation code of %s revoked\n", user.Email)
		return nil
	})
}

func cmdPurge(ctx context.Context, args []string, out io.Writer, open openFunc) error {
	fs := flag.NewFlagSet("purge", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	services, closeFn, err := open(ctx, out)
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := services.ActivationCodes.PurgeExpired(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "purged %d expired activation codes\n", n)
	return nil
}

// printNotifier delivers codes to the terminal when no email queue is configured.
type printNotifier struct {
	out  io.Writer
	last *domain.ActivationCode
}

func (n *printNotifier) NotifyActivationCode(_ context.Context, user *domain.User, code *domain.ActivationCode) error {
	n.last = code
	fmt.Fprintf(n.out, "notify %s: code %s valid until %s\n", user.Email, code, code.ExpirationTime.Format(time.RFC3339))
	return nil
}

func cmdDemo(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	email := fs.String("email", "demo@firetrack.dev", "email to register")
	if err := fs.Parse(args); err != nil {
		return err
	}

	notifier := &printNotifier{out: out}
	services := service.NewServices(service.Deps{
		Config: &config.Config{
			Activation: config.ActivationConfig{CodeTTL: 30 * time.Minute, MaxAttempts: domain.MaxActivationAttempts},
		},
		Hasher:       hash.NewBcryptHasher(bcrypt.DefaultCost),
		OtpGenerator: otp.NewCryptoGenerator(),
		Notifier:     notifier,
		Repos: &repository.Repositories{
			Users:           memory.NewUserRepo(),
			ActivationCodes: memory.NewActivationCodeRepo(),
		},
	})

	user, err := services.Users.Register(ctx, *email, "demo-password")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "registered %s as %s\n", user.Email, user.ID)

	wrong := notifier.last.Code%domain.ActivationCodeMax + 1
	if wrong < domain.ActivationCodeMin {
		wrong = domain.ActivationCodeMin
	}
	if _, err := services.Users.Activate(ctx, user.ID, wrong); err != nil {
		fmt.Fprintf(out, "activate with %d: %v\n", wrong, err)
	}

	activated, err := services.Users.Activate(ctx, user.ID, notifier.last.Code)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "activate with %s: activated=%t\n", notifier.last, activated.Activated)

	return nil
}
