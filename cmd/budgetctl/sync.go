package main

import (
	"context"
	"errors"
	"log"
	"strings"

	"budgetpilot/clientconfig"
	"budgetpilot/cli"
	"budgetpilot/syncer"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagLoginEmail    string
	flagLoginPassword string
)

func init() {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the budget server",
		Args:  cobra.NoArgs,
		RunE:  withApp(runLogin),
	}
	loginCmd.Flags().StringVar(&flagLoginEmail, "email", "", "Account email (prompted when omitted)")
	loginCmd.Flags().StringVar(&flagLoginPassword, "password", "", "Account password (prompted when omitted)")

	rootCmd.AddCommand(
		loginCmd,
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the server token (email and budget are kept)",
			Args:  cobra.NoArgs,
			RunE:  withApp(runLogout),
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Upload the current budget to the server",
			Args:  cobra.NoArgs,
			RunE:  withApp(runSync),
		},
		&cobra.Command{
			Use:   "pull",
			Short: "Replace the local budget with the server copy",
			Args:  cobra.NoArgs,
			RunE:  withApp(runPull),
		},
	)
}

func runLogin(ctx context.Context, a *app, _ []string) error {
	email := strings.TrimSpace(flagLoginEmail)
	if email == "" {
		email = a.store.Identity().Email
	}
	if email == "" {
		email = a.cfg.Email
	}
	password := flagLoginPassword

	if flagLoginEmail == "" || password == "" {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password),
		))
		if err := form.RunWithContext(ctx); err != nil {
			return err
		}
		email = strings.TrimSpace(email)
	}

	out, err := a.coordinator().Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, syncer.ErrAuthentication) {
			a.printf("  Login failed: invalid email or password\n")
		} else {
			a.printf("  Login failed: %s\n", out.Message)
		}
		return err
	}

	// 记住邮箱，下次登录时预填
	if a.cfg.Email != email {
		cfg, err := clientconfig.LoadFile()
		if err == nil {
			cfg.Email = email
			err = clientconfig.Save(cfg)
		}
		if err != nil {
			log.Printf("警告: 保存客户端配置失败: %v", err)
		}
	}

	a.printf("  %s as %s\n", out.Message, email)
	return nil
}

func runLogout(_ context.Context, a *app, _ []string) error {
	a.store.Logout()
	a.printf("  Logged out\n")
	return nil
}

func runSync(ctx context.Context, a *app, _ []string) error {
	out, err := a.coordinator().Sync(ctx)
	if err != nil {
		switch {
		case errors.Is(err, syncer.ErrNoIdentity):
			a.printf("  %s\n", "Not logged in. Run `budgetctl login` first.")
		case errors.Is(err, syncer.ErrOffline):
			a.printf("  %s: %s\n", syncer.MessageOffline, out.Message)
		default:
			a.printf("  %s\n", out.Message)
		}
		return err
	}
	a.printf("  %s at %s\n", out.Message, cli.FormatTime(out.At))
	return nil
}

func runPull(ctx context.Context, a *app, _ []string) error {
	out, err := a.coordinator().FetchLatest(ctx)
	if err != nil {
		if errors.Is(err, syncer.ErrNoIdentity) {
			a.printf("  %s\n", "Not logged in. Run `budgetctl login` first.")
		} else {
			a.printf("  %s\n", out.Message)
		}
		return err
	}
	if out.NoServerCopy {
		a.printf("  %s\n", out.Message)
		return nil
	}
	a.printf("  %s (updated %s)\n\n", out.Message, cli.FormatTime(out.At))
	return runShow(ctx, a, nil)
}
