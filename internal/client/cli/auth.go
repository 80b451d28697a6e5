package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/xbackend/internal/client/client"
	"github.com/dmitrijs2005/xbackend/internal/client/config"
	"github.com/dmitrijs2005/xbackend/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// readSecret reads a password and returns it as a string. The raw buffer is wiped.
func (a *App) readSecret(prompt string) (string, error) {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (a *App) report(err error) error {
	switch {
	case err == nil:
		fmt.Fprintln(a.out, "Success!")
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
	return err
}

// Register prompts for name, email, password and date of birth and creates
// an account. The new session is kept on success.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Enter password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm password")
	if err != nil {
		return err
	}
	if password != confirm {
		return a.report(fmt.Errorf("%w: passwords do not match", client.ErrInvalidInput))
	}
	dob, err := getSimpleText(a.reader, "Enter date of birth (YYYY-MM-DD)", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Register(ctx, name, email, password, dob); err != nil {
		return a.report(err)
	}
	a.email = email
	fmt.Fprintln(a.out, "Check your inbox for the verification link.")
	return a.report(nil)
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Enter password")
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.Login(ctx, email, password); err != nil {
		return a.report(err)
	}
	a.email = email
	return a.report(nil)
}

// Logout revokes the refresh token on the server. Local credentials are
// dropped by the client even if the call fails.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	err := a.client.Logout(ctx)
	a.email = ""
	return a.report(err)
}

func (a *App) Refresh(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return a.report(a.client.Refresh(ctx))
}

// Me prints the caller's profile.
func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	profile, err := a.client.Me(ctx)
	if err != nil {
		return a.report(err)
	}
	if a.config.Output == config.OutputJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}
	for _, k := range []string{"id", "email", "username", "name", "date_of_birth", "verify"} {
		if v, ok := profile[k]; ok {
			fmt.Fprintf(a.out, "%-14s %v\n", k+":", v)
		}
	}
	if v, _ := profile["verify"].(string); v == "unverified" {
		fmt.Fprintln(a.out, "Email is not verified yet, use 'verify' or 'resend'.")
	}
	return nil
}

func (a *App) VerifyEmail(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter verification token", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	msg, err := a.client.VerifyEmail(ctx, token)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) ResendVerifyEmail(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	msg, err := a.client.ResendVerifyEmail(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// ForgotPassword requests a reset link for an email address.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.ForgotPassword(ctx, email); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Check your inbox for the reset link.")
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Enter new password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm new password")
	if err != nil {
		return err
	}
	if password != confirm {
		return a.report(fmt.Errorf("%w: passwords do not match", client.ErrInvalidInput))
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	return a.report(a.client.ResetPassword(ctx, token, password))
}

func (a *App) ChangePassword(ctx context.Context) error {
	oldPassword, err := a.readSecret("Enter current password")
	if err != nil {
		return err
	}
	newPassword, err := a.readSecret("Enter new password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm new password")
	if err != nil {
		return err
	}
	if newPassword != confirm {
		return a.report(fmt.Errorf("%w: passwords do not match", client.ErrInvalidInput))
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	return a.report(a.client.ChangePassword(ctx, oldPassword, newPassword))
}
