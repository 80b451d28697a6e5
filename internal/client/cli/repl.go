package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Me(ctx context.Context) error
	VerifyEmail(ctx context.Context) error
	ResendVerifyEmail(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Avatar(ctx context.Context) error
}

const (
	guestHelp  = "Available commands: register, login, verify, forgot, reset, exit"
	memberHelp = "Available commands: me, avatar, refresh, verify, resend, passwd, logout, exit"
)

// runREPL reads commands line by line from scanner and dispatches them to a.
// The prompt shows statusFn(). The loop exits on EOF or "exit"/"quit".
//
// Commands that need a session are rejected while logged out, and
// register/login are rejected while logged in. Handler errors are reported
// by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("acct> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if ctx.Err() != nil {
			return
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(memberHelp)
			} else {
				printlnFn(guestHelp)
			}

		case "register", "login":
			if a.isLoggedIn() {
				printlnFn("Already logged in, use 'logout' first")
				continue
			}
			if cmd == "register" {
				_ = a.Register(ctx)
			} else {
				_ = a.Login(ctx)
			}

		case "verify":
			_ = a.VerifyEmail(ctx)

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "me", "avatar", "refresh", "resend", "passwd", "logout":
			if !a.isLoggedIn() {
				printlnFn("Not logged in")
				continue
			}
			switch cmd {
			case "me":
				_ = a.Me(ctx)
			case "avatar":
				_ = a.Avatar(ctx)
			case "refresh":
				_ = a.Refresh(ctx)
			case "resend":
				_ = a.ResendVerifyEmail(ctx)
			case "passwd":
				_ = a.ChangePassword(ctx)
			case "logout":
				_ = a.Logout(ctx)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
