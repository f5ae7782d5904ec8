package config

import (
	"flag"
	"fmt"
	"io"
)

// parses CLI flags for the register subcommand
func ParseRegisterFlags(args []string, output io.Writer) (RegisterFlags, error) {
	fs := newFlagSet("register", output)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when empty)")
	username := fs.String("username", "", "display username")
	phone := fs.String("phone", "", "contact phone number")
	role := fs.String("role", "user", "account role: user or worker")

	if err := fs.Parse(args); err != nil {
		return RegisterFlags{}, err
	}

	if *email == "" || *username == "" {
		return RegisterFlags{}, fmt.Errorf("register: --email and --username are required")
	}

	return RegisterFlags{
		Email:    *email,
		Password: *password,
		Username: *username,
		Phone:    *phone,
		Role:     *role,
	}, nil
}

// parses CLI flags for the login subcommand
func ParseLoginFlags(args []string, output io.Writer) (LoginFlags, error) {
	fs := newFlagSet("login", output)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when empty)")

	if err := fs.Parse(args); err != nil {
		return LoginFlags{}, err
	}

	if *email == "" {
		return LoginFlags{}, fmt.Errorf("login: --email is required")
	}

	return LoginFlags{Email: *email, Password: *password}, nil
}

// parses CLI flags for the google subcommand
func ParseGoogleFlags(args []string, output io.Writer) (GoogleFlags, error) {
	fs := newFlagSet("google", output)
	timeout := fs.Duration("timeout", DefaultGoogleTimeout, "how long to wait for the browser sign-in")

	if err := fs.Parse(args); err != nil {
		return GoogleFlags{}, err
	}

	return GoogleFlags{Timeout: *timeout}, nil
}

// parses CLI flags for the token subcommand
func ParseTokenFlags(args []string, output io.Writer) (TokenFlags, error) {
	fs := newFlagSet("token", output)
	force := fs.Bool("force", false, "refresh the token even if the cached one is still valid")

	if err := fs.Parse(args); err != nil {
		return TokenFlags{}, err
	}

	return TokenFlags{Force: *force}, nil
}

func newFlagSet(name string, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}

	return fs
}
