package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/nestegg/internal/auth"
	"github.com/Veraticus/nestegg/internal/cli"
	"github.com/Veraticus/nestegg/internal/common"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the accounts allowed to sign in",
	}

	cmd.AddCommand(usersAddCmd())

	return cmd
}

func usersAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <username>",
		Short: "Add a user",
		Long: `Add a user who can sign in to the planner and the API. The password is
prompted for without echo, or read from the first line of standard input when it
is not a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			user, err := auth.NewUser(args[0], password)
			if err != nil {
				if errors.Is(err, auth.ErrWeakPassword) {
					return common.NewUserError(fmt.Sprintf("Passwords need at least %d characters.", auth.MinPasswordLength), err)
				}
				return err
			}

			store, _, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.CreateUser(cmd.Context(), user); err != nil {
				if errors.Is(err, common.ErrDuplicateEntry) {
					return common.NewUserError(fmt.Sprintf("User %q already exists.", user.Username), err)
				}
				return fmt.Errorf("failed to create user: %w", err)
			}

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Added user %q", user.Username)))
			return nil
		},
	}
}

// readPassword prompts twice on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return promptPassword(cmd.ErrOrStderr(), int(f.Fd()))
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptPassword(w io.Writer, fd int) (string, error) {
	read := func(prompt string) (string, error) {
		fmt.Fprint(w, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	password, err := read("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := read("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", common.NewUserError("Passwords do not match.", common.ErrInvalidInput)
	}
	return password, nil
}
