package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mellowmark/internal/repository/sqlite"
	"mellowmark/internal/service"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userAddUsername string

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		password, err := readPassword(cmd.OutOrStdout(), os.Stdin)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}

		db, err := openDatabase(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := sqlite.NewUserRepository(db)
		// signup never issues tokens
		users, err := service.NewUserService(repo, nil, cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		created, err := users.Signup(cmd.Context(), userAddUsername, password)
		if err != nil {
			return err
		}

		user, err := repo.GetByID(cmd.Context(), created.ID)
		if err != nil {
			return fmt.Errorf("read back user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s) at %s\n",
			user.Username, user.ID, user.CreatedAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userAddUsername, "username", "", "name of the new account")
	_ = userAddCmd.MarkFlagRequired("username")
	userCmd.AddCommand(userAddCmd)
}

// readPassword prompts on a terminal without echo and otherwise reads the
// first line of in, so passwords can be piped in scripts.
func readPassword(w io.Writer, in *os.File) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(w, "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
