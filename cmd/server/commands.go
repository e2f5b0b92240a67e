package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/riverkeep/river-ops/internal/database"
	"github.com/riverkeep/river-ops/internal/deploy"
	"github.com/riverkeep/river-ops/internal/logger"
	"github.com/riverkeep/river-ops/internal/repository"
	"github.com/riverkeep/river-ops/internal/services"
)

func migrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			return database.Close(db)
		},
	}
}

func createUserCommand(a *app) *cobra.Command {
	var password string
	var staff bool

	cmd := &cobra.Command{
		Use:   "createuser <username>",
		Short: "Add a login; prompts for the password when --password is not given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				password, err = promptPassword(cmd)
				if err != nil {
					return err
				}
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			auth := services.NewAuthService(repository.NewUserRepository(db))
			user, err := auth.CreateUser(services.CreateUserInput{
				Username: args[0],
				Password: password,
				IsStaff:  staff,
			})
			if err != nil {
				return err
			}

			a.log.Info("user created", logger.Uint64("user_id", user.ID), logger.String("username", user.Username))
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from the terminal when empty)")
	cmd.Flags().BoolVar(&staff, "staff", false, "grant staff rights")
	return cmd
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal, pass --password")
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(out, "Password (again): ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func cleanupPhotosCommand(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup-photos",
		Short: "Delete photo records whose file is missing from the media store",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			photos := services.NewPhotoService(repository.NewPhotoRepository(db), a.blobStore(), a.log)
			result, err := photos.CleanupOrphans(dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verb := "Deleted"
			if dryRun {
				verb = "Would delete"
			}
			for _, p := range result.Deleted {
				fmt.Fprintf(out, "%s photo %d (%q)\n", verb, p.ID, p.File)
			}
			fmt.Fprintf(out, "Checked %d photos, %s %d orphaned records\n",
				result.Checked, strings.ToLower(verb), len(result.Deleted))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report what would be deleted")
	return cmd
}

func genConfigCommand() *cobra.Command {
	var opts deploy.Options
	var outDir string

	cmd := &cobra.Command{
		Use:   "genconfig <app-name> <domain>",
		Short: "Generate database, environment, systemd and nginx files for a new host",
		Args:  cobra.ExactArgs(2),
		// Runs without a config file or database.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.AppName = args[0]
			opts.Domain = args[1]

			files, err := deploy.Generate(opts)
			if err != nil {
				return err
			}
			if err := deploy.Write(afero.NewOsFs(), outDir, files); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range files {
				fmt.Fprintf(out, "wrote %s/%s\n", outDir, f.Name)
			}
			fmt.Fprintln(out, "Keep db_setup.sql and .env private; they contain generated credentials.")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&outDir, "out", "o", ".", "output directory")
	flags.StringVar(&opts.BasePath, "base-path", "", "install directory (default /srv/<app-name>)")
	flags.StringVar(&opts.User, "user", "", "system user the service runs as (default river)")
	flags.StringVar(&opts.Group, "group", "", "system group (default www-data)")
	flags.StringVar(&opts.DBDriver, "database", "postgres", "database server: postgres or mysql")
	flags.IntVar(&opts.RedisDB, "redis-db", -1, "redis database for sessions; negative keeps cookie sessions")
	flags.IntVar(&opts.ListenPort, "port", 8080, "port the app listens on behind nginx")
	return cmd
}
