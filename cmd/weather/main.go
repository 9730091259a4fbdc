package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/tempest-listener/internal/adapter/sqlstore"
	"github.com/couchcryptid/tempest-listener/internal/config"
	"github.com/couchcryptid/tempest-listener/internal/domain"
	"github.com/spf13/cobra"
)

const openTimeout = 15 * time.Second

// store is the read side of the observation store used by the CLI.
type store interface {
	Latest(ctx context.Context, limit int) ([]domain.StoredWeather, error)
	Close() error
}

type storeOpener func(ctx context.Context) (store, error)

func openSQLStore(ctx context.Context) (store, error) {
	db, err := config.LoadDatabase()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()
	return sqlstore.Open(ctx, db.Driver, db.URL)
}

func newRootCmd(open storeOpener) *cobra.Command {
	var s store

	root := &cobra.Command{
		Use:   "weather",
		Short: "Query observations recorded by the Tempest listener",
		Long: `weather reads the observation store written by the Tempest listener.
Storage is configured with DATABASE_DRIVER and DATABASE_URL, the same
variables the listener uses.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			opened, err := open(cmd.Context())
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			s = opened
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if s == nil {
				return nil
			}
			return s.Close()
		},
	}

	current := func() store { return s }
	root.AddCommand(newLatestCmd(current), newRecentCmd(current))
	return root
}

func main() {
	if err := newRootCmd(openSQLStore).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
