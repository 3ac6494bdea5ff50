package main

import (
	"fmt"
	"os"

	"leadconnect_backend/internal/conversations"
	"leadconnect_backend/internal/conversations/domain"
	convorepo "leadconnect_backend/internal/conversations/repository"
	"leadconnect_backend/internal/conversations/service"
	"leadconnect_backend/internal/conversations/synthesis"
	"leadconnect_backend/internal/leads/identity"
	leadrepo "leadconnect_backend/internal/leads/repository"
	"leadconnect_backend/platform/db"
	"leadconnect_backend/platform/logger"

	"github.com/spf13/cobra"
)

type dbURL string

func (u dbURL) GetDatabaseURL() string { return string(u) }

func newContextCmd(root *rootOptions) *cobra.Command {
	var (
		databaseURL string
		phone       string
		brand       string
		channel     string
		sessionID   string
	)

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Print the Context a lead would receive, without touching it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ch := domain.Channel(channel)
			if !ch.Valid() {
				return fmt.Errorf("unknown channel %q", channel)
			}
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}

			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, dbURL(databaseURL))
			if err != nil {
				return err
			}
			defer pool.Close()

			set, err := conversations.LoadKeywords(root)
			if err != nil {
				return err
			}
			resolver := identity.NewResolver(leadrepo.New(pool), logger.Discard())
			conversationsRepo := convorepo.New(pool)
			inspector := service.NewInspector(resolver, synthesis.NewAggregator(resolver, conversationsRepo, conversationsRepo, set, 0))

			convo, found, err := inspector.Inspect(ctx, phone, brand, ch, sessionID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no lead for phone %q and brand %q", phone, brand)
			}
			return writeJSON(cmd.OutOrStdout(), convo)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	cmd.Flags().StringVar(&phone, "phone", "", "customer phone in any format")
	cmd.Flags().StringVar(&brand, "brand", "", "brand the lead belongs to")
	cmd.Flags().StringVar(&channel, "channel", string(domain.ChannelWhatsApp), "whatsapp or web")
	cmd.Flags().StringVar(&sessionID, "session", "", "optional session id")
	_ = cmd.MarkFlagRequired("phone")
	_ = cmd.MarkFlagRequired("brand")
	return cmd
}
