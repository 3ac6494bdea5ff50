package main

import (
	"leadconnect_backend/internal/conversations"
	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/shaping"
	leaddomain "leadconnect_backend/internal/leads/domain"

	"github.com/spf13/cobra"
)

type shapeResult struct {
	Rule string `json:"rule"`
	domain.ShapedResponse
}

func newShapeCmd(root *rootOptions) *cobra.Command {
	var (
		reply       string
		message     string
		turns       int
		isNew       bool
		bookingDate string
	)

	cmd := &cobra.Command{
		Use:   "shape",
		Short: "Run the response shaper on a raw reply offline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := conversations.LoadKeywords(root)
			if err != nil {
				return err
			}
			shaper := shaping.NewShaper(set)

			var c domain.Context
			if bookingDate != "" {
				c.Booking = &leaddomain.Booking{Date: bookingDate}
			}

			shaped := shaper.Shape(reply, message, c, turns, isNew)
			rule, _ := shaper.Select(shaping.Input{
				Reply:            shaped.Text,
				Message:          message,
				HasBooking:       c.HasBooking(),
				HistoryTurnCount: turns,
				IsNewUser:        isNew,
			})
			return writeJSON(cmd.OutOrStdout(), shapeResult{Rule: rule, ShapedResponse: shaped})
		},
	}

	cmd.Flags().StringVar(&reply, "reply", "", "raw generated reply")
	cmd.Flags().StringVar(&message, "message", "", "customer message the reply answers")
	cmd.Flags().IntVar(&turns, "turns", 0, "assistant turns already in history")
	cmd.Flags().BoolVar(&isNew, "new", false, "treat the customer as new")
	cmd.Flags().StringVar(&bookingDate, "booking-date", "", "existing booking date, if any")
	_ = cmd.MarkFlagRequired("reply")
	return cmd
}
