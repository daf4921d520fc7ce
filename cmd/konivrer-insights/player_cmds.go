package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/konivrer-insights/internal/analytics"
	"github.com/ramonehamilton/konivrer-insights/internal/storage/models"
)

func newWeaknessCmd(a *app) *cobra.Command {
	var playerID string

	cmd := &cobra.Command{
		Use:   "weakness",
		Short: "Show the matchups and play patterns a player struggles with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.loadHistory(cmd.Context())
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}

			player, ok := history.FindPlayer(playerID)
			if !ok {
				player = models.Player{ID: playerID}
			}
			return a.render(engine.Weaknesses(player, history.Matches))
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID")
	_ = cmd.MarkFlagRequired("player")
	return cmd
}

func newRecommendCmd(a *app) *cobra.Command {
	var playerID string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Suggest what a player should work on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, snapshot, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			store := analytics.NewStore()
			store.Replace(snapshot)

			recs, ok := store.Recommendations(playerID)
			if !ok {
				a.log.WithField("player", playerID).Warn("Not enough matches for recommendations")
				recs = []analytics.Recommendation{}
			}
			return a.render(recs)
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID")
	_ = cmd.MarkFlagRequired("player")
	return cmd
}

func newSuggestCmd(a *app) *cobra.Command {
	var (
		deckID string
		top    int
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest cards that pair well with a deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.loadHistory(cmd.Context())
			if err != nil {
				return err
			}

			deck, ok := history.FindDeck(deckID)
			if !ok {
				return fmt.Errorf("deck %q not found", deckID)
			}

			engine, err := a.engine()
			if err != nil {
				return err
			}
			synergies := engine.Synergies(history.Decks, history.Matches)
			return a.render(engine.SuggestCards(synergies, deck, top))
		},
	}

	cmd.Flags().StringVar(&deckID, "deck", "", "Deck ID")
	cmd.Flags().IntVar(&top, "top", 10, "Number of suggestions")
	_ = cmd.MarkFlagRequired("deck")
	return cmd
}
