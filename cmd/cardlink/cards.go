package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/flow"
	"github.com/phrazzld/cardlink/internal/redact"
	"github.com/spf13/cobra"
)

func newCardsCmd(load func() (settings, error)) *cobra.Command {
	var phone phoneFlags
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List the cards linked to a phone number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := load()
			if err != nil {
				return err
			}
			sess, err := openSession(cmd.Context(), s, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer sess.close()

			query, err := flow.NewLinkedCards(sess.async, sess.provider, sess.logger)
			if err != nil {
				return err
			}

			type result struct {
				cards []domain.LinkedCard
				err   *domain.DomainError
			}
			results := make(chan result, 1)
			query.Fetch(cmd.Context(), phone.data(), func(cards []domain.LinkedCard, err *domain.DomainError) {
				results <- result{cards: cards, err: err}
			})

			var res result
			select {
			case res = <-results:
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
			if res.err != nil {
				return res.err
			}

			if s.JSON {
				return writeJSON(cmd.OutOrStdout(), res.cards)
			}
			out := cmd.OutOrStdout()
			if len(res.cards) == 0 {
				_, err = fmt.Fprintln(out, "no linked cards")
				return err
			}
			for _, c := range res.cards {
				if _, err := fmt.Fprintf(out, "%s\tlinked %s\n",
					redact.CardNumber(c.CardNumber), c.LinkedAt.Format(time.RFC3339)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	phone.register(cmd)
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
