package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/flow"
	"github.com/phrazzld/cardlink/internal/redact"
	"github.com/spf13/cobra"
)

func newPayCmd(load func() (settings, error)) *cobra.Command {
	var card, mobile string
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Request a payment with a linked card",
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

			w := newStepWaiter()
			o, err := flow.NewPayment(sess.async, sess.provider, sess.logger,
				flow.WithStepDelegate(w), flow.WithErrorDelegate(w), flow.WithEventEmitter(sess.emitter))
			if err != nil {
				return err
			}

			done, err := drive(cmd.Context(), o, w, func(_ context.Context, step domain.NextDataStep) (domain.CollectableData, error) {
				if _, ok := step.(domain.CollectPaymentData); !ok {
					return nil, unexpectedStep(step)
				}
				return domain.PaymentData{CardNumber: card, MobileNumber: mobile}, nil
			})
			if err != nil {
				return err
			}
			if done.Payment == nil {
				return fmt.Errorf("payment completed without a receipt")
			}

			if s.JSON {
				return writeJSON(cmd.OutOrStdout(), done.Payment)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "payment %s %s for %s\n",
				done.Payment.PaymentID, done.Payment.Status, redact.CardNumber(done.Payment.CardNumber))
			return err
		},
	}
	cmd.Flags().StringVar(&card, "card", "", "linked card number")
	cmd.Flags().StringVar(&mobile, "mobile", "", "mobile number the card is linked to, with or without dialling code")
	_ = cmd.MarkFlagRequired("card")
	_ = cmd.MarkFlagRequired("mobile")
	return cmd
}
