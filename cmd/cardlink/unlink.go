package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/flow"
	"github.com/phrazzld/cardlink/internal/redact"
	"github.com/spf13/cobra"
)

func newUnlinkCmd(load func() (settings, error)) *cobra.Command {
	var (
		card    string
		expired string
		otp     string
		phone   phoneFlags
	)
	cmd := &cobra.Command{
		Use:   "unlink",
		Short: "Unlink a card from a phone number",
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
			o, err := flow.NewUnlink(sess.async, sess.provider, sess.logger,
				flow.WithStepDelegate(w), flow.WithErrorDelegate(w), flow.WithEventEmitter(sess.emitter))
			if err != nil {
				return err
			}

			_, err = drive(cmd.Context(), o, w, func(ctx context.Context, step domain.NextDataStep) (domain.CollectableData, error) {
				switch st := step.(type) {
				case domain.CollectCardAndPhoneData:
					return domain.CardAndPhoneData{
						Card:  domain.Card{CardNumber: card, ExpiredTime: expired},
						Phone: phone.data(),
					}, nil
				case domain.CollectOTPData:
					code, err := sess.otpFor(ctx, otp, st.PhoneNumber)
					if err != nil {
						return nil, err
					}
					return domain.OTPData{OTPCode: code}, nil
				default:
					return nil, unexpectedStep(step)
				}
			})
			if err != nil {
				return err
			}

			if s.JSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"card_number": card, "status": "unlinked"})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "unlinked %s from %s\n",
				redact.CardNumber(card), redact.PhoneNumber(phone.dial+phone.mobile))
			return err
		},
	}
	cmd.Flags().StringVar(&card, "card", "", "card number")
	cmd.Flags().StringVar(&expired, "expired-time", "", "card expiry as printed on the card")
	cmd.Flags().StringVar(&otp, "otp", "", "OTP code; read from the sandbox when empty")
	_ = cmd.MarkFlagRequired("card")
	phone.register(cmd)
	return cmd
}
