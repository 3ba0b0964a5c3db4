package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/flow"
	"github.com/phrazzld/cardlink/internal/redact"
	"github.com/spf13/cobra"
)

type phoneFlags struct {
	mobile string
	dial   string
}

func (p *phoneFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.mobile, "mobile", "", "mobile number without the dialling code")
	cmd.Flags().StringVar(&p.dial, "dial", "", "dialling code, e.g. +971")
	_ = cmd.MarkFlagRequired("mobile")
	_ = cmd.MarkFlagRequired("dial")
}

func (p *phoneFlags) data() domain.PhoneData {
	return domain.PhoneData{MobileNumber: p.mobile, PhoneCountryDiallingCode: p.dial}
}

func newLinkCmd(load func() (settings, error)) *cobra.Command {
	var (
		card  string
		otp   string
		phone phoneFlags
	)
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Link a card to a phone number",
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
			o, err := flow.NewLink(sess.async, sess.provider, card, sess.logger,
				flow.WithStepDelegate(w), flow.WithErrorDelegate(w), flow.WithEventEmitter(sess.emitter))
			if err != nil {
				return err
			}

			done, err := drive(cmd.Context(), o, w, func(ctx context.Context, step domain.NextDataStep) (domain.CollectableData, error) {
				switch st := step.(type) {
				case domain.CollectPhoneData:
					return phone.data(), nil
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
				return writeJSON(cmd.OutOrStdout(), done.LinkedCard)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "linked %s to %s\n",
				redact.CardNumber(card), redact.PhoneNumber(phone.dial+phone.mobile))
			return err
		},
	}
	cmd.Flags().StringVar(&card, "card", "", "card number")
	cmd.Flags().StringVar(&otp, "otp", "", "OTP code; read from the sandbox when empty")
	_ = cmd.MarkFlagRequired("card")
	phone.register(cmd)
	return cmd
}
