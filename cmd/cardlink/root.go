package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/cardlink/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// settings are the values shared by every subcommand.
type settings struct {
	Scheme        config.SchemeConfig
	MerchantAppID string `validate:"required,max=128"`
	Verbose       bool
	JSON          bool
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "cardlink",
		Short:         "Link, unlink and pay with closed-loop scheme cards",
		Long:          "cardlink runs the card flows end to end against a scheme backend. OTPs are read from the sandbox unless --otp is given.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("base-url", "http://localhost:8080", "scheme API base URL")
	flags.Duration("timeout", 15*time.Second, "HTTP timeout per scheme call")
	flags.String("merchant", "", "merchant app id the client token is issued for")
	flags.String("client-token", "", "client token to use instead of issuing one")
	flags.Bool("verbose", false, "log flow events to stderr")
	flags.Bool("json", false, "emit JSON")

	_ = v.BindPFlag("scheme.base_url", flags.Lookup("base-url"))
	_ = v.BindPFlag("scheme.timeout", flags.Lookup("timeout"))
	_ = v.BindPFlag("scheme.client_token", flags.Lookup("client-token"))
	_ = v.BindPFlag("sdk.merchant_app_id", flags.Lookup("merchant"))
	_ = v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = v.BindPFlag("json", flags.Lookup("json"))

	load := func() (settings, error) {
		s := settings{
			Scheme: config.SchemeConfig{
				BaseURL:     v.GetString("scheme.base_url"),
				Timeout:     v.GetDuration("scheme.timeout"),
				ClientToken: v.GetString("scheme.client_token"),
			},
			MerchantAppID: v.GetString("sdk.merchant_app_id"),
			Verbose:       v.GetBool("verbose"),
			JSON:          v.GetBool("json"),
		}
		if err := validator.New().Struct(s); err != nil {
			return settings{}, fmt.Errorf("invalid settings: %w", err)
		}
		return s, nil
	}

	root.AddCommand(
		newLinkCmd(load),
		newUnlinkCmd(load),
		newPayCmd(load),
		newCardsCmd(load),
	)
	return root
}
