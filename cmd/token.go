package cmd

import (
	"errors"
	"io"
	"time"

	"github.com/frahmantamala/mercado-facil/internal/adminuser"
	"github.com/frahmantamala/mercado-facil/internal/auth"
	"github.com/spf13/cobra"
)

var (
	tokenEmail   string
	tokenSubject string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development identity token",
	Long: `Sign a token the way the identity provider would, using the configured
security keys. Refused when env is production.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if cfg.Env == "production" {
			return errors.New("token minting is disabled in production")
		}

		issuer, err := auth.NewTokenIssuer(&cfg.Security)
		if err != nil {
			return err
		}
		return mintToken(issuer, tokenSubject, tokenEmail, cmd.OutOrStdout())
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "admin@mercadofacil.com.br", "email claim of the token")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "subject claim, defaults to the email")
}

func mintToken(issuer *auth.TokenIssuer, subject, email string, out io.Writer) error {
	email = adminuser.NormalizeEmail(email)
	if subject == "" {
		subject = email
	}
	token, expiresAt, err := issuer.Issue(subject, email)
	if err != nil {
		return err
	}
	return writeJSON(out, auth.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
