package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var mintAccess bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Acquire a refresh token",
	Long: `Acquire a refresh token with the merchant credentials. With --access the
refresh token is also exchanged for an access token.

Examples:
  sadadctl token
  sadadctl token --access -f text`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().BoolVar(&mintAccess, "access", false, "Also mint an access token")
}

type tokenOutput struct {
	Sandbox      bool   `json:"sandbox"`
	RefreshToken string `json:"refreshToken"`
	AccessToken  string `json:"accessToken,omitempty"`
}

func runToken(cmd *cobra.Command, args []string) error {
	client, err := newGateway(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := tokenOutput{Sandbox: client.Sandbox()}
	if out.RefreshToken, err = client.AcquireRefreshToken(ctx); err != nil {
		return err
	}
	if mintAccess {
		if out.AccessToken, err = client.MintAccessToken(ctx, out.RefreshToken); err != nil {
			return err
		}
	}

	return render(cmd, out, func(w io.Writer) {
		fmt.Fprintf(w, "refresh: %s\n", out.RefreshToken)
		if out.AccessToken != "" {
			fmt.Fprintf(w, "access:  %s\n", out.AccessToken)
		}
	})
}
