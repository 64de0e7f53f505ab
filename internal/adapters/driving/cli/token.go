package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the Fansly token",
	Long: `The token is the value of the Authorization header your browser sends to
Fansly. It is stored in the Config and sent verbatim with every request.`,
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store a token (prompts when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTokenSet,
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored token",
	RunE:  runTokenClear,
}

var tokenCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the stored token against the API",
	RunE:  runTokenCheck,
}

var tokenSetVerify bool

// readSecret reads a token from the terminal. Replaced in tests.
var readSecret = readPassword

func init() {
	tokenSetCmd.Flags().BoolVar(&tokenSetVerify, "verify", false, "check the token against the API before storing it")

	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenClearCmd)
	tokenCmd.AddCommand(tokenCheckCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenSet(cmd *cobra.Command, args []string) error {
	if configService == nil {
		return errors.New("config service not configured")
	}

	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		cmd.Print("Fansly token: ")
		token = readSecret(cmd.InOrStdin())
		cmd.Println()
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is empty", domain.ErrInvalidInput)
	}

	ctx := context.Background()
	if tokenSetVerify {
		me, err := verifyToken(ctx, token)
		if err != nil {
			return err
		}
		cmd.Printf("Token accepted for @%s.\n", me.Account.Username)
	}

	if _, err := configService.Update(ctx, func(c *domain.Config) error {
		c.FanslyToken = token
		return nil
	}); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	cmd.Printf("Token stored (%s).\n", maskToken(token))
	return nil
}

func runTokenClear(cmd *cobra.Command, _ []string) error {
	if configService == nil {
		return errors.New("config service not configured")
	}

	if _, err := configService.Update(context.Background(), func(c *domain.Config) error {
		c.FanslyToken = ""
		return nil
	}); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	cmd.Println("Token removed.")
	return nil
}

func runTokenCheck(cmd *cobra.Command, _ []string) error {
	if configService == nil {
		return errors.New("config service not configured")
	}

	ctx := context.Background()
	cfg, err := configService.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasCredential() {
		return fmt.Errorf("%w: run fanslysync token set", domain.ErrMissingCredential)
	}

	me, err := verifyToken(ctx, cfg.FanslyToken)
	if err != nil {
		return err
	}

	a := me.Account
	cmd.Printf("Token is valid for @%s (%s).\n", a.Username, a.ID)
	cmd.Printf("  Followers:   %d\n", a.FollowCount)
	cmd.Printf("  Subscribers: %d\n", a.SubscriberCount)
	if len(a.SubscriptionTiers) > 0 {
		cmd.Println("  Tiers:")
		for _, tier := range a.SubscriptionTiers {
			cmd.Printf("    %s (%d plans)\n", tier.Name, len(tier.Plans))
		}
	}
	return nil
}

func verifyToken(ctx context.Context, token string) (*domain.Me, error) {
	if accountAPI == nil {
		return nil, errors.New("account API not configured")
	}

	res := domain.Await(func() (*domain.Me, error) {
		return accountAPI.Me(ctx, token)
	})
	if res.Err != nil {
		if domain.IsAuth(res.Err) {
			return nil, fmt.Errorf("token was rejected: %w", res.Err)
		}
		return nil, fmt.Errorf("failed to check token: %w", res.Err)
	}
	return res.Value, nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	// Try to read password without echo
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
