package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

var syncJSON bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync cycle now",
	Long: `Fetches the account's followers and subscribers, compares them with the
last stored snapshot and merges the result into the Config.
The changes found are printed once the cycle completes.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncJSON, "json", false, "output the delta as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncScheduler == nil {
		return errors.New("sync service not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !syncJSON {
		cmd.Println("Synchronising...")
	}

	result, err := syncScheduler.SyncNow(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if result.Err != nil {
		if result.ReauthRequired {
			cmd.Println("The stored token was rejected. Store a new one with: fanslysync token set")
		}
		return fmt.Errorf("sync failed: %w", result.Err)
	}

	if syncJSON {
		data, err := json.MarshalIndent(result.Delta, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal delta: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Sync complete in %s: %s\n", result.Duration().Round(time.Millisecond), result.Delta.Summary())
	cmd.Printf("Snapshot: %d followers, %d subscribers\n", result.Followers, result.Subscribers)
	printDelta(cmd, result.Delta)
	return nil
}

func printDelta(cmd *cobra.Command, d domain.Delta) {
	if d.IsEmpty() {
		return
	}
	cmd.Println()

	printIDs(cmd, "New followers", d.AddedFollowers)
	printIDs(cmd, "Lost followers", d.RemovedFollowers)

	if len(d.AddedSubscribers) > 0 {
		cmd.Printf("New subscribers (%d):\n", len(d.AddedSubscribers))
		for i := range d.AddedSubscribers {
			cmd.Printf("  + %s\n", describeSubscriber(d.AddedSubscribers[i]))
		}
	}
	if len(d.RemovedSubscribers) > 0 {
		cmd.Printf("Ended subscriptions (%d):\n", len(d.RemovedSubscribers))
		for i := range d.RemovedSubscribers {
			cmd.Printf("  - %s\n", describeSubscriber(d.RemovedSubscribers[i]))
		}
	}
	if len(d.ChangedSubscribers) > 0 {
		cmd.Printf("Changed subscriptions (%d):\n", len(d.ChangedSubscribers))
		for i := range d.ChangedSubscribers {
			c := d.ChangedSubscribers[i]
			cmd.Printf("  ~ %s [%s]\n", describeSubscriber(c.After), strings.Join(c.Fields, ", "))
		}
	}
}

func printIDs(cmd *cobra.Command, label string, ids []string) {
	if len(ids) == 0 {
		return
	}
	cmd.Printf("%s (%d):\n", label, len(ids))
	for _, id := range ids {
		cmd.Printf("  %s\n", id)
	}
}

func describeSubscriber(s domain.Subscriber) string {
	out := s.ID
	if s.SubscriberID != "" {
		out += " account " + s.SubscriberID
	}
	if s.SubscriptionTierName != "" {
		out += " tier " + s.SubscriptionTierName
	}
	return out
}
