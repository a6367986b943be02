package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"sanctuary-app/config"
	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"
	"sanctuary-app/internal/entitlement"

	"github.com/spf13/cobra"
)

type AwaitOptions struct {
	*RootOptions
	MaxAttempts int
}

// NewAwaitCheckoutCommand polls one session the way the success page does.
// Support uses it to see what a customer is looking at.
func NewAwaitCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AwaitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "await-checkout <session-id>",
		Short: "Poll a checkout session until it settles",
		Long: `Poll a checkout session with the configured polling policy and print
the final state (success, expired, not_found or error) and the recovery
action. Exits non-zero unless the payment succeeded.

Example:
  sanctuary await-checkout cs_test_a1b2c3
  sanctuary await-checkout cs_test_a1b2c3 --format json --max-attempts 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			db, err := openDB()
			if err != nil {
				return err
			}
			gateway, err := newGateway(db)
			if err != nil {
				return err
			}

			policy := config.PollPolicy()
			if opts.MaxAttempts > 0 {
				policy.MaxAttempts = opts.MaxAttempts
			}
			final := entitlement.NewPoller(gateway, policy, slog.Default()).Await(ctx, args[0])
			return reportFinal(cmd.OutOrStdout(), opts.Format, args[0], final)
		},
	}

	cmd.Flags().IntVar(&opts.MaxAttempts, "max-attempts", 0, "override CHECKOUT_POLL_MAX_ATTEMPTS")

	return cmd
}

var errNotSettled = errors.New("checkout did not succeed")

type finalReport struct {
	SessionID  string           `json:"session_id"`
	State      checkout.UIState `json:"state"`
	Action     checkout.Action  `json:"action,omitempty"`
	Attempts   int              `json:"attempts"`
	OrderTotal string           `json:"order_total,omitempty"`
	ProductIDs []string         `json:"product_ids,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func reportFinal(w io.Writer, format, sessionID string, f entitlement.Final) error {
	s := f.Resolution.Session
	r := finalReport{
		SessionID:  sessionID,
		State:      f.State,
		Action:     f.Action,
		Attempts:   f.Attempts,
		ProductIDs: s.ProductIDs,
	}
	if s.Currency != "" && s.AmountTotal > 0 {
		r.OrderTotal = catalog.FormatAmount(s.AmountTotal, s.Currency)
	}
	if f.Err != nil {
		r.Error = f.Err.Error()
	}

	if format == "json" {
		if err := json.NewEncoder(w).Encode(r); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "session %s: %s after %d attempt(s)\n", r.SessionID, r.State, r.Attempts)
		if r.OrderTotal != "" {
			fmt.Fprintf(w, "order total: %s\n", r.OrderTotal)
		}
		if r.Action != checkout.ActionNone {
			fmt.Fprintf(w, "next step: %s\n", r.Action)
		}
		if r.Error != "" {
			fmt.Fprintf(w, "error: %s\n", r.Error)
		}
	}

	if f.State != checkout.UISuccess {
		return fmt.Errorf("%w: %s", errNotSettled, f.State)
	}
	return nil
}
