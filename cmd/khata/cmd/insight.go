package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/kitab-khata/internal/app"
)

var insightCmd = &cobra.Command{
	Use:   "insight",
	Short: "Ask Gemini for a short summary of the ledger",
	Long: `Ask Gemini for a short Hinglish summary of the ledger with a tip for
the shopkeeper. Needs GEMINI_API_KEY, or GOOGLE_GENAI_USE_VERTEXAI=true
with GOOGLE_CLOUD_PROJECT.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if a.Tracker == nil {
				return fmt.Errorf("AI insights are unavailable, see the log for the Gemini client error")
			}
			snap, err := a.Tracker.Run(ctx, a.Ledger.Records())
			if err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), snap.Text)
			return nil
		}, "gemini")
	},
}
