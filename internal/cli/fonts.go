package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/takumik/keizu/pkg/fonts"
)

// newFontsCmd creates the fonts command showing how the CJK font family is
// resolved on this machine and whether it is installed.
func newFontsCmd() *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "Show platform font resolution and availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var report fonts.Report
			if family != "" {
				report = fonts.VerifyFamily(ctx, family)
			} else {
				report = fonts.Verify(ctx)
			}

			fmt.Println(StyleTitle.Render("Font Resolution"))
			printKeyValue("platform", report.Platform.String())
			printKeyValue("family", report.Family)
			printKeyValue("fallbacks", strings.Join(fonts.Candidates(report.Platform), ", "))

			switch {
			case !report.Checked:
				printWarning("availability unknown (fc-list not found)")
			case report.Installed:
				printSuccess("font available")
			default:
				printWarning("%q is not installed; labels may render with substituted glyphs", report.Family)
				printDetail("install Noto CJK fonts, e.g. apt install fonts-noto-cjk")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "check a specific family instead of the platform default")

	return cmd
}
