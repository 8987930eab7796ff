// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kenshin-cli/internal/archive"
)

// verifyCmd re-validates an existing submission archive using the schemas
// bundled inside it, the same check a recipient would run.
var verifyCmd = &cobra.Command{
	Use:   "verify <archive.zip>",
	Short: "Validate every document inside a submission archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func runVerify(_ *cobra.Command, args []string) error {
	violations, err := archive.Verify(args[0])
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		fmt.Println(SuccessStyle.Render("Archive is valid: ") + args[0])
		return nil
	}

	fmt.Println(ErrorStyle.Render(fmt.Sprintf("%d violation(s) found:", len(violations))))
	for _, v := range violations {
		fmt.Println("  " + v.String())
	}
	return &ExitError{Code: 1, Err: fmt.Errorf("archive failed validation")}
}
