// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"kenshin-cli/internal/document"
	"kenshin-cli/internal/pipeline"
	"kenshin-cli/internal/sampletest"
)

// runConvert is the root command: the full CSV to archive pipeline.
func runConvert(cobraCmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	if sampleTest || sampleOnly {
		if err := sampletest.Run(cfg.SampleTest, sampleNumFiles, logger); err != nil {
			return err
		}
		if sampleOnly {
			fmt.Println(SuccessStyle.Render("Sample conversion complete."))
			return nil
		}
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}
	res, err := p.Run(cobraCmd.Context())
	if err != nil {
		return err
	}

	for _, kind := range document.RecordKinds {
		if res.Generated[kind] == 0 && res.Skipped[kind] == 0 {
			continue
		}
		line := fmt.Sprintf("  %-8s %d generated", kind, res.Generated[kind])
		if res.Skipped[kind] > 0 {
			line += WarningStyle.Render(fmt.Sprintf("  (%d skipped)", res.Skipped[kind]))
		}
		fmt.Println(line)
	}
	fmt.Println(SuccessStyle.Render("Archive created: ") + filepath.Base(res.ArchivePath))
	return nil
}
