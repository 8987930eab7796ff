// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"config", "profile", "log-level"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	for _, name := range []string{"sample-test", "sample-only", "sample-num-files"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), name)
	}
}
