// SPDX-License-Identifier: MPL-2.0

package main

import cmd "kenshin-cli/cmd/kenshin"

func main() {
	cmd.Execute()
}
