// SPDX-License-Identifier: MPL-2.0

package main

import cmd "emupack-cli/cmd/emupack"

func main() {
	cmd.Execute()
}
