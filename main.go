// SPDX-License-Identifier: MPL-2.0

package main

import cmd "rundown-cli/cmd/rundown"

func main() {
	cmd.Execute()
}
