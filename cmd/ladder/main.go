// ladder scores AI agent tool calls on the approval ladder and reports how
// much human review each one needs.
package main

import "github.com/ppiankov/ladder/internal/cli"

func main() {
	cli.Execute()
}
