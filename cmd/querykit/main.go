// Command querykit runs SQL, inspects tables and manages plain-SQL
// migrations for the configured database.
package main

import (
	"os"

	"github.com/satishbabariya/querykit/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
