// mtr - MTR motion-script toolkit
//
// mtr indexes, plays, lints, and checks line-oriented motion scripts whose
// tracks drive one actuator each.
package main

import (
	"os"

	"github.com/ccollicutt/mtr/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
