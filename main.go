// The main package for the catalogctl executable.
package main

import (
	"github.com/Avinash9608/Furniture-sub006/cmd"
)

func main() {
	cmd.Execute()
}
