// Command mealdash is a terminal client for the MealDash ordering service.
package main

import (
	"os"

	"github.com/mealdash/client-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
