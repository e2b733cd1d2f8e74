// Command stratapay runs the employee login service.
package main

import (
	"context"

	"github.com/dalemusser/stratapay/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
