// Package main is the entry point for the WebInsight service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/webinsight/internal/webinsight"
)

func main() {
	webinsight.NewApp().Run()
}
