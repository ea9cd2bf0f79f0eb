package main

import "pof-predictor/internal/cli"

func main() {
	cli.Execute()
}
