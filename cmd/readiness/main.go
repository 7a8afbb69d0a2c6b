package main

import "enterprise-readiness/internal/cli"

func main() {
	cli.Execute()
}
