package main

import (
	"pointsBot/cli"
)

func main() {
	cli.Execute()
}
