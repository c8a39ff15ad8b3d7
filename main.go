package main

import "github.com/theirongolddev/taxcalc/cmd"

func main() {
	cmd.Execute()
}
