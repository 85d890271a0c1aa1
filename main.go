package main

import "github.com/LegacyCodeHQ/includefix/cmd"

func main() {
	cmd.Execute()
}
