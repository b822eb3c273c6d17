package main

import "EcoCSM-App/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
