package main

import "inventory-server/cmd"

func main() {
	cmd.Execute()
}
