package main

import "vaultfire/cmd/vf/root"

func main() {
	root.Execute()
}
