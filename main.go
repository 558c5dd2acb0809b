package main

import "github.com/encodeous/vpnv4/cmd"

func main() {
	cmd.Execute()
}
