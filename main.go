package main

import "cpk-sync/cmd"

func main() {
	cmd.Execute()
}
