package main

import "tripkeeper/cmd/client/cmd"

func main() {
	cmd.Execute()
}
