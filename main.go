package main

import "zencms/cmd"

func main() {
	cmd.Execute()
}
