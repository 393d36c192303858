package main

import "relief-backend/cmd"

func main() {
	cmd.Run()
}
