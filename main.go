package main

import "github.com/manifest-network/toyledger/cmd/toyledger"

func main() {
	toyledger.Execute()
}
