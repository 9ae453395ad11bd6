// Command cachesim runs a memory trace through a simulated cache.
package main

import "github.com/sarchlab/cachesim/cachesim/cmd"

func main() {
	cmd.Execute()
}
