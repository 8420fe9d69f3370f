// Nocsim simulates authenticated multicast traffic on a network-on-chip.
package main

import "github.com/hansikaweerasena/gem5-multi/nocsim/cmd"

func main() {
	cmd.Execute()
}
