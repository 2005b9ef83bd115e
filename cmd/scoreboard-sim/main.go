// Command scoreboard-sim drives a running scoreboard with simulated matches.
package main

import "github.com/okian/scoreboard/internal/simulator"

func main() {
	simulator.Execute()
}
