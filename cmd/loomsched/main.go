// Command loomsched is the entry point for the work-order scheduler CLI.
package main

import "github.com/mansurdincer/loomsched/internal/cli"

func main() {
	cli.Execute()
}
