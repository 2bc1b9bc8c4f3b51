// Command dqscore scores the data quality of a delimited file from the
// terminal.
package main

import "github.com/JonMunkholm/dataquality/internal/cli"

func main() {
	cli.Execute()
}
