// swaggerstub CLI - inspect contracts and try requests against a contract stub
package main

import "github.com/getmockd/swaggerstub/pkg/cli"

func main() {
	cli.Execute()
}
