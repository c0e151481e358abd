package main

import "github.com/compliancehq/compliance-management/cmd"

func main() {
	cmd.Execute()
}
