package main

import "github.com/cicidi/product-sales-prediction/cmd"

func main() {
	cmd.Execute()
}
