package main

import "github.com/tayloree/foodcat/cmd"

func main() {
	cmd.Execute()
}
