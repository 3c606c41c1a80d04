package main

import "github.com/ChilyGarcia/imagineapps-frontend/cmd/eventmanager/cmd"

func main() {
	cmd.Execute()
}
