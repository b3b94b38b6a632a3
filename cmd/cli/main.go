package main

import (
	"fmt"
	"os"

	"github.com/kreyolab/formations/cmd/cli/auth"
	"github.com/kreyolab/formations/cmd/cli/formations"
	"github.com/kreyolab/formations/cmd/cli/publish"
	"github.com/kreyolab/formations/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	formations.InitFormations(rootCmd)
	publish.InitPublish(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
