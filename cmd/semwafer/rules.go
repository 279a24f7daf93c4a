package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/semwafer/rule"
)

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List registered sampling rule types",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range rule.NewRegistry().Types() {
				fmt.Println(t)
			}
		},
	}
}
