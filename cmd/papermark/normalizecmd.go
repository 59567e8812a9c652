package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khoj-ai/openpaper-sub002/anchor"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <text>",
	Short: "Print the normalized forms of a piece of text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := anchor.Normalize(args[0])
		fmt.Printf("prepared: %q\n", n.Text)
		fmt.Printf("stripped: %q\n", n.Stripped)
		return nil
	},
}
