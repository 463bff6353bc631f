package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func stepsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "steps", Short: "Step management"}
	cmd.AddCommand(stepsListCmd())
	cmd.AddCommand(stepsGetCmd())
	cmd.AddCommand(stepsCreateCmd())
	return cmd
}

func stepsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			for _, st := range ws.steps.List() {
				status := "available"
				if !st.Available {
					status = "unavailable: " + st.Reason
				}
				fmt.Printf("%s\t%s\t%s\n", st.ID, st.Type, status)
			}
			return nil
		},
	}
}

func stepsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a step definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			st, ok := ws.steps.Get(args[0])
			if !ok {
				return fmt.Errorf("step not found: %s", args[0])
			}
			content, err := os.ReadFile(st.File)
			if err != nil {
				return err
			}
			fmt.Print(string(content))
			return nil
		},
	}
}

func stepsCreateCmd() *cobra.Command {
	var content string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Scaffold a step file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			st, err := ws.steps.Create(args[0], content)
			if err != nil {
				return err
			}
			fmt.Printf("created %s at %s\n", st.ID, st.File)
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "step YAML content")
	return cmd
}
