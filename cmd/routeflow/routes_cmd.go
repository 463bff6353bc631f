package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func routesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "routes", Short: "Route management"}
	cmd.AddCommand(routesListCmd())
	cmd.AddCommand(routesGetCmd())
	cmd.AddCommand(routesLintCmd())
	return cmd
}

func routesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			for _, rt := range ws.routes.List() {
				method := rt.Method
				if method == "" {
					method = "GET"
				}
				fmt.Printf("%s\t%s %s\t%d steps\n", rt.Name, method, rt.Path, len(rt.Steps))
			}
			return nil
		},
	}
}

func routesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show a route definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			rt, ok := ws.routes.Get(args[0])
			if !ok {
				return fmt.Errorf("route not found: %s", args[0])
			}
			content, err := os.ReadFile(rt.File)
			if err != nil {
				return err
			}
			fmt.Print(string(content))
			return nil
		},
	}
}

func routesLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Report problems in route definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			total := 0
			for _, rt := range ws.routes.List() {
				findings := ws.routes.Findings(rt.Name)
				if len(findings) == 0 {
					continue
				}
				total += len(findings)
				fmt.Printf("%s:\n", rt.File)
				for _, f := range findings {
					fmt.Printf("  %s\n", f)
				}
			}

			if total > 0 {
				return fmt.Errorf("%d lint finding(s)", total)
			}
			fmt.Println("✅ No problems found")
			return nil
		},
	}
}
