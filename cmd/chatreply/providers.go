package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haowjy/chatreply-go"
	"github.com/haowjy/chatreply-go/providers"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered providers and their catalog models",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			registry := providers.NewRegistry(providers.Options{})
			catalogs := chatreply.GetCatalogRegistry()

			out := cmd.OutOrStdout()
			for _, id := range registry.IDs() {
				models := catalogs.ModelNames(id)
				if len(models) == 0 {
					fmt.Fprintf(out, "%s\n", id)
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", id, strings.Join(models, ", "))
			}
		},
	}
}
