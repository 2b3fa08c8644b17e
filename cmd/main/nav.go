package main

import (
	"fmt"
	"strings"

	"github.com/CTAG07/podtags/pkg/pod"
	"github.com/CTAG07/podtags/pkg/templating"
	"github.com/spf13/cobra"
)

func newNavCmd(a *app) *cobra.Command {
	var (
		locale        string
		includeHidden bool
	)
	cmd := &cobra.Command{
		Use:   "nav <collection>",
		Short: "Print a collection's navigation tree",
		Long: `Print the menu a template's nav tag would build for a collection: documents
in order, nested under their parents.

Examples:
  podtags nav pages
  podtags nav /content/pages --locale de`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.openPod()
			if err != nil {
				return err
			}
			collectionPath := args[0]
			if !strings.HasPrefix(collectionPath, "/") {
				collectionPath = "/content/" + collectionPath
			}
			collection, err := p.GetCollection(collectionPath)
			if err != nil {
				return err
			}
			docs, err := p.ListDocs(collection, pod.Query{
				Locale:        locale,
				OrderBy:       "order",
				IncludeHidden: includeHidden,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), templating.NewMenu(docs).String())
			return err
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "locale to list documents in (default: the pod's default locale)")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "include hidden documents")
	return cmd
}
