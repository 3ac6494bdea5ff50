package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	keywordsFile string
}

func (o *rootOptions) GetHistoryLimit() int    { return 0 }
func (o *rootOptions) GetKeywordsFile() string { return o.keywordsFile }

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "leadctx",
		Short:         "Inspect lead conversation context",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.keywordsFile, "keywords", os.Getenv("KEYWORDS_FILE"), "YAML keyword overrides")

	root.AddCommand(newContextCmd(opts), newShapeCmd(opts))
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
