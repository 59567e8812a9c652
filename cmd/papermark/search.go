package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khoj-ai/openpaper-sub002/anchor"
)

var searchCmd = &cobra.Command{
	Use:   "search <file> <query>",
	Short: "Search a document's text layer",
	Long:  "Index the document and run the full-text search, printing every match with its page and offsets.",
	Args:  cobra.ExactArgs(2),
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	idx := anchor.BuildIndex(doc)
	log.Debug("indexed document",
		zap.Int("pages", idx.PageCount()),
		zap.Int("segments", len(idx.Segments)),
		zap.Int("total_runes", idx.Total))

	search := anchor.NewSearch(newResolver(idx))
	if err := search.Perform(args[1]); err != nil {
		return err
	}
	if search.NotFound() {
		fmt.Println("no matches")
		return nil
	}

	for i, m := range search.Results() {
		fmt.Printf("%2d. page %d [%d:%d] similarity %.2f  %q\n",
			i+1, m.Page+1, m.Start, m.End, m.Similarity, idx.Slice(m.Start, m.End))
	}
	return nil
}
