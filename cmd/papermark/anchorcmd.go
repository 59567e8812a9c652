package main

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khoj-ai/openpaper-sub002/anchor"
	"github.com/khoj-ai/openpaper-sub002/highlights"
)

var anchorCmd = &cobra.Command{
	Use:   "anchor <file> <highlights.json>",
	Short: "Resolve stored highlight records against a document",
	Long:  "Index the document and report, per record, whether its span anchors exactly, fuzzily, or not at all.",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnchor,
}

func runAnchor(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	doc, err := loadDocument(args[0])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading highlights: %w", err)
	}
	var records []highlights.Highlight
	if err := sonic.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parsing highlights: %w", err)
	}

	valid := highlights.FilterValid(records)
	if dropped := len(records) - len(valid); dropped > 0 {
		log.Warn("dropped malformed highlight records", zap.Int("count", dropped))
	}

	idx := anchor.BuildIndex(doc)
	resolver := newResolver(idx)

	for _, h := range valid {
		page := -1
		if h.PageNumber != nil && *h.PageNumber >= 1 && *h.PageNumber <= idx.PageCount() {
			page = *h.PageNumber - 1
		}

		var m anchor.Match
		kind := anchor.ResolvedNone
		if h.Role == highlights.RoleAssistant {
			if ms := resolver.ResolveFuzzy(h.RawText, page); len(ms) > 0 {
				m, kind = ms[0], anchor.ResolvedFuzzy
			}
		} else {
			m, kind = resolver.Resolve(h.RawText, h.StartOffset, h.EndOffset, page)
		}

		switch kind {
		case anchor.ResolvedNone:
			fmt.Printf("%s  MISS   %q\n", h.ID, h.RawText)
		default:
			fmt.Printf("%s  %-5s  page %d [%d:%d] similarity %.2f  %q\n",
				h.ID, kind, m.Page+1, m.Start, m.End, m.Similarity, idx.Slice(m.Start, m.End))
		}
	}
	return nil
}
