package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/config"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load knowledge files into the vector index",
	Long: `Load every *.txt file of a directory into the knowledge base.

The first line of a file is its title and the document type is inferred from
the file name (services, appointments, pricing, warranty, company_info).

Examples:
  agentbot ingest --dir ./knowledge_base
  agentbot ingest --dir ./knowledge_base --watch`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		watch, _ := cmd.Flags().GetBool("watch")
		if dir == "" {
			return fmt.Errorf("--dir is required")
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runIngest(ctx, cmd.OutOrStdout(), dir, watch)
	},
}

func init() {
	ingestCmd.Flags().String("dir", "knowledge_base", "directory holding *.txt knowledge files")
	ingestCmd.Flags().Bool("watch", false, "keep running and re-ingest files as they change")
}

func runIngest(ctx context.Context, out io.Writer, dir string, watch bool) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.Index.Backend == config.BackendMemory {
		a.logger.Warn("Index backend is memory, ingested documents are dropped when the command exits")
	}
	if !a.embed.Available() {
		return fmt.Errorf("cannot ingest: embedding service unavailable")
	}
	if !a.index.Available() {
		return fmt.Errorf("cannot ingest: vector store unavailable")
	}

	svc := ingest.New(a.chunker(), a.embed, a.index)

	docs, loadErrs, err := ingest.LoadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range loadErrs {
		fmt.Fprintf(out, "✗ %v\n", e)
	}

	if len(docs) > 0 {
		res := svc.IngestBatch(ctx, docs)
		printBatch(out, docs, res)
	} else {
		fmt.Fprintf(out, "No %s files found in %s\n", ingest.KnowledgeExt, dir)
	}

	if !watch {
		return nil
	}

	w, err := ingest.NewWatcher(ingest.DefaultDebounce, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", dir)
	return w.Watch(ctx, dir, func(ctx context.Context, c ingest.Change) {
		if c.Removed {
			n, err := svc.Remove(ctx, ingest.FileDocID(c.Path))
			printRemoval(out, filepath.Base(c.Path), n, err)
			return
		}
		doc, err := ingest.LoadFile(c.Path)
		if err != nil {
			a.logger.Warn("Skipping knowledge file", zap.String("path", c.Path), zap.Error(err))
			return
		}
		res := svc.Ingest(ctx, doc)
		printResult(out, doc.Source, res)
	})
}

func printRemoval(out io.Writer, name string, chunks int, err error) {
	if err != nil {
		fmt.Fprintf(out, "✗ %s: remove failed: %v\n", name, err)
		return
	}
	fmt.Fprintf(out, "- %s: removed (%d chunks)\n", name, chunks)
}

func printBatch(out io.Writer, docs []ingest.Document, res ingest.BatchResult) {
	for i, r := range res.Results {
		printResult(out, docs[i].Source, r)
	}
	fmt.Fprintf(out, "\nIngested %d/%d documents (%d failed)\n", res.Successful, res.Total, res.Failed)
}

func printResult(out io.Writer, file string, r ingest.Result) {
	if r.Err != nil {
		fmt.Fprintf(out, "✗ %s: %v\n", file, r.Err)
		return
	}
	fmt.Fprintf(out, "✓ %s: %q (%d chunks)\n", file, r.Title, r.ChunksCreated)
}
