package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/claude/pocketlifts/internal/importer"
	"github.com/claude/pocketlifts/internal/upload"
	"github.com/spf13/cobra"
)

type importFlags struct {
	add      bool
	remote   string
	stateDir string
	force    bool
}

func importCmd() *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Find movement names in a chat export",
		Long: `Scan a chat export (.txt, .zip or .gz) for movement names and list the ones
not yet in the catalog ("+" new, "=" already present). With --add the new
names are added as movements.

With --remote the export is sent to a running "pocketlifts serve" instance
instead of the local database. Exports already applied on that server are
skipped unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.remote != "" {
				return runRemoteImport(cmd, args[0], f)
			}
			return runLocalImport(cmd, args[0], f.add)
		},
	}
	cmd.Flags().BoolVar(&f.add, "add", false, "add the new movements to the catalog")
	cmd.Flags().StringVar(&f.remote, "remote", "", "base URL of a pocketlifts server")
	cmd.Flags().StringVar(&f.stateDir, "state-dir", "", "where remote imports are remembered (default: next to storage.path)")
	cmd.Flags().BoolVar(&f.force, "force", false, "resend an export that was already applied")
	return cmd
}

func runLocalImport(cmd *cobra.Command, path string, add bool) error {
	rc, err := importer.OpenExport(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	t, db, err := openTracker(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	imp := t.NewImporter(db)
	source := filepath.Base(path)
	p, err := imp.Propose(cmd.Context(), source, rc)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if !printProposal(cmd.OutOrStdout(), p) || !add {
		return nil
	}

	res, err := imp.Apply(cmd.Context(), source, p.Candidates)
	if err != nil {
		return err
	}
	log.Info("import applied", "added", res.MovementsAdded, "skipped", res.MovementsSkipped)
	return nil
}

func runRemoteImport(cmd *cobra.Command, path string, f importFlags) error {
	ctx := cmd.Context()

	stateDir := f.stateDir
	if stateDir == "" {
		stateDir = filepath.Dir(cfg.Storage.Path)
	}
	sent, err := upload.OpenSentLog(stateDir)
	if err != nil {
		return err
	}
	defer sent.Close()

	hash, err := upload.HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	if prev, ok, err := sent.Lookup(hash, f.remote); err != nil {
		return err
	} else if ok && !f.force {
		log.Info("export already applied, skipping",
			"file", path, "as", prev.Path, "at", prev.SentAt, "added", prev.MovementsAdded)
		return nil
	}

	data, err := readExport(path)
	if err != nil {
		return err
	}

	client := upload.NewClient(f.remote)
	source := filepath.Base(path)
	p, err := client.ProposeImport(ctx, source, data)
	if err != nil {
		return fmt.Errorf("proposing %s on %s: %w", source, f.remote, err)
	}
	if !printProposal(cmd.OutOrStdout(), p) || !f.add {
		return nil
	}

	res, err := client.ApplyImport(ctx, source, p.Candidates)
	if err != nil {
		return fmt.Errorf("applying %s on %s: %w", source, f.remote, err)
	}
	if err := sent.MarkSent(hash, f.remote, path, res.MovementsAdded); err != nil {
		log.Warn("failed to remember export", "file", path, "error", err)
	}
	log.Info("remote import applied", "server", f.remote, "added", res.MovementsAdded, "skipped", res.MovementsSkipped)
	return nil
}

// readExport returns the decompressed text of a chat export.
func readExport(path string) ([]byte, error) {
	rc, err := importer.OpenExport(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// printProposal lists the candidates and reports whether there were any.
func printProposal(w io.Writer, p *importer.Proposal) bool {
	if len(p.Candidates) == 0 {
		fmt.Fprintln(w, p.Result.Message)
		return false
	}
	for _, c := range p.Candidates {
		mark := "+"
		if c.Exists {
			mark = "="
		}
		fmt.Fprintf(w, "%s %s\n", mark, c.Name)
	}
	log.Info("import proposal", "source", p.Source, "lines", p.Result.LinesRead, "candidates", len(p.Candidates))
	return true
}
