package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veracitor/veracity/internal/chain"
	"github.com/veracitor/veracity/internal/pipeline"
)

var errChainBroken = errors.New("fingerprint chain broken")

var historyLimit int

var verifyCmd = &cobra.Command{
	Use:   "verify <url-or-identity>",
	Short: "Verify the fingerprint chain for a piece of content",
	Long: `Verify walks the append-only fingerprint chain recorded for the
identity and checks every previous-hash link. A broken link means the
stored history was tampered with or corrupted; the analyses themselves
are never rewritten.

Example:
  veracity verify https://example.com/article
  veracity verify https://example.com/article --history 10`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().IntVar(&historyLimit, "history", 0, "also print the last N chain entries (0 disables)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	identity := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}
	defer func() { _ = p.Close() }()

	ok, err := p.VerifyChain(identity)
	var integrityErr *chain.ChainIntegrityError
	if errors.As(err, &integrityErr) {
		// A broken link is the verdict this command exists to report,
		// not an operational failure.
		ok = false
	} else if err != nil {
		return fmt.Errorf("verify chain: %w", err)
	}

	if ok {
		fmt.Printf("✓ Chain intact: %s\n", identity)
	} else {
		fmt.Printf("✗ Chain BROKEN: %s\n", identity)
	}

	if historyLimit > 0 {
		records, err := p.History(identity)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		if len(records) > historyLimit {
			records = records[len(records)-historyLimit:]
		}

		fmt.Println()
		for _, rec := range records {
			marker := " "
			if rec.ModificationDetected {
				marker = "!"
			}
			fmt.Printf("%s seq=%d %s %s\n", marker, rec.Seq, rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"), rec.ContentHash)
		}
	}

	// Returning an error lets cobra set the exit code after the
	// deferred pipeline close has run.
	if !ok {
		return fmt.Errorf("%w: %s", errChainBroken, identity)
	}
	return nil
}
