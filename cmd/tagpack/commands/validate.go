package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourorg/tagpack-service/internal/tagpack"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate TagPack and ActorPack files",
	Long: `Parse and validate pack files against the configured confidence levels
and concepts. The pack kind is detected from the document.

Examples:
  tagpack validate packs/exchanges.yaml
  tagpack validate --config config/config.yaml packs/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		loader := newLoader(cfg)

		failed := 0
		for _, path := range args {
			summary, err := validateFile(loader, path)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s\n", path)
				printProblems(cmd, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK   %s: %s\n", path, summary)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) invalid", failed, len(args))
		}
		return nil
	},
}

// validateFile checks one pack and describes what it holds
func validateFile(loader *tagpack.Loader, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	kind, err := tagpack.DetectKind(data)
	if err != nil {
		return "", err
	}

	if kind == tagpack.KindActorPack {
		ap, err := loader.ParseActorPack(path, data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("actorpack with %d actor(s)", len(ap.Actors)), nil
	}

	tp, err := loader.ParseTagPack(path, data)
	if err != nil {
		return "", err
	}
	records, skipped, err := loader.Records(tp)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("tagpack with %d tag(s), %d duplicate(s)", len(records), skipped), nil
}

func printProblems(cmd *cobra.Command, err error) {
	var verr *tagpack.ValidationError
	if !errors.As(err, &verr) {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", err)
		return
	}
	for _, p := range verr.Problems {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", p)
	}
}
