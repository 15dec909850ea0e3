package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/yourorg/tagpack-service/internal/digest"
	"github.com/yourorg/tagpack-service/internal/model"
	"github.com/yourorg/tagpack-service/internal/tagpack"
)

var (
	digestActorPack string
	digestStrict    bool
)

var digestCmd = &cobra.Command{
	Use:   "digest <tagpack>",
	Short: "Print the tag digest of every subject in a TagPack",
	Long: `Compute tag digests offline, one JSON line per subject in the order the
subjects first appear in the pack. With --actors the categories of the
referenced actors are read from an ActorPack.

Examples:
  tagpack digest packs/exchanges.yaml
  tagpack digest --actors actors.yaml packs/exchanges.yaml | jq .`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		loader := newLoader(cfg)

		tp, err := loader.LoadTagPackFile(args[0])
		if err != nil {
			return err
		}

		var actors []model.Actor
		if digestActorPack != "" {
			ap, err := loader.LoadActorPackFile(digestActorPack)
			if err != nil {
				return err
			}
			actors = ap.ActorRecords()
		}

		strict := cfg.Digest.StrictTokenMatch
		if cmd.Flags().Changed("strict") {
			strict = digestStrict
		}

		digests, err := digestPack(loader, tp, actors, strict)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, d := range digests {
			if err := enc.Encode(d); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	digestCmd.Flags().StringVar(&digestActorPack, "actors", "", "ActorPack providing actor categories")
	digestCmd.Flags().BoolVar(&digestStrict, "strict", false, "match label words as whole tokens")
}

// subjectDigest is one output line of the digest command
type subjectDigest struct {
	Identifier string            `json:"identifier"`
	Network    string            `json:"network"`
	Digest     *digest.TagDigest `json:"digest"`
}

// digestPack groups the tags of a pack by subject and computes their digests
func digestPack(loader *tagpack.Loader, tp *tagpack.TagPack, actors []model.Actor, strict bool) ([]subjectDigest, error) {
	records, _, err := loader.Records(tp)
	if err != nil {
		return nil, err
	}

	categories := make(map[string][]string, len(actors))
	for _, a := range actors {
		categories[a.ID] = a.Categories
	}

	type subject struct{ identifier, network string }
	var order []subject
	grouped := make(map[subject][]model.TagRecord)
	for _, r := range records {
		if r.HasActor() {
			r.ActorCategories = categories[*r.Actor]
		}
		key := subject{r.Identifier, r.Network}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], r)
	}

	out := make([]subjectDigest, 0, len(order))
	for _, key := range order {
		out = append(out, subjectDigest{
			Identifier: key.identifier,
			Network:    key.network,
			Digest:     digest.Compute(grouped[key], digest.WithStrictTokenMatch(strict)),
		})
	}
	return out, nil
}
