package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soratune/scorefeats/pkg/featstore"
)

var cacheDir string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the feature cache",
	Long: `Inspect the BadgerDB feature cache written by 'aggregate' and
'segment' with --cache-dir.

Records are grouped by kind: 'frames' (frame-synchronous labels) and
'segments' (syllable segments).`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list <frames|segments>",
	Short: "List cached utterance ids of a kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		cache, err := openCache(cacheDir)
		if err != nil {
			return err
		}
		defer cache.Close()

		for utt, err := range cache.ListUtterances(context.Background(), kind) {
			if err != nil {
				return err
			}
			fmt.Println(utt)
		}
		return nil
	},
}

var cacheGetCmd = &cobra.Command{
	Use:   "get <frames|segments> <utterance>",
	Short: "Print one cached record as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		cache, err := openCache(cacheDir)
		if err != nil {
			return err
		}
		defer cache.Close()

		ctx := context.Background()
		var rec any
		switch kind {
		case featstore.KindFrames:
			rec, err = cache.Frames(ctx, args[1])
		case featstore.KindSegments:
			rec, err = cache.Segments(ctx, args[1])
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <frames|segments> <utterance>",
	Short: "Delete one cached record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}
		cache, err := openCache(cacheDir)
		if err != nil {
			return err
		}
		defer cache.Close()

		return cache.Delete(context.Background(), kind, args[1])
	},
}

func parseKind(s string) (featstore.Kind, error) {
	switch s {
	case "frames":
		return featstore.KindFrames, nil
	case "segments":
		return featstore.KindSegments, nil
	}
	return "", fmt.Errorf("unknown kind %q (want frames or segments)", s)
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "feature cache directory (required)")
	cacheCmd.MarkPersistentFlagRequired("cache-dir")
	cacheCmd.AddCommand(cacheListCmd, cacheGetCmd, cacheDeleteCmd)
	rootCmd.AddCommand(cacheCmd)
}
