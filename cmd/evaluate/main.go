package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/mindcare/internal/evaluation"
	"github.com/zatekoja/mindcare/internal/infrastructure/observability"
	"github.com/zatekoja/mindcare/internal/scoring"
	"github.com/zatekoja/mindcare/pkg/utils"
)

func main() {
	var goldenPath, aliasesPath string
	var k int
	var minRecall float64
	flag.StringVar(&goldenPath, "golden", "config/golden_recommendations.json", "golden scenario file")
	flag.StringVar(&aliasesPath, "aliases", "config/category_aliases.json", "category and staff alias file")
	flag.IntVar(&k, "k", evaluation.DefaultK, "cutoff for Recall@K and MRR@K")
	flag.Float64Var(&minRecall, "min-recall", 0, "exit non-zero when the average Recall@K is below this value")
	flag.Parse()

	observability.InitLogger("mindcare-evaluate", "development")

	normalizer, err := utils.NewCategoryNormalizer(aliasesPath)
	if err != nil {
		log.Warn().Err(err).Str("path", aliasesPath).Msg("Falling back to built-in category aliases")
		normalizer = utils.DefaultCategoryNormalizer()
	}

	set, err := evaluation.LoadGoldenSet(goldenPath, normalizer)
	if err != nil {
		log.Fatal().Err(err).Str("path", goldenPath).Msg("Failed to load golden scenarios")
	}

	// scoring warnings would interleave with the JSON report
	aggregator := scoring.NewAggregator(4, log.Logger.Level(zerolog.ErrorLevel))

	summary, err := evaluation.NewRunner(aggregator, k).Run(context.Background(), set)
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode summary")
	}
	fmt.Println(string(out))

	if summary.AvgRecallAtK < minRecall {
		log.Error().
			Float64("recall", summary.AvgRecallAtK).
			Float64("min_recall", minRecall).
			Msg("Average recall below threshold")
		os.Exit(1)
	}
}
