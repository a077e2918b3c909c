package cli

import (
	"io"

	"github.com/m-mizutani/fireconf"
	"github.com/secmon-lab/techinsights/pkg/cli/config"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
)

func PrintInsights(w io.Writer, query string, insights []*model.Insight) {
	printInsights(w, query, insights)
}

func PrintIngestion(w io.Writer, result *model.IngestionResult) {
	printIngestion(w, result)
}

func GetIndexConfig() *fireconf.Config {
	return getIndexConfig()
}

func SearchThreshold(flag float64, flagSet bool, cfg config.SearchConfig) (float64, bool) {
	p := &pipeline{threshold: flag, thresholdSet: flagSet}
	return p.searchThreshold(cfg)
}

func FirstPositive(values ...float64) float64 {
	return firstPositive(values...)
}
