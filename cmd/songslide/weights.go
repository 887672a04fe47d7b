package main

import (
	"github.com/spf13/cobra"

	"github.com/songslide/songslide/internal/data"
	"github.com/songslide/songslide/internal/formatter"
	"github.com/songslide/songslide/internal/ranking"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show or change the search weights",
}

var weightsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current weights (stored values merged with defaults)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := outputFormat()
		if err != nil {
			return err
		}
		ds, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer ds.Close()
		p, err := ds.LatestWeights(cmd.Context())
		if err != nil {
			return err
		}
		w := ranking.MergeWithDefaults(p)
		return render(cmd, &formatter.Result{Type: formatter.ResultWeights, Weights: &w}, f)
	},
}

// weightFlags maps each weight's flag name to its field.
var weightFlags = []struct {
	name  string
	usage string
	field func(*data.Weights) *float64
}{
	{"title-exact", "score for a title equal to the query", func(w *data.Weights) *float64 { return &w.TitleExact }},
	{"title-partial", "score for a title containing the query", func(w *data.Weights) *float64 { return &w.TitlePartial }},
	{"chorus", "score for a chorus first line match", func(w *data.Weights) *float64 { return &w.Chorus }},
	{"verse1", "score for a verse 1 first line match", func(w *data.Weights) *float64 { return &w.Verse1 }},
	{"lyrics", "score for a full lyrics match", func(w *data.Weights) *float64 { return &w.Lyrics }},
	{"unit", "score for any slide matching", func(w *data.Weights) *float64 { return &w.Unit }},
	{"fuzzy", "bonus added to suggestion scores", func(w *data.Weights) *float64 { return &w.Fuzzy }},
}

var weightsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store a new weight configuration",
	Long: `Weights not given on the command line keep their current value. The
new configuration is appended; earlier ones are kept as history.`,
	Example: `  songslide weights set --title-exact 120 --fuzzy 5`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := outputFormat()
		if err != nil {
			return err
		}
		ds, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer ds.Close()
		current, err := ds.LatestWeights(cmd.Context())
		if err != nil {
			return err
		}
		w := ranking.MergeWithDefaults(current)
		for _, wf := range weightFlags {
			if cmd.Flags().Changed(wf.name) {
				v, err := cmd.Flags().GetFloat64(wf.name)
				if err != nil {
					return err
				}
				*wf.field(&w) = v
			}
		}
		w, err = ranking.ParseWeights(w.Partial())
		if err != nil {
			return err
		}
		stored, err := ds.InsertWeights(cmd.Context(), w)
		if err != nil {
			return err
		}
		return render(cmd, &formatter.Result{Type: formatter.ResultWeights, Weights: &stored}, f)
	},
}

func init() {
	for _, wf := range weightFlags {
		weightsSetCmd.Flags().Float64(wf.name, 0, wf.usage)
	}
	weightsCmd.AddCommand(weightsShowCmd, weightsSetCmd)
}
