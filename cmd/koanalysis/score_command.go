package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Leewodls/ko-analysis/internal/media/wavio"
	"github.com/Leewodls/ko-analysis/internal/voicescore"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var gender string
	var segmentSeconds float64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "score <wav-file>",
		Short: "Score a local WAV file without the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			waveform, err := wavio.DecodeFile(args[0])
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			scoring := cfg.Scoring
			speakerGender := strings.TrimSpace(gender)
			if speakerGender == "" {
				speakerGender = scoring.DefaultGender
			}

			analysis, err := voicescore.Analyze(waveform, voicescore.Options{
				EnergyThreshold: scoring.EnergyThreshold,
				MinPauseSeconds: scoring.MinPauseSeconds,
				FrameLength:     scoring.FrameLength,
				HopLength:       scoring.HopLength,
				SegmentSeconds:  segmentSeconds,
				Gender:          speakerGender,
			})
			if err != nil {
				return fmt.Errorf("analyze %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoded, err := json.MarshalIndent(analysis, "", "  ")
				if err != nil {
					return fmt.Errorf("encode analysis: %w", err)
				}
				fmt.Fprintln(out, string(encoded))
				return nil
			}

			rows := [][]string{
				{"Total score", strconv.Itoa(analysis.Scores.TotalScore)},
				{"Pause score", strconv.Itoa(analysis.Scores.IndividualScores.PauseScore)},
				{"Speech rate score", strconv.Itoa(analysis.Scores.IndividualScores.SpeechRateScore)},
				{"Pause ratio", fmt.Sprintf("%.2f%%", analysis.Pause.PauseRatio)},
				{"Pause count", strconv.Itoa(analysis.Pause.PauseCount)},
				{"Avg speech rate", fmt.Sprintf("%.2f syl/s", analysis.Summary.AvgSpeechRate)},
				{"Duration", fmt.Sprintf("%.2fs", analysis.Pause.TotalDuration)},
				{"Segments", strconv.Itoa(analysis.Summary.TotalSegments)},
				{"Grade", analysis.Pause.Grade},
			}
			printRows(out, []string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
			return nil
		},
	}

	cmd.Flags().StringVarP(&gender, "gender", "g", "", "Speaker gender hint for acoustic scoring")
	// Standalone runs use longer speech-rate windows than the pipeline does.
	cmd.Flags().Float64Var(&segmentSeconds, "segment", 5.0, "Speech-rate window length in seconds")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full analysis as JSON")

	return cmd
}
