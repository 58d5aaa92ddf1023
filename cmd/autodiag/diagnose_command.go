package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"autodiag/internal/diagnose"
	"autodiag/internal/evidence"
	"autodiag/internal/logging"
	"autodiag/internal/wavio"
)

// corpusFileItem is one reference recording in the corpus manifest. The
// audio path is resolved relative to the working directory and decoded
// before diagnosis; decode failures degrade the item to text-only.
type corpusFileItem struct {
	evidence.ReferenceItem
	AudioPath string `json:"audio_path,omitempty"`
}

func newDiagnoseCommand(ctx *commandContext) *cobra.Command {
	var (
		wavPath       string
		corpusPath    string
		year          int
		manufacturer  string
		model         string
		soundLocation string
		description   string
		occurrence    []string
		issueDuration string
		progression   string
		recentWork    string
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Run a diagnosis from a WAV recording and a corpus manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			var recorder diagnose.Recorder
			if store != nil {
				defer store.Close()
				recorder = store
			}

			orchestrator, err := buildOrchestrator(cfg, logger, recorder)
			if err != nil {
				return err
			}

			req := diagnose.Request{
				Vehicle:       diagnose.Vehicle{Year: year, Manufacturer: manufacturer, Model: model},
				SoundLocation: soundLocation,
				User: evidence.UserContext{
					Description:   description,
					Occurrence:    occurrence,
					IssueDuration: issueDuration,
					Progression:   progression,
					RecentWork:    recentWork,
				},
			}

			if strings.TrimSpace(wavPath) != "" {
				signal, err := decodeWAVFile(wavPath)
				if err != nil {
					return fmt.Errorf("decode %s: %w", wavPath, err)
				}
				req.Samples = signal.Samples
				req.SampleRate = signal.SampleRate
			}

			if strings.TrimSpace(corpusPath) != "" {
				corpus, err := loadCorpusManifest(corpusPath, logger)
				if err != nil {
					return err
				}
				req.Corpus = corpus
			}

			result, err := orchestrator.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderVerdictLine(result.AIPowered, shouldColorize(out)))
			fmt.Fprintln(out, renderResult(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&wavPath, "wav", "", "Path to the query WAV recording")
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "Path to a JSON corpus manifest")
	cmd.Flags().IntVar(&year, "year", 0, "Vehicle model year")
	cmd.Flags().StringVar(&manufacturer, "make", "", "Vehicle manufacturer")
	cmd.Flags().StringVar(&model, "model", "", "Vehicle model")
	cmd.Flags().StringVar(&soundLocation, "location", "", "Where the sound comes from")
	cmd.Flags().StringVar(&description, "description", "", "User description of the problem")
	cmd.Flags().StringSliceVar(&occurrence, "occurs", nil, "When the sound occurs (repeatable)")
	cmd.Flags().StringVar(&issueDuration, "duration", "", "How long the issue has been present")
	cmd.Flags().StringVar(&progression, "progression", "", "Whether the issue is getting worse")
	cmd.Flags().StringVar(&recentWork, "recent-work", "", "Recent maintenance or repairs")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the result as JSON")

	return cmd
}

func decodeWAVFile(path string) (*wavio.Signal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return wavio.Decode(data)
}

func loadCorpusManifest(path string, logger *slog.Logger) ([]diagnose.CorpusItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus manifest: %w", err)
	}
	var entries []corpusFileItem
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus manifest: %w", err)
	}

	corpus := make([]diagnose.CorpusItem, 0, len(entries))
	for _, entry := range entries {
		item := diagnose.CorpusItem{Item: entry.ReferenceItem}
		if strings.TrimSpace(entry.AudioPath) != "" {
			if signal, err := decodeWAVFile(entry.AudioPath); err == nil {
				item.Samples = signal.Samples
				item.SampleRate = signal.SampleRate
			} else {
				logger.Debug("corpus audio skipped",
					logging.String("item_id", entry.ID),
					logging.String("path", entry.AudioPath),
					logging.Error(err),
				)
			}
		}
		corpus = append(corpus, item)
	}
	return corpus, nil
}
