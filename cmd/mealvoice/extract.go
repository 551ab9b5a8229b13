package main

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mealvoice/mealvoice/internal/config"
	"github.com/mealvoice/mealvoice/internal/extract"
	"github.com/mealvoice/mealvoice/internal/lexicon"
	"github.com/mealvoice/mealvoice/internal/llm"
	"github.com/mealvoice/mealvoice/internal/model"
	"github.com/mealvoice/mealvoice/internal/quantity"
	"github.com/mealvoice/mealvoice/internal/review"
	"github.com/mealvoice/mealvoice/internal/service"
	"github.com/mealvoice/mealvoice/internal/storage"
	"github.com/mealvoice/mealvoice/internal/transcribe"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	itemStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	reviewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <audio-file>",
		Short: "Extract food items from a voice recording",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	cmd.Flags().String("language", "", "language hint for transcription (e.g. ar, en)")
	cmd.Flags().String("backend", "", "transcription backend (whisper, deepgram)")
	cmd.Flags().String("strategy", "", "primary extraction strategy (budget, rich)")
	_ = viper.BindPFlag("transcription.language_hint", cmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("transcription.backend", cmd.Flags().Lookup("backend"))
	_ = viper.BindPFlag("extraction.primary_strategy", cmd.Flags().Lookup("strategy"))
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	audio, err := readAudio(args[0])
	if err != nil {
		return err
	}

	pipeline, cleanup, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := pipeline.Extract(cmd.Context(), audio, cfg.Transcription.LanguageHint)
	if err != nil {
		return err
	}

	renderResult(cmd, result)
	return nil
}

func readAudio(path string) (model.Audio, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied input file
	if err != nil {
		return model.Audio{}, fmt.Errorf("failed to read audio file: %w", err)
	}
	if len(data) == 0 {
		return model.Audio{}, fmt.Errorf("audio file %s is empty", path)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return model.Audio{
		Data:     data,
		Filename: filepath.Base(path),
		MIMEType: mimeType,
	}, nil
}

// buildPipeline wires every stage from configuration. The returned cleanup
// releases the rate limiter and the reference store.
func buildPipeline(cfg *config.Config) (*extract.Pipeline, func(), error) {
	logger := slog.Default()

	transcriber, err := transcribe.New(transcribe.Config{
		Backend: cfg.Transcription.Backend,
		APIKey:  cfg.Transcription.APIKey,
		Model:   cfg.Transcription.Model,
		BaseURL: cfg.Transcription.BaseURL,
		Timeout: cfg.Transcription.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}

	client, err := llm.NewClient(llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}

	limiter := llm.NewRateLimiter(cfg.LLM.RateLimit)
	cleanups := []func(){limiter.Close}
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	lex := lexicon.Default()
	if cfg.Lexicon.Path != "" {
		lex, err = lexicon.Load(cfg.Lexicon.Path)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	var portions service.PortionReference = quantity.NewStaticPortions()
	var bands service.BandReference
	if cfg.Storage.DBPath != "" {
		store, storeErr := storage.NewSQLiteReference(cfg.Storage.DBPath, portions)
		if storeErr != nil {
			cleanup()
			return nil, nil, storeErr
		}
		cleanups = append(cleanups, func() { _ = store.Close() })
		portions = store
		bands = store
	}

	detectorOpts := []quantity.DetectorOption{
		quantity.WithLexicon(lex),
		quantity.WithPortionReference(portions),
		quantity.WithRateLimiter(limiter),
	}
	if cfg.Extraction.CacheTTL > 0 {
		detectorOpts = append(detectorOpts, quantity.WithCacheTTL(cfg.Extraction.CacheTTL))
	}

	strategies := map[string]extract.Strategy{}
	for _, name := range []string{cfg.Extraction.PrimaryStrategy, cfg.Extraction.FallbackStrategy} {
		switch name {
		case "budget":
			strategies[name] = extract.NewBudgetStrategy(client, logger, detectorOpts...)
		case "rich":
			strategies[name] = extract.NewRichStrategy(client, logger, limiter, bands, detectorOpts...)
		}
	}

	orch := extract.NewOrchestrator(
		strategies[cfg.Extraction.PrimaryStrategy],
		strategies[cfg.Extraction.FallbackStrategy],
		model.NewAttemptLog(),
		logger,
	)
	orch.SetStageTimeout(cfg.Extraction.StageTimeout)

	evaluator := review.NewEvaluator(lex, cfg.Review.Threshold)
	assembler := extract.NewAssembler(evaluator, nil, logger)

	return extract.NewPipeline(transcriber, orch, assembler, logger), cleanup, nil
}

func renderResult(cmd *cobra.Command, result extract.Result) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, titleStyle.Render("Transcript"))
	fmt.Fprintf(out, "  %s\n\n", result.Transcript.Text)

	if len(result.Items) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No food mentioned in this recording."))
		return
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Extracted items (%s strategy)", result.Strategy)))
	for i, item := range result.Items {
		fmt.Fprintf(out, "%d. %s\n", i+1, itemStyle.Render(item.Name))
		fmt.Fprintf(out, "   %.0fg", item.Quantity.NormalizedGrams)
		if item.Method != model.MethodUnknown {
			fmt.Fprintf(out, ", %s", item.Method)
		}
		fmt.Fprintf(out, " | %.0f kcal (P %.0fg / C %.0fg / F %.0fg) | confidence %.2f\n",
			item.Calories, item.Protein, item.Carbs, item.Fat, item.OverallConfidence)

		var flags []string
		if item.NeedsQuantityReview {
			flags = append(flags, "quantity")
		}
		if item.NeedsCookingMethodReview {
			flags = append(flags, "cooking method")
		}
		if len(flags) > 0 {
			fmt.Fprintf(out, "   %s\n", reviewStyle.Render("review: "+strings.Join(flags, ", ")))
		}
		for _, a := range item.Assumptions {
			fmt.Fprintf(out, "   %s\n", dimStyle.Render("assumed: "+a))
		}
	}
}
