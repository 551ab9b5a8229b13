package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mealvoice/mealvoice/internal/common"
	"github.com/mealvoice/mealvoice/internal/model"
	"github.com/mealvoice/mealvoice/internal/service"
)

// Result is the outcome of one full extraction run.
type Result struct {
	Items      []model.ParsedFoodItem
	Transcript model.RawTranscript
	Strategy   model.StrategyName
}

// Pipeline chains transcription, orchestrated extraction, and assembly.
type Pipeline struct {
	transcriber  service.Transcriber
	orchestrator *Orchestrator
	assembler    *Assembler
	logger       *slog.Logger
}

// NewPipeline wires the full pipeline.
func NewPipeline(transcriber service.Transcriber, orchestrator *Orchestrator, assembler *Assembler, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		transcriber:  transcriber,
		orchestrator: orchestrator,
		assembler:    assembler,
		logger:       logger,
	}
}

// Extract runs audio through the whole pipeline. An empty Items slice with a
// nil error means the recording contained speech but no food mentions.
func (p *Pipeline) Extract(ctx context.Context, audio model.Audio, languageHint string) (Result, error) {
	transcript, err := p.transcriber.Transcribe(ctx, audio, languageHint)
	if err != nil {
		if errors.Is(err, common.ErrNoSpeech) {
			return Result{}, common.NewUserError("no speech detected in the recording", err)
		}
		return Result{}, fmt.Errorf("transcription failed: %w", err)
	}

	p.logger.Info("transcription complete",
		"backend", transcript.Backend,
		"language", transcript.Language,
		"chars", len(transcript.Text))

	run, err := p.orchestrator.Run(ctx, transcript.Text)
	if err != nil {
		return Result{}, err
	}

	prov := model.Provenance{
		Strategy:      run.Strategy.Name(),
		LLMProvider:   run.Strategy.Provider(),
		Transcription: transcript.Backend,
	}
	items := p.assembler.Assemble(run.Candidates, run.Estimates, prov)

	p.logger.Info("extraction complete",
		"strategy", prov.Strategy,
		"items", len(items))

	return Result{
		Items:      items,
		Transcript: transcript,
		Strategy:   prov.Strategy,
	}, nil
}
