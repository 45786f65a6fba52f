package worker

import (
	"context"
	"fmt"
	"log/slog"

	"cadenza/internal/scorekit"
)

// allGroups sets the shuffle bit for each of the seven tracks.
const allGroups = 0x7f

type playWorker struct {
	logger    *slog.Logger
	completer Completer
	runtime   scorekit.Runtime
}

func (w *playWorker) execute(ctx context.Context, task Task) (any, error) {
	switch task.Op {
	case OpCuePlayback:
		return nil, w.runtime.CuePlayback(ctx, task.Args.ExperienceID)
	case OpShuffle:
		return nil, w.runtime.Shuffle(ctx, task.Args.Groups)
	case OpShuffleAll:
		return nil, w.runtime.Shuffle(ctx, allGroups)
	case OpScoreSliders:
		return w.runtime.ScoreSliders(ctx)
	case OpScoreSliderValue:
		return w.runtime.ScoreSliderValue(ctx, task.Args.SliderID)
	case OpSetScoreSliderValue:
		return nil, w.runtime.SetScoreSliderValue(ctx, task.Args.SliderID, task.Args.Value)
	case OpSetupSystemSliders:
		return nil, w.runtime.SetupSystemSliders(ctx)
	case OpSystemSliders:
		return w.runtime.SystemSliders(ctx)
	case OpSystemSliderValue:
		return w.runtime.SystemSliderValue(ctx, task.Args.SliderName)
	case OpSetSystemSliderValue:
		return nil, w.runtime.SetSystemSliderValue(ctx, task.Args.SliderName, task.Args.Value)
	case OpPlayingThemes:
		return w.runtime.PlayingThemes(ctx)
	case OpPlayingSection:
		return w.runtime.PlayingSection(ctx)
	case OpPlayingExperience:
		return w.runtime.PlayingExperience(ctx)
	case OpScoreThumbsUp:
		return nil, w.runtime.ScoreThumbsUp(ctx)
	case OpScoreThumbsDown:
		return nil, w.runtime.ScoreThumbsDown(ctx)
	case OpScoreThumbsUpTrack:
		return nil, w.runtime.ScoreThumbsUpOnTrack(ctx, task.Args.Track)
	case OpScoreThumbsDownTrack:
		return nil, w.runtime.ScoreThumbsDownOnTrack(ctx, task.Args.Track)
	case OpSystemThumbsUp:
		return nil, w.runtime.SystemThumbsUp(ctx)
	case OpSystemThumbsDown:
		return nil, w.runtime.SystemThumbsDown(ctx)
	case OpSystemThumbsUpTrack:
		// The system hook has no per-track variant yet; the master hook
		// still registers the event.
		return nil, w.runtime.SystemThumbsUp(ctx)
	case OpSystemThumbsDownTrack:
		return nil, w.runtime.SystemThumbsDown(ctx)
	case OpOverrideNextSection:
		return nil, w.runtime.OverrideNextSection(ctx, task.Args.SectionKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, task.Op)
	}
}
