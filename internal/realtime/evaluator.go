package realtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/pianoflow/pianoeval/internal/align"
	"github.com/pianoflow/pianoeval/internal/evaluate"
	"github.com/pianoflow/pianoeval/internal/notemodel"
)

// DefaultRecomputeEveryNotes is the default note-on count trigger (K).
const DefaultRecomputeEveryNotes = 4

// DefaultRecomputeInterval is the default time-based trigger (T).
const DefaultRecomputeInterval = 200 * time.Millisecond

// DefaultRingBufferCapacity bounds retained live events.
const DefaultRingBufferCapacity = 4096

// FinalEvaluation is the result of a full-piece alignment over every
// captured event, produced by GetFinalEvaluation.
type FinalEvaluation struct {
	Alignment *notemodel.AlignmentResult
	Accuracy  *evaluate.NoteAccuracyResult
	Rhythm    *evaluate.RhythmResult
	Tempo     *evaluate.TempoResult
}

// Evaluator wraps the Hybrid alignment strategy for live streaming
// input, per spec.md §4.6. Note ingestion (OnNoteOn/OnNoteOff) must
// never block; the timer trigger runs recomputes on a worker goroutine
// started by Start, and each note-count trigger runs one on a goroutine
// of its own.
type Evaluator struct {
	score   *notemodel.Score
	opt     align.Options
	hybrid  *align.Hybrid
	buffer  *RingBuffer
	bus     *Bus

	recomputeEveryNotes int
	recomputeInterval   time.Duration

	mu            sync.Mutex
	started       bool
	stopped       bool
	noteOnsSince  int
	captureStart  time.Time
	openNotes     map[int]openNote // pitch -> its most recent unclosed note-on
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// New constructs an Evaluator bound to a score. Call Start before
// ingesting note events.
func New(score *notemodel.Score, opt align.Options) *Evaluator {
	return &Evaluator{
		score:               score,
		opt:                 opt,
		hybrid:              align.NewHybrid(),
		buffer:              NewRingBuffer(DefaultRingBufferCapacity),
		bus:                 NewBus(),
		recomputeEveryNotes: DefaultRecomputeEveryNotes,
		recomputeInterval:   DefaultRecomputeInterval,
		openNotes:           make(map[int]openNote),
	}
}

// Start launches the recompute worker.
func (e *Evaluator) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	e.captureStart = time.Now()
	e.stopCh = make(chan struct{})
	e.wg.Add(1)
	go e.recomputeLoop()
}

// SubscribeFeedback exposes the underlying feedback bus to subscribers.
func (e *Evaluator) SubscribeFeedback(bufferSize int) <-chan RealTimeFeedback {
	return e.bus.SubscribeFeedback(bufferSize)
}

// SubscribeErrors exposes the underlying error-detected bus to subscribers.
func (e *Evaluator) SubscribeErrors(bufferSize int) <-chan ErrorDetectedEvent {
	return e.bus.SubscribeErrors(bufferSize)
}

// OnNoteOn ingests a note-on event. Bounded enqueue: this never blocks.
func (e *Evaluator) OnNoteOn(pitch, velocity int) {
	elapsedMs := float64(time.Since(e.captureStart).Milliseconds())
	id := generateEventID(elapsedMs, pitch)
	e.buffer.Add(notemodel.PerformanceNote{
		ID:          id,
		Pitch:       pitch,
		Velocity:    velocity,
		StartTimeMs: elapsedMs,
		DurationMs:  0,
	})

	e.mu.Lock()
	e.openNotes[pitch] = openNote{id: id, startTimeMs: elapsedMs}
	e.noteOnsSince++
	trigger := e.noteOnsSince >= e.recomputeEveryNotes
	if trigger {
		e.noteOnsSince = 0
	}
	e.mu.Unlock()

	if trigger {
		e.requestRecompute()
	}
}

// OnNoteOff ingests a note-off event. The real-time window only uses
// onsets for alignment, so this never blocks on a recompute; it
// patches the matching note-on's duration in place for the final
// report once the key is released.
func (e *Evaluator) OnNoteOff(pitch int) {
	elapsedMs := float64(time.Since(e.captureStart).Milliseconds())

	e.mu.Lock()
	note, ok := e.openNotes[pitch]
	if ok {
		delete(e.openNotes, pitch)
	}
	e.mu.Unlock()
	if !ok {
		return
	}

	e.buffer.SetDuration(note.id, elapsedMs-note.startTimeMs)
}

// openNote tracks a pitch's most recent unclosed note-on, so OnNoteOff
// can patch its duration without rescanning the ring buffer.
type openNote struct {
	id          string
	startTimeMs float64
}

func (e *Evaluator) requestRecompute() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.recompute()
	}()
}

func (e *Evaluator) recomputeLoop() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.recomputeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.recompute()
		case <-e.stopCh:
			return
		}
	}
}

// recompute runs the Hybrid aligner over the current window and
// publishes RealTimeFeedback. Out-of-window events are not revisited.
func (e *Evaluator) recompute() {
	windowMs := e.opt.LocalWindowMs
	now := float64(time.Since(e.captureStart).Milliseconds())
	sinceMs := now - windowMs
	if sinceMs < 0 {
		sinceMs = 0
	}

	events := e.buffer.Window(sinceMs)
	if len(events) == 0 {
		return
	}
	windowPerf, err := notemodel.NewPerformance(events, nil, sinceMs)
	if err != nil {
		return
	}

	windowScore := notesIntersectingWindow(e.score, sinceMs, now)
	if windowScore == nil {
		return
	}

	result, err := e.hybrid.Align(windowScore, windowPerf, e.opt)
	if err != nil {
		return
	}

	accuracy := evaluate.NoteAccuracy(result, evaluate.DefaultWeights())
	measure := currentMeasure(windowScore, now)

	var issues []string
	for _, iss := range accuracy.Issues {
		issues = append(issues, iss.Message)
	}
	e.bus.PublishFeedback(RealTimeFeedback{
		CurrentMeasure:   measure,
		LocalAccuracyPct: accuracy.Score,
		Issues:           issues,
	})

	for _, miss := range result.Missed {
		if miss.Reason == notemodel.Skipped {
			e.bus.PublishError(ErrorDetectedEvent{
				Measure: miss.Expected.Measure,
				Message: "note skipped",
			})
		}
	}
}

// GetFinalEvaluation runs one full-piece alignment over all captured
// events and the full evaluator suite.
func (e *Evaluator) GetFinalEvaluation() (*FinalEvaluation, error) {
	events := e.buffer.All()
	performance, err := notemodel.NewPerformance(events, nil, 0)
	if err != nil {
		return nil, err
	}

	result, err := e.hybrid.Align(e.score, performance, e.opt)
	if err != nil {
		return nil, err
	}

	return &FinalEvaluation{
		Alignment: result,
		Accuracy:  evaluate.NoteAccuracy(result, evaluate.DefaultWeights()),
		Rhythm:    evaluate.Rhythm(result, evaluate.RhythmToleranceMs),
		Tempo:     evaluate.Tempo(result, e.score),
	}, nil
}

// Stop drains pending work and emits a final report. In-flight
// recomputes complete before Stop returns.
func (e *Evaluator) Stop() (*FinalEvaluation, error) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil, nil
	}
	e.stopped = true
	e.mu.Unlock()

	close(e.stopCh)
	e.wg.Wait()

	final, err := e.GetFinalEvaluation()
	e.bus.Close()
	return final, err
}

// Dropped returns the number of buffered note events overwritten
// because the ring buffer was full.
func (e *Evaluator) Dropped() int {
	return e.buffer.Dropped()
}

func notesIntersectingWindow(score *notemodel.Score, sinceMs, untilMs float64) *notemodel.Score {
	var notes []notemodel.ScoreNote
	for _, n := range score.Notes {
		if n.StartTimeMs >= sinceMs && n.StartTimeMs <= untilMs {
			notes = append(notes, n)
		}
	}
	if len(notes) == 0 {
		return nil
	}
	windowed, err := notemodel.NewScore(notes, score.PPQ, score.TempoMap, score.TimeSigMap, score.TotalMeasures)
	if err != nil {
		return nil
	}
	return windowed
}

func currentMeasure(windowScore *notemodel.Score, nowMs float64) int {
	measure := 1
	for _, n := range windowScore.Notes {
		if n.StartTimeMs <= nowMs {
			measure = n.Measure
		}
	}
	return measure
}

func generateEventID(elapsedMs float64, pitch int) string {
	return fmt.Sprintf("rt-%.3f-%d", elapsedMs, pitch)
}
