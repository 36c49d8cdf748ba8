package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"tomatick/internal/core/model"
	"tomatick/internal/core/session"
	"tomatick/internal/core/timer"
	"tomatick/internal/ipc"
	"tomatick/internal/metrics"
	"tomatick/internal/stats"
)

// DefaultTickInterval is how often the control loop advances the timer.
const DefaultTickInterval = 100 * time.Millisecond

// SessionRecorder persists finished sessions.
type SessionRecorder interface {
	RecordSession(ctx context.Context, record stats.Record) error
}

// Notifier announces completions. Implementations must not block.
type Notifier interface {
	SessionCompleted(finished session.Type)
	Configure(config model.Config)
}

// Autostart toggles launching at login.
type Autostart interface {
	SetEnabled(enabled bool) error
}

// Options wires the controller collaborators. Only Session is required.
type Options struct {
	Session      *session.Session
	Config       model.Config
	Requests     <-chan ipc.Request
	Stats        StatsProvider
	Recorder     SessionRecorder
	Notifier     Notifier
	Autostart    Autostart
	Metrics      metrics.Recorder
	Clock        timer.Clock
	TickInterval time.Duration
}

// Controller is the single goroutine that owns the Session.
type Controller struct {
	session      *session.Session
	dispatcher   *Dispatcher
	config       model.Config
	requests     <-chan ipc.Request
	local        chan ipc.Request
	reloads      chan model.Config
	resets       chan struct{}
	recorder     SessionRecorder
	notifier     Notifier
	autostart    Autostart
	metrics      metrics.Recorder
	clock        timer.Clock
	tickInterval time.Duration
	startedAt    time.Time
	background   sync.WaitGroup

	mu          sync.Mutex
	subscribers []chan ipc.StatusResponse
}

// NewController creates a controller. Call Run to start the loop.
func NewController(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NoopRecorder{}
	}
	if opts.Requests == nil {
		opts.Requests = make(chan ipc.Request)
	}
	if opts.Config.Goals.DailyTarget <= 0 {
		opts.Config.Goals.DailyTarget = model.DefaultDailyTarget
	}
	opts.Session.SetAutoStart(opts.Config.Timer.AutoStartBreaks, opts.Config.Timer.AutoStartWork)

	return &Controller{
		session:      opts.Session,
		dispatcher:   NewDispatcher(opts.Session, opts.Stats, opts.Config.Goals.DailyTarget),
		config:       opts.Config,
		requests:     opts.Requests,
		local:        make(chan ipc.Request, ipc.DefaultQueueSize),
		reloads:      make(chan model.Config, 1),
		resets:       make(chan struct{}, 1),
		recorder:     opts.Recorder,
		notifier:     opts.Notifier,
		autostart:    opts.Autostart,
		metrics:      opts.Metrics,
		clock:        opts.Clock,
		tickInterval: opts.TickInterval,
	}
}

// Run drives the session until ctx is done. Requests are applied in arrival order.
func (controller *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(controller.tickInterval)
	defer ticker.Stop()
	defer controller.closeSubscribers()
	defer controller.background.Wait()

	log.Info().
		Str("sessionType", string(controller.session.Type())).
		Dur("tick", controller.tickInterval).
		Msg("Control loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Control loop stopped")
			return nil
		case <-ticker.C:
			controller.tick(ctx)
			controller.drain(ctx)
			controller.publish()
		case request := <-controller.requests:
			controller.handle(ctx, request)
		case request := <-controller.local:
			controller.handle(ctx, request)
		case config := <-controller.reloads:
			controller.applyConfig(config)
			controller.publish()
		case <-controller.resets:
			controller.session.ResetSessionCount()
			log.Info().Msg("Daily session count reset")
			controller.publish()
		}
	}
}

// Submit routes cmd through the control loop and waits for its response.
func (controller *Controller) Submit(ctx context.Context, cmd ipc.Command) ipc.Response {
	request := ipc.NewRequest(cmd)
	select {
	case controller.local <- request:
	case <-ctx.Done():
		return ipc.NewError("App not responding")
	}
	resp, ok := request.Wait(ctx, ipc.DefaultResponseTimeout)
	if !ok {
		return ipc.NewError("Response timeout")
	}
	return resp
}

// ApplyConfig hands a reloaded configuration to the control loop. Only the latest is kept.
func (controller *Controller) ApplyConfig(config model.Config) {
	for {
		select {
		case controller.reloads <- config:
			return
		default:
		}
		select {
		case <-controller.reloads:
		default:
		}
	}
}

// ResetDailyCount asks the control loop to clear the cycle counter.
func (controller *Controller) ResetDailyCount() {
	select {
	case controller.resets <- struct{}{}:
	default:
	}
}

// Subscribe registers an observer of status snapshots. Slow observers miss updates.
func (controller *Controller) Subscribe(buffer int) <-chan ipc.StatusResponse {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan ipc.StatusResponse, buffer)
	controller.mu.Lock()
	controller.subscribers = append(controller.subscribers, ch)
	controller.mu.Unlock()
	return ch
}

// drain applies every request already queued so none waits a full tick.
func (controller *Controller) drain(ctx context.Context) {
	for {
		select {
		case request := <-controller.requests:
			controller.handle(ctx, request)
		case request := <-controller.local:
			controller.handle(ctx, request)
		default:
			return
		}
	}
}

func (controller *Controller) handle(ctx context.Context, request ipc.Request) {
	resp := controller.dispatcher.Dispatch(ctx, request.Command)
	controller.trackStart()
	request.Reply(resp)
	log.Debug().
		Str("requestId", request.ID.String()).
		Str("command", string(request.Command.Kind())).
		Str("response", string(resp.Type())).
		Msg("Command applied")
	controller.publish()
}

func (controller *Controller) tick(ctx context.Context) {
	finished := controller.session.Type()
	total := controller.session.Timer().TotalDuration()

	event, autoStart := controller.session.Update()
	if event != timer.EventCompleted {
		return
	}

	log.Info().Str("sessionType", string(finished)).Dur("duration", total).Msg("Session completed")
	controller.metrics.IncCompletion(string(finished))
	controller.recordCompletion(ctx, finished, total)
	if controller.notifier != nil {
		controller.notifier.SessionCompleted(finished)
	}

	controller.startedAt = time.Time{}
	if autoStart {
		controller.session.Start()
		log.Info().Str("sessionType", string(controller.session.Type())).Msg("Auto-started next session")
	}
	controller.trackStart()
}

func (controller *Controller) recordCompletion(ctx context.Context, finished session.Type, total time.Duration) {
	if controller.recorder == nil {
		return
	}
	startedAt := controller.startedAt
	if startedAt.IsZero() {
		startedAt = controller.clock().Add(-total)
	}
	record := stats.Record{
		SessionType: finished,
		Duration:    total,
		Planned:     total,
		Completed:   true,
		StartedAt:   startedAt,
	}

	controller.background.Add(1)
	go func() {
		defer controller.background.Done()
		if err := controller.recorder.RecordSession(context.WithoutCancel(ctx), record); err != nil {
			log.Error().Err(err).Str("sessionType", string(finished)).Msg("Record session")
		}
	}()
}

// trackStart remembers when the current timer first started running.
func (controller *Controller) trackStart() {
	switch controller.session.Timer().State() {
	case timer.StateIdle:
		controller.startedAt = time.Time{}
	case timer.StateRunning, timer.StatePaused:
		if controller.startedAt.IsZero() {
			controller.startedAt = controller.clock()
		}
	}
}

func (controller *Controller) applyConfig(config model.Config) {
	preset := config.Timer.ActivePreset()
	if !preset.SameDurations(controller.session.Preset()) {
		controller.session.SetPreset(preset)
		controller.startedAt = time.Time{}
		log.Info().
			Int("work", preset.WorkMinutes).
			Int("shortBreak", preset.ShortBreakMinutes).
			Int("longBreak", preset.LongBreakMinutes).
			Int("sessionsBeforeLong", preset.SessionsBeforeLong).
			Msg("Preset changed")
	}
	controller.session.SetAutoStart(config.Timer.AutoStartBreaks, config.Timer.AutoStartWork)

	if config.Goals.DailyTarget <= 0 {
		config.Goals.DailyTarget = model.DefaultDailyTarget
	}
	controller.dispatcher.SetDailyGoal(config.Goals.DailyTarget)

	if controller.autostart != nil && config.System.StartOnLogin != controller.config.System.StartOnLogin {
		if err := controller.autostart.SetEnabled(config.System.StartOnLogin); err != nil {
			log.Warn().Err(err).Bool("enabled", config.System.StartOnLogin).Msg("Update autostart")
		}
	}
	if controller.notifier != nil {
		controller.notifier.Configure(config)
	}
	controller.config = config
}

func (controller *Controller) publish() {
	status := StatusOf(controller.session)
	controller.mu.Lock()
	defer controller.mu.Unlock()
	for _, ch := range controller.subscribers {
		select {
		case ch <- status:
		default:
		}
	}
}

func (controller *Controller) closeSubscribers() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	for _, ch := range controller.subscribers {
		close(ch)
	}
	controller.subscribers = nil
}
