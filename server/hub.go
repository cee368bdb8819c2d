package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"pcm/calculator"
	"pcm/deque"
	"pcm/mesh"
	"pcm/model"
)

var (
	ErrRunActive    = errors.New("a run is already active")
	ErrInvalidLevel = errors.New("invalid refinement level")
)

// Hub serves one websocket client: it reads requests, runs simulations and
// pushes their frames back.
type Hub struct {
	cfg  Config
	opts calculator.Options
	conn *websocket.Conn
	// request
	msg chan model.Msg
	// response
	replies chan model.Msg
	done    chan struct{}
	once    sync.Once

	mu       sync.Mutex
	env      model.ParameterValues
	history  *deque.ArrDeque[model.Frame]
	runID    string
	cancel   context.CancelFunc
	lastPush time.Time
	running  sync.WaitGroup
}

func NewHub(cfg Config, opts calculator.Options) *Hub {
	return &Hub{
		cfg:     cfg,
		opts:    opts,
		msg:     make(chan model.Msg, 10),
		replies: make(chan model.Msg, 64),
		done:    make(chan struct{}),
		env:     model.ParameterValues{},
		history: deque.NewArrDeque[model.Frame](cfg.HistorySize),
	}
}

func (h *Hub) reply(typ, content string) {
	select {
	case h.replies <- model.Msg{Type: typ, Content: content}:
	case <-h.done:
	}
}

func (h *Hub) replyJSON(typ string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.reply(model.MsgError, err.Error())
		return
	}
	h.reply(typ, string(data))
}

func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.replies:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.WithError(err).Warn("write reply")
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case msg := <-h.msg:
			h.handle(msg)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handle(msg model.Msg) {
	log.WithField("type", msg.Type).Debug("request")
	switch msg.Type {
	case model.MsgEnv:
		var env model.ParameterValues
		if err := json.Unmarshal([]byte(msg.Content), &env); err != nil {
			h.reply(model.MsgError, fmt.Sprintf("env: %v", err))
			return
		}
		h.mu.Lock()
		h.env.Update(env)
		h.mu.Unlock()
		h.reply(model.MsgEnvSet, "env is set")
	case model.MsgStart:
		id, err := h.start(msg.Content)
		if err != nil {
			h.reply(model.MsgError, err.Error())
			return
		}
		h.reply(model.MsgStarted, id)
	case model.MsgStop:
		h.reply(model.MsgStopped, h.stop())
	case model.MsgHistory:
		h.mu.Lock()
		frames := h.history.Items()
		h.mu.Unlock()
		h.replyJSON(model.MsgHistory, frames)
	default:
		h.reply(model.MsgError, fmt.Sprintf("no such type %q", msg.Type))
	}
}

func (h *Hub) start(content string) (string, error) {
	req := model.RunRequest{Model: "reduced"}
	if content != "" {
		if err := json.Unmarshal([]byte(content), &req); err != nil {
			return "", fmt.Errorf("start: %w", err)
		}
	}
	m, err := calculator.NewModel(req.Model)
	if err != nil {
		return "", err
	}
	set := req.ParameterSet
	if set == "" {
		set = h.cfg.ParameterSet
	}
	params, err := model.GetParameterValues(set)
	if err != nil {
		return "", err
	}

	if req.Level < 0 || req.Level > h.cfg.MaxLevel {
		return "", fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidLevel, req.Level, h.cfg.MaxLevel)
	}
	opts := h.opts
	// level 0 keeps the model's own mesh
	if req.Level > 0 {
		if opts.VarPts, err = mesh.Points(req.Level); err != nil {
			return "", err
		}
	}
	if req.EndTime > 0 {
		opts.EndTime = req.EndTime
	}
	if req.TimeStep > 0 {
		opts.TimeStep = req.TimeStep
	}
	if req.OutputPoints > 0 {
		opts.OutputPoints = req.OutputPoints
	}
	if err := opts.Validate(); err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return "", ErrRunActive
	}
	params.Update(h.env)
	id := uuid.NewString()
	opts.Observer = h.observer(id, opts.OutputPoints)
	ctx, cancel := context.WithCancel(context.Background())
	h.runID, h.cancel = id, cancel
	h.history.Clear()
	h.lastPush = time.Time{}

	h.running.Add(1)
	go h.run(ctx, id, m, params, opts)
	return id, nil
}

func (h *Hub) run(ctx context.Context, id string, m calculator.Model, params model.ParameterValues, opts calculator.Options) {
	defer h.running.Done()
	logger := log.WithFields(log.Fields{"run": id, "model": m.Name()})
	logger.Info("run started")

	sol, err := m.Solve(ctx, params, opts)

	h.mu.Lock()
	if h.runID == id {
		h.cancel()
		h.runID, h.cancel = "", nil
	}
	h.mu.Unlock()

	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("run stopped")
	case err != nil:
		logger.WithError(err).Error("run failed")
		h.reply(model.MsgError, err.Error())
	default:
		logger.WithFields(log.Fields{"steps": sol.Steps, "solveTime": sol.SolveTime}).Info("run finished")
		h.replyJSON(model.MsgFinish, map[string]any{
			"run_id":     id,
			"model":      sol.ModelName,
			"steps":      sol.Steps,
			"solve_time": sol.SolveTime.Seconds(),
		})
	}
}

// observer keeps every frame in the history and pushes at most one frame
// per push interval. The last frame is always pushed.
func (h *Hub) observer(id string, points int) calculator.Observer {
	return func(frame model.Frame) {
		frame.RunID = id
		last := frame.Index == points-1
		h.mu.Lock()
		if h.runID != id {
			// stopped or superseded
			h.mu.Unlock()
			return
		}
		h.history.AddLast(frame)
		now := time.Now()
		push := last || frame.Index == 0 || now.Sub(h.lastPush) >= h.cfg.PushInterval
		if push {
			h.lastPush = now
		}
		h.mu.Unlock()
		if push {
			h.replyJSON(model.MsgFrame, frame)
		}
	}
}

// stop cancels the active run and returns its id.
func (h *Hub) stop() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel == nil {
		return ""
	}
	id := h.runID
	h.cancel()
	h.runID, h.cancel = "", nil
	return id
}

// close stops the active run and the hub goroutines.
func (h *Hub) close() {
	h.once.Do(func() {
		h.stop()
		close(h.done)
		h.running.Wait()
	})
}
