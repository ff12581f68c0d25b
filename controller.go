package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/elijahnyp/remote_control/command"
	"github.com/elijahnyp/remote_control/state"
	. "github.com/elijahnyp/remote_control/util"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownAction  = errors.New("unknown action")
	ErrEmptyRequest   = errors.New("empty request")
)

type Action string

const (
	RUN  Action = "run"
	UNDO Action = "undo"
	REDO Action = "redo"
)

type Request struct {
	Action  Action `json:"action"`
	Command string `json:"command"`
	reply   chan error
}

// ParseRequest accepts either a bare word ("undo", "redo" or a command
// name) or JSON such as {"action":"run","command":"porch_light_on"}.
func ParseRequest(payload []byte) (Request, error) {
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return Request{}, ErrEmptyRequest
	}
	if strings.HasPrefix(text, "{") {
		var req Request
		if err := json.Unmarshal([]byte(text), &req); err != nil {
			return Request{}, fmt.Errorf("decode request: %w", err)
		}
		req.Action = Action(strings.ToLower(string(req.Action)))
		if req.Action == "" {
			req.Action = RUN
		}
		return req, req.validate()
	}
	switch Action(strings.ToLower(text)) {
	case UNDO:
		return Request{Action: UNDO}, nil
	case REDO:
		return Request{Action: REDO}, nil
	}
	return Request{Action: RUN, Command: text}, nil
}

func (r Request) validate() error {
	switch r.Action {
	case RUN:
		if r.Command == "" {
			return ErrEmptyRequest
		}
	case UNDO, REDO:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, r.Action)
	}
	return nil
}

type DeviceStatus struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Location string `json:"location"`
	State    string `json:"state"`
}

// RoomStatus summarises one location; On is set while any of its devices is on.
type RoomStatus struct {
	Name    string   `json:"name"`
	Devices []string `json:"devices"`
	On      bool     `json:"on"`
}

// Status is a point in time copy of the controller, safe to hand to other goroutines.
type Status struct {
	Devices  []DeviceStatus `json:"devices"`
	Rooms    []RoomStatus   `json:"rooms"`
	History  []string       `json:"history"`
	Last     string         `json:"last"`
	CanUndo  bool           `json:"can_undo"`
	CanRedo  bool           `json:"can_redo"`
	Commands []string       `json:"commands"`
}

// Controller owns the remote control and the devices of the current
// catalog. Both are only touched from the Run goroutine; everyone else
// talks to it through Submit, Enqueue and Reload.
type Controller struct {
	remote    *command.RemoteControl
	catalog   *Catalog
	requests  chan Request
	reloads   chan *Catalog
	broadcast func(messageType string, data interface{})

	statusMu sync.RWMutex
	status   Status
}

func NewController(catalog *Catalog, queueSize int) *Controller {
	if queueSize < 1 {
		queueSize = 1
	}
	c := &Controller{
		requests: make(chan Request, queueSize),
		reloads:  make(chan *Catalog, 1),
	}
	c.install(catalog)
	return c
}

// OnBroadcast sets where remote events are sent. Call before Run.
func (c *Controller) OnBroadcast(fn func(messageType string, data interface{})) {
	c.broadcast = fn
}

func (c *Controller) install(catalog *Catalog) {
	c.catalog = catalog
	c.remote = command.NewRemoteControl()
	c.remote.OnChange(func(e command.Event) {
		Logger.Info().Msgf("remote %s %s (history %d)", e.Op, e.Command, e.Depth)
		if c.broadcast != nil {
			c.broadcast("remote", e)
		}
	})
	c.snapshot()
}

// Handle applies one request. Only the Run goroutine (or a test owning the
// controller) may call it.
func (c *Controller) Handle(req Request) error {
	switch req.Action {
	case RUN:
		cmd, ok := c.catalog.Lookup(req.Command)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, req.Command)
		}
		c.remote.SetCommand(cmd)
	case UNDO:
		c.remote.UndoCommand()
	case REDO:
		c.remote.RedoCommand()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, req.Action)
	}
	c.snapshot()
	return nil
}

func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			Logger.Debug().Msg("controller stopped")
			return
		case catalog := <-c.reloads:
			Logger.Info().Msgf("loaded %d devices, history cleared", len(catalog.Devices()))
			c.install(catalog)
		case req := <-c.requests:
			err := c.Handle(req)
			if err != nil {
				Logger.Warn().Msgf("request %s %s failed: %v", req.Action, req.Command, err)
			}
			if req.reply != nil {
				req.reply <- err
			}
		}
	}
}

// Enqueue hands req to the Run loop without waiting for the result.
func (c *Controller) Enqueue(req Request) {
	req.reply = nil
	Logger.Debug().Msgf("request queued: queue len %v", len(c.requests))
	c.requests <- req
}

// Submit hands req to the Run loop and waits for it to be applied.
func (c *Controller) Submit(ctx context.Context, req Request) error {
	req.reply = make(chan error, 1)
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload swaps in a new catalog. The old history refers to the old devices,
// so it is dropped along with them.
func (c *Controller) Reload(catalog *Catalog) {
	select {
	case <-c.reloads: // a newer catalog supersedes an unapplied one
	default:
	}
	c.reloads <- catalog
}

func (c *Controller) Status() Status {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.status
}

func (c *Controller) snapshot() {
	s := Status{
		Devices:  []DeviceStatus{},
		Rooms:    []RoomStatus{},
		History:  []string{},
		Last:     command.Name(c.remote.Last()),
		CanUndo:  c.remote.CanUndo(),
		CanRedo:  c.remote.CanRedo(),
		Commands: c.catalog.Names(),
	}
	for _, d := range c.catalog.Devices() {
		s.Devices = append(s.Devices, DeviceStatus{
			Name:     d.Name(),
			Kind:     string(d.Kind()),
			Location: d.Location(),
			State:    state.StatusString(d.Status()),
		})
	}
	for _, room := range c.catalog.Rooms() {
		rs := RoomStatus{Name: room.Name, Devices: []string{}, On: room.AnyOn()}
		for _, d := range room.Devices {
			rs.Devices = append(rs.Devices, d.Name())
		}
		s.Rooms = append(s.Rooms, rs)
	}
	for _, cmd := range c.remote.History() {
		s.History = append(s.History, command.Name(cmd))
	}
	c.statusMu.Lock()
	c.status = s
	c.statusMu.Unlock()
}

// newReporter publishes device changes: a log line, the retained MQTT state
// and a websocket update.
func newReporter(m Model, broadcast func(messageType string, data interface{})) state.Reporter {
	topics := make(map[string]string, len(m.Devices))
	for _, d := range m.Devices {
		topics[d.Name] = d.StateTopic()
	}
	return func(d state.Device) {
		status := state.StatusString(d.Status())
		Logger.Info().Msgf("%s is %s (%s)", d.Kind().DisplayName(), status, d.Name())
		if topic, ok := topics[d.Name()]; ok {
			Publish(topic, true, status)
		}
		if broadcast != nil {
			broadcast("device_state", DeviceStatus{
				Name:     d.Name(),
				Kind:     string(d.Kind()),
				Location: d.Location(),
				State:    status,
			})
		}
	}
}
