package runner

import (
	"encoding/json"
	"time"

	"voiceq/internal/channel"
)

// Outcome classifies how a command's wait ended.
type Outcome string

const (
	OutcomeAction          Outcome = "action"
	OutcomeServiceError    Outcome = "service_error"
	OutcomeTimeout         Outcome = "timeout"
	OutcomeConnectionError Outcome = "connection_error"
)

// Sentinel values written into CommandResult.ActualAction.
const (
	ActualTimeout = "timeout"
	ActualError   = "error"
)

type Config struct {
	URL       string
	Transport string // "ws" or "http"
	Events    channel.Events
	TextKey   string

	// Per-command wait bound
	Timeout time.Duration

	// Suite pacing
	InterTestDelay time.Duration
	Parallel       bool
	MaxWorkers     int

	// Load driver
	Clients           int
	CommandsPerClient int
	Stagger           time.Duration // Start offset per client index
	ThinkTime         time.Duration // Pause between a session's commands
	CommandPool       []string
	Seed              int64 // 0 picks a time-based seed

	OutPrefix string
}

// DefaultConfig returns the harness defaults: 10s timeout, 0.5s suite pacing,
// 0.5s stagger and 1s think time.
func DefaultConfig() Config {
	return Config{
		URL:               "ws://localhost:5000/ws",
		Transport:         "ws",
		Events:            channel.DefaultEvents,
		Timeout:           10 * time.Second,
		InterTestDelay:    500 * time.Millisecond,
		MaxWorkers:        4,
		Clients:           1,
		CommandsPerClient: 3,
		Stagger:           500 * time.Millisecond,
		ThinkTime:         time.Second,
	}
}

func (c Config) channelOptions() channel.Options {
	return channel.Options{
		URL:       c.URL,
		Transport: c.Transport,
		Events:    c.Events,
		TextKey:   c.TextKey,
	}
}

// TestCase is one command with the action/direction the service should answer.
type TestCase struct {
	Command   string `yaml:"command" json:"command"`
	Action    string `yaml:"action" json:"action"`
	Direction string `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// Expectation is the expected half of a TestCase.
type Expectation struct {
	Action    string
	Direction string
}

func (tc TestCase) Expectation() *Expectation {
	return &Expectation{Action: tc.Action, Direction: tc.Direction}
}

// CommandResult is the terminal record of one submitted command.
type CommandResult struct {
	Command           string
	ExpectedAction    string
	ExpectedDirection string
	ActualAction      string
	ActualDirection   string
	Latency           time.Duration
	Success           bool
	Outcome           Outcome
	ErrorMessage      string
	Timestamp         time.Time
	ClientID          int
	RequestID         string
}

type commandResultJSON struct {
	Command           string  `json:"command"`
	ExpectedAction    string  `json:"expected_action,omitempty"`
	ExpectedDirection string  `json:"expected_direction,omitempty"`
	ActualAction      string  `json:"actual_action"`
	ActualDirection   string  `json:"actual_direction,omitempty"`
	Latency           float64 `json:"latency"`
	Success           bool    `json:"success"`
	Outcome           Outcome `json:"outcome"`
	ErrorMessage      string  `json:"error_message,omitempty"`
	Timestamp         string  `json:"timestamp"`
	ClientID          int     `json:"client_id"`
	RequestID         string  `json:"request_id"`
}

// MarshalJSON writes latency in seconds and the timestamp as RFC 3339.
func (r CommandResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(commandResultJSON{
		Command:           r.Command,
		ExpectedAction:    r.ExpectedAction,
		ExpectedDirection: r.ExpectedDirection,
		ActualAction:      r.ActualAction,
		ActualDirection:   r.ActualDirection,
		Latency:           r.Latency.Seconds(),
		Success:           r.Success,
		Outcome:           r.Outcome,
		ErrorMessage:      r.ErrorMessage,
		Timestamp:         r.Timestamp.Format(time.RFC3339Nano),
		ClientID:          r.ClientID,
		RequestID:         r.RequestID,
	})
}

// Observer receives every terminal result and every change in active clients.
type Observer interface {
	ObserveResult(CommandResult)
	ObserveClients(active, peak int64)
}

// StatsSnapshot is sent over the Updates channel
type StatsSnapshot struct {
	Commands uint64
	Success  uint64
	Fail     uint64
	Timeouts uint64
	Errors   uint64

	Active int64
	Peak   int64

	P50Ms float64
	P90Ms float64
	P99Ms float64
	MaxMs int64

	Elapsed time.Duration
	Done    bool
}

// StatsUpdateChan is the channel type
type StatsUpdateChan chan StatsSnapshot
