package dummy

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"voiceq/internal/channel"
	"voiceq/internal/logging"
)

// ServerConfig shapes the stub assistant's behaviour.
type ServerConfig struct {
	Port int

	// Base latency plus up to Jitter of random extra delay per reply.
	Latency time.Duration
	Jitter  time.Duration

	// Silent accepts commands but never replies (timeout testing).
	Silent bool
	// OmitRequestID leaves request_id off replies, like services that do not echo it.
	OmitRequestID bool

	Events channel.Events
}

type server struct {
	cfg      ServerConfig
	upgrader websocket.Upgrader
}

// Handler returns the stub's routes:
//
//	GET  /           health check
//	GET  /ws         websocket command channel
//	POST /ai-intent  HTTP intent endpoint
func Handler(cfg ServerConfig) http.Handler {
	if cfg.Events.Command == "" {
		cfg.Events = channel.DefaultEvents
	}
	s := &server{
		cfg:      cfg,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("VoiceQ stub assistant is running"))
	})
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/ai-intent", s.serveIntent)
	return mux
}

// Start serves the stub on cfg.Port in the background.
func Start(cfg ServerConfig) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: Handler(cfg),
	}

	logging.Logger.Info("stub assistant listening",
		"ws", fmt.Sprintf("ws://localhost%s/ws", addr),
		"http", fmt.Sprintf("http://localhost%s/ai-intent", addr),
		"silent", cfg.Silent,
	)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Error("stub assistant failed", "error", err)
		}
	}()
	return server
}

func (s *server) delay() {
	d := s.cfg.Latency
	if s.cfg.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(s.cfg.Jitter)))
	}
	if d > 0 {
		time.Sleep(d)
	}
}

func (s *server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	var pending sync.WaitGroup
	defer pending.Wait()

	write := func(event string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.WriteJSON(channel.Envelope{Event: event, Data: payload})
	}

	for {
		var env channel.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		if env.Event != s.cfg.Events.Command {
			continue
		}

		var cmd map[string]string
		json.Unmarshal(env.Data, &cmd)
		text := cmd["text"]
		if text == "" {
			text = cmd["command"]
		}
		id := cmd["request_id"]
		if s.cfg.OmitRequestID {
			id = ""
		}

		if s.cfg.Silent {
			continue
		}

		pending.Add(1)
		go func() {
			defer pending.Done()
			s.delay()

			reply, ok := Classify(text)
			if !ok {
				write(s.cfg.Events.Error, channel.ErrorEvent{RequestID: id, Message: "unrecognized"})
				return
			}
			write(s.cfg.Events.Action, channel.ActionEvent{
				RequestID:  id,
				Action:     reply.Action,
				Direction:  reply.Direction,
				Feedback:   reply.Feedback,
				Category:   reply.Category,
				Transcript: text,
			})
		}()
	}
}

func (s *server) serveIntent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(map[string]string{"error": "method not allowed"})
		return
	}

	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["command"] == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "No command provided"})
		return
	}

	if s.cfg.Silent {
		<-r.Context().Done()
		return
	}
	s.delay()

	reply, ok := Classify(body["command"])
	if !ok {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "unrecognized"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"intent": reply.Action})
}
