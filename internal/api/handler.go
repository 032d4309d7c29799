package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/repo"
	"github.com/theialabs/theia-relay/internal/biz/usecase"
)

// Server exposes a local read/admin API over the relay state
type Server struct {
	statusUC *usecase.StatusUsecase
	digestUC *usecase.DigestUsecase
	logs     repo.RelayLogRepo
	prefs    repo.PreferenceRepo

	server *http.Server
	port   int
}

// NewServer creates a new API server
func NewServer(
	statusUC *usecase.StatusUsecase,
	digestUC *usecase.DigestUsecase,
	logs repo.RelayLogRepo,
	prefs repo.PreferenceRepo,
	port int,
) *Server {
	return &Server{
		statusUC: statusUC,
		digestUC: digestUC,
		logs:     logs,
		prefs:    prefs,
		port:     port,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/relay/messages", s.handleMessages)
	mux.HandleFunc("/api/relay/status", s.handleStatus)
	mux.HandleFunc("/api/relay/digest", s.handleDigest)
	mux.HandleFunc("/api/relay/preferences", s.handlePreferences)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: mux,
	}

	fmt.Printf("[API] Starting HTTP server on port %d\n", s.port)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Shutdown(context.Background())
	}
	return nil
}

// messageView is the wire shape of a relay log record
type messageView struct {
	ID             int64  `json:"id"`
	ConversationID string `json:"conversation_id"`
	FromUser       string `json:"from_user"`
	ToUser         string `json:"to_user"`
	OriginalText   string `json:"original_text"`
	RelayedText    string `json:"relayed_text"`
	Method         string `json:"method"`
	IsUrgent       bool   `json:"is_urgent"`
	AutoResponded  bool   `json:"auto_responded"`
	CreatedAt      int64  `json:"created_at"`
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	fromUser := r.URL.Query().Get("from")
	toUser := r.URL.Query().Get("to")

	records, err := s.logs.ListRecent(r.Context(), limit, fromUser, toUser)
	if err != nil {
		s.writeError(w, err)
		return
	}

	views := make([]messageView, len(records))
	for i, rec := range records {
		views[i] = messageView{
			ID:             rec.ID,
			ConversationID: rec.ConversationID,
			FromUser:       rec.FromUser,
			ToUser:         rec.ToUser,
			OriginalText:   rec.OriginalText,
			RelayedText:    rec.RelayedText,
			Method:         string(rec.Method),
			IsUrgent:       rec.IsUrgent,
			AutoResponded:  rec.AutoResponded,
			CreatedAt:      rec.CreatedAt.Unix(),
		}
	}
	s.writeJSON(w, map[string]interface{}{"messages": views})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		directive := s.statusUC.Directive(ctx)
		s.writeJSON(w, map[string]interface{}{
			"status":         string(directive.Status),
			"status_message": domain.StatusMessage(directive.Status),
			"send_policy":    string(directive.SendPolicy),
			"context":        directive.Context,
		})

	case http.MethodPost:
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		status, ok := domain.ParseUserStatus(req.Status)
		if !ok {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		if err := s.statusUC.SetStatus(ctx, status); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"success": true, "status": string(status)})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hours := 0
	if h := r.URL.Query().Get("hours"); h != "" {
		parsed, err := strconv.Atoi(h)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid hours", http.StatusBadRequest)
			return
		}
		hours = parsed
	}

	text, err := s.digestUC.Build(r.Context(), hours)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"digest": text})
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		contactID := r.URL.Query().Get("contact_id")
		if contactID == "" {
			http.Error(w, "contact_id is required", http.StatusBadRequest)
			return
		}
		allowed, err := s.prefs.AutoRespondAllowed(ctx, contactID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{
			"contact_id":           contactID,
			"auto_respond_allowed": allowed,
		})

	case http.MethodPost:
		var req struct {
			ContactID          string `json:"contact_id"`
			AutoRespondAllowed *bool  `json:"auto_respond_allowed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.ContactID == "" {
			http.Error(w, "contact_id is required", http.StatusBadRequest)
			return
		}
		if req.AutoRespondAllowed == nil {
			http.Error(w, "auto_respond_allowed is required", http.StatusBadRequest)
			return
		}
		if err := s.prefs.SetAutoRespondAllowed(ctx, req.ContactID, *req.AutoRespondAllowed); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"success": true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ============ Helpers ============

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
