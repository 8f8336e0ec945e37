// Package stubserver exposes any portal.Source over the portal wire
// protocol: GET ?action=<op>&..., POST {"action":..., "payload":...},
// JSON envelopes with a status field. It backs hanziportald, a local
// stand-in for the real spreadsheet deployment, and the integration tests.
package stubserver

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/hanzihome/portal/internal/portal"
)

// Server adapts a portal.Source to the wire protocol.
type Server struct {
	source portal.Source
	log    *log.Logger
}

// New wraps src in a wire-protocol server. A nil logger disables request
// logging.
func New(src portal.Source, logger *log.Logger) *Server {
	return &Server{source: src, log: logger}
}

// Routes returns the HTTP handler. The real deployment serves everything
// from a single URL, so every path dispatches on the action.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/", s.handleAction)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{"status": "ok"})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var (
		action  string
		params  url.Values
		payload json.RawMessage
	)
	switch r.Method {
	case http.MethodGet:
		params = r.URL.Query()
		action = params.Get("action")
	case http.MethodPost:
		// Clients send text/plain to stay a CORS "simple request", so
		// the body is decoded regardless of content type.
		var body struct {
			Action  string          `json:"action"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, "invalid request body")
			return
		}
		action = body.Action
		payload = body.Payload
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.log != nil {
		s.log.Printf("%s %s", r.Method, action)
	}
	resp := s.dispatch(r, action, params, payload)
	writeJSON(w, resp)
}

// dispatch routes one action to the source and shapes the response
// envelope. Unknown actions are reported, not dropped, so protocol drift
// between client and server surfaces immediately.
func (s *Server) dispatch(r *http.Request, action string, params url.Values, payload json.RawMessage) map[string]any {
	ctx := r.Context()

	switch action {
	case portal.ActionPing:
		return success(nil)

	// Reads
	case portal.ActionGetAssignments:
		return items(s.source.Assignments(ctx, params.Get("student"), true))
	case portal.ActionGetHistory:
		return items(s.source.History(ctx, params.Get("student"), true))
	case portal.ActionGetProgressSummary:
		sum := s.source.ProgressSummary(ctx, params.Get("student"), params.Get("range"), true)
		return success(map[string]any{"summary": sum})
	case portal.ActionGetCalendar:
		return items(s.source.Calendar(ctx, params.Get("month"), true))
	case portal.ActionGetStoreItems:
		return items(s.source.StoreItems(ctx, true))
	case portal.ActionGetRewardRules:
		return items(s.source.RewardRules(ctx, true))
	case portal.ActionGetDictionary:
		return items(s.source.Dictionary(ctx, true))
	case portal.ActionGetLoginLogs:
		return items(s.source.LoginLogs(ctx, true))
	case portal.ActionGetClassGoal:
		return success(map[string]any{"goal": s.source.ClassGoal(ctx, true)})

	// Writes
	case portal.ActionLogin:
		var p struct {
			Name string `json:"name"`
			PIN  string `json:"pin"`
		}
		if err := decode(payload, &p); err != nil {
			return failure("invalid payload")
		}
		student, res := s.source.Login(ctx, p.Name, p.PIN)
		if !res.Success {
			return failure(res.Message)
		}
		return success(map[string]any{"student": student})

	case portal.ActionSavePracticeRecord:
		var rec portal.PracticeRecord
		if err := decode(payload, &rec); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.SavePracticeRecord(ctx, rec))

	case portal.ActionUpdateAssignmentStatus:
		var p struct {
			AssignmentID string `json:"assignmentId"`
			Student      string `json:"student"`
			Status       string `json:"status"`
		}
		if err := decode(payload, &p); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.UpdateAssignmentStatus(ctx, p.AssignmentID, p.Student, p.Status))

	case portal.ActionCreateAssignment, portal.ActionEditAssignment:
		var a portal.Assignment
		if err := decode(payload, &a); err != nil {
			return failure("invalid payload")
		}
		if action == portal.ActionCreateAssignment {
			return fromResult(s.source.CreateAssignment(ctx, a))
		}
		return fromResult(s.source.EditAssignment(ctx, a))

	case portal.ActionDeleteAssignment:
		return fromResult(s.source.DeleteAssignment(ctx, decodeID(payload)))

	case portal.ActionUpdatePoints:
		var p struct {
			Student string `json:"student"`
			Delta   int    `json:"delta"`
			Reason  string `json:"reason"`
		}
		if err := decode(payload, &p); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.UpdatePoints(ctx, p.Student, p.Delta, p.Reason))

	case portal.ActionPurchaseSticker:
		var p struct {
			Student string `json:"student"`
			ItemID  string `json:"itemId"`
		}
		if err := decode(payload, &p); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.PurchaseSticker(ctx, p.Student, p.ItemID))

	case portal.ActionSaveCustomSticker:
		var p struct {
			Student string `json:"student"`
			Name    string `json:"name"`
			Image   string `json:"image"`
		}
		if err := decode(payload, &p); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.SaveCustomSticker(ctx, p.Student, p.Name, p.Image))

	case portal.ActionGivePoints:
		var p struct {
			Student string `json:"student"`
			Points  int    `json:"points"`
		}
		if err := decode(payload, &p); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.GivePoints(ctx, p.Student, p.Points))

	case portal.ActionGiveSticker:
		var p struct {
			Student string `json:"student"`
			ItemID  string `json:"itemId"`
		}
		if err := decode(payload, &p); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.GiveSticker(ctx, p.Student, p.ItemID))

	case portal.ActionUpdatePermission:
		var p struct {
			Student string `json:"student"`
			Role    string `json:"role"`
		}
		if err := decode(payload, &p); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.UpdatePermission(ctx, p.Student, p.Role))

	case portal.ActionSaveCalendarEvent:
		var ev portal.CalendarEvent
		if err := decode(payload, &ev); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.SaveCalendarEvent(ctx, ev))

	case portal.ActionDeleteCalendarEvent:
		return fromResult(s.source.DeleteCalendarEvent(ctx, decodeID(payload)))

	case portal.ActionAddStoreItem:
		var item portal.StoreItem
		if err := decode(payload, &item); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.AddStoreItem(ctx, item))

	case portal.ActionDeleteStoreItem:
		return fromResult(s.source.DeleteStoreItem(ctx, decodeID(payload)))

	case portal.ActionSubmitFeedback:
		var p struct {
			Student string `json:"student"`
			Message string `json:"message"`
		}
		if err := decode(payload, &p); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.SubmitFeedback(ctx, p.Student, p.Message))

	case portal.ActionSaveClassGoal:
		var goal portal.ClassGoal
		if err := decode(payload, &goal); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.SaveClassGoal(ctx, goal))

	case portal.ActionContributeClassGoal:
		var p struct {
			Student string `json:"student"`
			Points  int    `json:"points"`
		}
		if err := decode(payload, &p); err != nil {
			return failure("invalid payload")
		}
		return fromResult(s.source.ContributeClassGoal(ctx, p.Student, p.Points))
	}

	return failure("unknown action: " + action)
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	return json.Unmarshal(payload, v)
}

func decodeID(payload json.RawMessage) string {
	var p struct {
		ID string `json:"id"`
	}
	_ = decode(payload, &p)
	return p.ID
}

func items[T any](list []T) map[string]any {
	if list == nil {
		list = []T{}
	}
	return success(map[string]any{"items": list})
}

func success(fields map[string]any) map[string]any {
	out := map[string]any{"status": "success"}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func failure(message string) map[string]any {
	return map[string]any{"status": "error", "message": message}
}

func fromResult(res portal.Result) map[string]any {
	if !res.Success {
		return failure(res.Message)
	}
	out := success(nil)
	if res.Message != "" {
		out["message"] = res.Message
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing left to do but drop the connection.
		return
	}
}

func writeError(w http.ResponseWriter, message string) {
	writeJSON(w, failure(message))
}
