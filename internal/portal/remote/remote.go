// Package remote implements portal.Source against the live backend. It
// composes the endpoint resolver, the TTL cache, the retrying transport,
// and the offline mutation queue.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/google/uuid"

	"github.com/hanzihome/portal/internal/cache"
	"github.com/hanzihome/portal/internal/endpoint"
	"github.com/hanzihome/portal/internal/portal"
	"github.com/hanzihome/portal/internal/queue"
	"github.com/hanzihome/portal/internal/transport"
)

// errNotConfigured aborts queue drains when no backend URL is set.
var errNotConfigured = errors.New("backend URL not configured")

// queueable lists the actions safe to replay later. Everything else fails
// immediately when the backend is unreachable.
var queueable = map[string]bool{
	portal.ActionLogin:              true,
	portal.ActionSavePracticeRecord: true,
	portal.ActionUpdatePoints:       true,
	portal.ActionSubmitFeedback:     true,
}

var _ portal.Source = (*Source)(nil)

// Source is the live-backend implementation of portal.Source.
type Source struct {
	resolver  *endpoint.Resolver
	transport *transport.Client
	cache     *cache.Cache
	queue     *queue.Queue
	log       *log.Logger
}

// New assembles a remote source from its collaborators. A nil logger
// discards read-path diagnostics.
func New(resolver *endpoint.Resolver, tc *transport.Client, c *cache.Cache, q *queue.Queue, logger *log.Logger) *Source {
	return &Source{
		resolver:  resolver,
		transport: tc,
		cache:     c,
		queue:     q,
		log:       logger,
	}
}

// Mode identifies this source as the live one.
func (s *Source) Mode() string { return portal.ModeRemote }

// Cache exposes the read cache for facade-level invalidation.
func (s *Source) Cache() *cache.Cache { return s.cache }

// Queue exposes the offline queue for status reporting.
func (s *Source) Queue() *queue.Queue { return s.queue }

func (s *Source) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

// readCached runs a cached GET. Any failure is logged and swallowed; the
// caller receives the zero value of T so reads never break the UI.
func readCached[T any](s *Source, ctx context.Context, key, action string, params url.Values, force bool, decode func(*transport.Envelope) (T, error)) T {
	var zero T
	if !force {
		if v, ok := s.cache.Get(key); ok {
			if cached, ok := v.(T); ok {
				return cached
			}
		}
	}
	base := s.resolver.URL()
	if base == "" {
		return zero
	}
	env, err := s.transport.Get(ctx, base, action, params)
	if err != nil {
		s.logf("read %s: %v", action, err)
		return zero
	}
	if !env.OK() {
		s.logf("read %s: server said %q", action, env.Message)
		return zero
	}
	out, err := decode(env)
	if err != nil {
		s.logf("read %s: decode: %v", action, err)
		return zero
	}
	s.cache.Set(key, out)
	return out
}

// decodeItems unwraps the {"items": [...]} shape shared by list reads.
func decodeItems[T any](env *transport.Envelope) ([]T, error) {
	var out struct {
		Items []T `json:"items"`
	}
	if err := env.Decode(&out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (s *Source) Assignments(ctx context.Context, student string, force bool) []portal.Assignment {
	return readCached(s, ctx, "assignments_"+student, portal.ActionGetAssignments,
		url.Values{"student": {student}}, force, decodeItems[portal.Assignment])
}

func (s *Source) History(ctx context.Context, student string, force bool) []portal.HistoryEntry {
	return readCached(s, ctx, "history_"+student, portal.ActionGetHistory,
		url.Values{"student": {student}}, force, decodeItems[portal.HistoryEntry])
}

func (s *Source) ProgressSummary(ctx context.Context, student, dateRange string, force bool) portal.ProgressSummary {
	key := fmt.Sprintf("progress_%s_%s", student, dateRange)
	return readCached(s, ctx, key, portal.ActionGetProgressSummary,
		url.Values{"student": {student}, "range": {dateRange}}, force,
		func(env *transport.Envelope) (portal.ProgressSummary, error) {
			var out struct {
				Summary portal.ProgressSummary `json:"summary"`
			}
			err := env.Decode(&out)
			return out.Summary, err
		})
}

func (s *Source) Calendar(ctx context.Context, month string, force bool) []portal.CalendarEvent {
	return readCached(s, ctx, "calendar_"+month, portal.ActionGetCalendar,
		url.Values{"month": {month}}, force, decodeItems[portal.CalendarEvent])
}

func (s *Source) StoreItems(ctx context.Context, force bool) []portal.StoreItem {
	return readCached(s, ctx, "store_items", portal.ActionGetStoreItems,
		nil, force, decodeItems[portal.StoreItem])
}

func (s *Source) RewardRules(ctx context.Context, force bool) []portal.RewardRule {
	return readCached(s, ctx, "reward_rules", portal.ActionGetRewardRules,
		nil, force, decodeItems[portal.RewardRule])
}

func (s *Source) Dictionary(ctx context.Context, force bool) []portal.DictionaryEntry {
	return readCached(s, ctx, "dictionary", portal.ActionGetDictionary,
		nil, force, decodeItems[portal.DictionaryEntry])
}

func (s *Source) LoginLogs(ctx context.Context, force bool) []portal.LoginLog {
	return readCached(s, ctx, "login_logs", portal.ActionGetLoginLogs,
		nil, force, decodeItems[portal.LoginLog])
}

func (s *Source) ClassGoal(ctx context.Context, force bool) portal.ClassGoal {
	return readCached(s, ctx, "class_goal", portal.ActionGetClassGoal,
		nil, force,
		func(env *transport.Envelope) (portal.ClassGoal, error) {
			var out struct {
				Goal portal.ClassGoal `json:"goal"`
			}
			err := env.Decode(&out)
			return out.Goal, err
		})
}

// write runs a POST and translates the outcome into a portal.Result. Cache
// patterns are invalidated only after the backend confirms success; a
// queued offline write leaves the cache alone so stale reads stay visibly
// stale rather than half-applied.
func (s *Source) write(ctx context.Context, action string, payload any, invalidate ...string) portal.Result {
	base := s.resolver.URL()
	if base == "" {
		return portal.Fail("backend URL not configured - run `hanzictl config set-url` first")
	}
	env, err := s.transport.Post(ctx, base, action, payload)
	if err != nil {
		if queueable[action] && transport.IsConnectivity(err) {
			_, qErr := s.queue.Enqueue(action, payload)
			if qErr == nil {
				return portal.QueuedOK()
			}
			s.logf("queue %s: %v", action, qErr)
		}
		return portal.Fail(err.Error())
	}
	if !env.OK() {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return portal.Fail(msg)
	}
	for _, pattern := range invalidate {
		s.cache.Invalidate(pattern)
	}
	return portal.Result{Success: true, Message: env.Message, Data: env.Raw()}
}

// Login authenticates against the backend. Queued writes from a previous
// offline session are replayed first so the server sees them before any
// new activity. When the backend is unreachable, the caller gets a
// client-generated pseudo-identity and the login itself is queued.
func (s *Source) Login(ctx context.Context, name, pin string) (portal.Student, portal.Result) {
	s.DrainQueue(ctx)

	base := s.resolver.URL()
	if base == "" {
		return portal.Student{}, portal.Fail("backend URL not configured - run `hanzictl config set-url` first")
	}
	payload := map[string]string{"name": name, "pin": pin}
	env, err := s.transport.Post(ctx, base, portal.ActionLogin, payload)
	if err != nil {
		if transport.IsConnectivity(err) {
			if _, qErr := s.queue.Enqueue(portal.ActionLogin, payload); qErr != nil {
				s.logf("queue login: %v", qErr)
			}
			student := portal.Student{
				ID:      "offline-" + uuid.NewString(),
				Name:    name,
				Role:    "student",
				Offline: true,
			}
			return student, portal.QueuedOK()
		}
		return portal.Student{}, portal.Fail(err.Error())
	}
	if !env.OK() {
		msg := env.Message
		if msg == "" {
			msg = "login failed"
		}
		return portal.Student{}, portal.Fail(msg)
	}
	var out struct {
		Student portal.Student `json:"student"`
	}
	if err := env.Decode(&out); err != nil {
		return portal.Student{}, portal.Fail("invalid server response")
	}
	s.cache.Invalidate("login_logs")
	return out.Student, portal.Result{Success: true, Message: env.Message}
}

func (s *Source) SavePracticeRecord(ctx context.Context, rec portal.PracticeRecord) portal.Result {
	return s.write(ctx, portal.ActionSavePracticeRecord, rec,
		"history_"+rec.Student, "progress_"+rec.Student, "assignments_"+rec.Student)
}

func (s *Source) UpdateAssignmentStatus(ctx context.Context, assignmentID, student, status string) portal.Result {
	payload := map[string]string{"assignmentId": assignmentID, "student": student, "status": status}
	return s.write(ctx, portal.ActionUpdateAssignmentStatus, payload, "assignments")
}

func (s *Source) CreateAssignment(ctx context.Context, a portal.Assignment) portal.Result {
	return s.write(ctx, portal.ActionCreateAssignment, a, "assignments", "calendar")
}

func (s *Source) EditAssignment(ctx context.Context, a portal.Assignment) portal.Result {
	return s.write(ctx, portal.ActionEditAssignment, a, "assignments", "calendar")
}

func (s *Source) DeleteAssignment(ctx context.Context, id string) portal.Result {
	payload := map[string]string{"id": id}
	return s.write(ctx, portal.ActionDeleteAssignment, payload, "assignments", "calendar")
}

func (s *Source) UpdatePoints(ctx context.Context, student string, delta int, reason string) portal.Result {
	payload := map[string]any{"student": student, "delta": delta, "reason": reason}
	return s.write(ctx, portal.ActionUpdatePoints, payload, "history_"+student, "progress_"+student)
}

func (s *Source) PurchaseSticker(ctx context.Context, student, itemID string) portal.Result {
	payload := map[string]string{"student": student, "itemId": itemID}
	return s.write(ctx, portal.ActionPurchaseSticker, payload, "store_items", "history_"+student)
}

func (s *Source) SaveCustomSticker(ctx context.Context, student, name, image string) portal.Result {
	payload := map[string]string{"student": student, "name": name, "image": image}
	return s.write(ctx, portal.ActionSaveCustomSticker, payload, "store_items")
}

func (s *Source) GivePoints(ctx context.Context, student string, points int) portal.Result {
	payload := map[string]any{"student": student, "points": points}
	return s.write(ctx, portal.ActionGivePoints, payload, "history_"+student, "progress_"+student)
}

func (s *Source) GiveSticker(ctx context.Context, student, itemID string) portal.Result {
	payload := map[string]string{"student": student, "itemId": itemID}
	return s.write(ctx, portal.ActionGiveSticker, payload, "history_"+student)
}

func (s *Source) UpdatePermission(ctx context.Context, student, role string) portal.Result {
	payload := map[string]string{"student": student, "role": role}
	return s.write(ctx, portal.ActionUpdatePermission, payload, "login_logs")
}

func (s *Source) SaveCalendarEvent(ctx context.Context, ev portal.CalendarEvent) portal.Result {
	return s.write(ctx, portal.ActionSaveCalendarEvent, ev, "calendar")
}

func (s *Source) DeleteCalendarEvent(ctx context.Context, id string) portal.Result {
	payload := map[string]string{"id": id}
	return s.write(ctx, portal.ActionDeleteCalendarEvent, payload, "calendar")
}

func (s *Source) AddStoreItem(ctx context.Context, item portal.StoreItem) portal.Result {
	return s.write(ctx, portal.ActionAddStoreItem, item, "store_items")
}

func (s *Source) DeleteStoreItem(ctx context.Context, id string) portal.Result {
	payload := map[string]string{"id": id}
	return s.write(ctx, portal.ActionDeleteStoreItem, payload, "store_items")
}

func (s *Source) SubmitFeedback(ctx context.Context, student, message string) portal.Result {
	payload := map[string]string{"student": student, "message": message}
	return s.write(ctx, portal.ActionSubmitFeedback, payload)
}

func (s *Source) SaveClassGoal(ctx context.Context, goal portal.ClassGoal) portal.Result {
	return s.write(ctx, portal.ActionSaveClassGoal, goal, "class_goal")
}

func (s *Source) ContributeClassGoal(ctx context.Context, student string, points int) portal.Result {
	payload := map[string]any{"student": student, "points": points}
	return s.write(ctx, portal.ActionContributeClassGoal, payload, "class_goal", "progress_"+student)
}

// Ping checks backend reachability. After a successful round trip any
// queued offline writes are replayed.
func (s *Source) Ping(ctx context.Context) error {
	base := s.resolver.URL()
	if base == "" {
		return errNotConfigured
	}
	env, err := s.transport.Get(ctx, base, portal.ActionPing, nil)
	if err != nil {
		return err
	}
	if !env.OK() {
		return fmt.Errorf("ping rejected: %s", env.Message)
	}
	s.DrainQueue(ctx)
	return nil
}

// DrainQueue replays queued writes oldest-first, stopping at the first
// failure. Replayed payloads go out byte-for-byte as originally queued.
// Returns how many entries were delivered.
func (s *Source) DrainQueue(ctx context.Context) int {
	sent, err := s.queue.Drain(ctx, func(ctx context.Context, e queue.Entry) error {
		base := s.resolver.URL()
		if base == "" {
			return errNotConfigured
		}
		env, err := s.transport.Post(ctx, base, e.Action, json.RawMessage(e.Payload))
		if err != nil {
			return err
		}
		if !env.OK() {
			return fmt.Errorf("replay %s rejected: %s", e.Action, env.Message)
		}
		return nil
	})
	if err != nil && !errors.Is(err, queue.ErrDrainInProgress) {
		s.logf("drain queue: %v", err)
	}
	if sent > 0 {
		// Replayed mutations may touch any read family.
		s.cache.Clear()
	}
	return sent
}
