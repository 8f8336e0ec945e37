// Package fixture implements portal.Source from generated in-memory data.
// It backs demo mode: no endpoint, no network, no cache, no queue. State
// lives for the process lifetime so a demo walkthrough feels real, but
// nothing is persisted.
package fixture

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/hanzihome/portal/internal/portal"
)

// demoSeed keeps demo data stable across runs so walkthroughs are
// reproducible.
const demoSeed = 20240901

// hanzi is the built-in lesson dictionary. Demo assignments draw their
// characters from here.
var hanzi = []portal.DictionaryEntry{
	{Character: "水", Pinyin: "shuǐ", Meaning: "water"},
	{Character: "火", Pinyin: "huǒ", Meaning: "fire"},
	{Character: "山", Pinyin: "shān", Meaning: "mountain"},
	{Character: "木", Pinyin: "mù", Meaning: "tree, wood"},
	{Character: "人", Pinyin: "rén", Meaning: "person"},
	{Character: "口", Pinyin: "kǒu", Meaning: "mouth"},
	{Character: "日", Pinyin: "rì", Meaning: "sun, day"},
	{Character: "月", Pinyin: "yuè", Meaning: "moon, month"},
	{Character: "学", Pinyin: "xué", Meaning: "to study"},
	{Character: "写", Pinyin: "xiě", Meaning: "to write"},
	{Character: "字", Pinyin: "zì", Meaning: "character"},
	{Character: "家", Pinyin: "jiā", Meaning: "home, family"},
}

var _ portal.Source = (*Source)(nil)

// Source is the demo implementation of portal.Source.
type Source struct {
	mu          sync.Mutex
	students    map[string]*portal.Student // keyed by lowercase name
	assignments []portal.Assignment
	history     map[string][]portal.HistoryEntry
	calendar    []portal.CalendarEvent
	storeItems  []portal.StoreItem
	rewardRules []portal.RewardRule
	loginLogs   []portal.LoginLog
	goal        portal.ClassGoal
	feedback    []string
}

// New builds a demo source pre-populated with students, assignments, and
// shop inventory.
func New() *Source {
	gofakeit.Seed(demoSeed)

	s := &Source{
		students: map[string]*portal.Student{},
		history:  map[string][]portal.HistoryEntry{},
	}
	s.seed()
	return s
}

func (s *Source) seed() {
	today := time.Now()

	for i := 0; i < 4; i++ {
		name := gofakeit.FirstName()
		s.students[strings.ToLower(name)] = &portal.Student{
			ID:     "demo-" + uuid.NewString(),
			Name:   name,
			Role:   "student",
			Points: gofakeit.Number(20, 120),
		}
	}
	s.students["laoshi"] = &portal.Student{
		ID: "demo-" + uuid.NewString(), Name: "Laoshi", Role: "admin",
	}

	for i := 0; i < 5; i++ {
		start := gofakeit.Number(0, len(hanzi)-3)
		chars := make([]string, 0, 3)
		for _, entry := range hanzi[start : start+3] {
			chars = append(chars, entry.Character)
		}
		date := today.AddDate(0, 0, i-2).Format("2006-01-02")
		s.assignments = append(s.assignments, portal.Assignment{
			ID:         fmt.Sprintf("demo-hw-%d", i+1),
			Title:      fmt.Sprintf("Lesson %d: %s", i+1, strings.Join(chars, " ")),
			Characters: chars,
			LessonDate: date,
			Status:     pick(i < 2, "done", "assigned"),
			CreatedBy:  "Laoshi",
		})
		s.calendar = append(s.calendar, portal.CalendarEvent{
			ID:    fmt.Sprintf("demo-ev-%d", i+1),
			Date:  date,
			Title: fmt.Sprintf("Lesson %d", i+1),
			Kind:  "lesson",
		})
	}

	s.storeItems = []portal.StoreItem{
		{ID: "demo-item-1", Name: "Panda sticker", Cost: 10, Emoji: "🐼", Stock: 99},
		{ID: "demo-item-2", Name: "Dragon sticker", Cost: 25, Emoji: "🐉", Stock: 99},
		{ID: "demo-item-3", Name: "Golden star", Cost: 50, Emoji: "⭐", Stock: 10},
	}
	s.rewardRules = []portal.RewardRule{
		{Action: "practice", Points: 5, Description: "Finish a practice session"},
		{Action: "assignment", Points: 10, Description: "Complete an assignment"},
		{Action: "streak", Points: 15, Description: "Practice three days in a row"},
	}
	s.goal = portal.ClassGoal{
		ID: "demo-goal", Title: "Class pizza party", Target: 500,
		Current: gofakeit.Number(100, 400), Reward: "pizza party",
	}

	for name, st := range s.students {
		if st.Role == "admin" {
			continue
		}
		for d := 1; d <= 3; d++ {
			s.history[name] = append(s.history[name], portal.HistoryEntry{
				Date:     today.AddDate(0, 0, -d).Format("2006-01-02"),
				Activity: "practice",
				Points:   gofakeit.Number(3, 12),
			})
		}
	}
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// Mode identifies this source as the demo one.
func (s *Source) Mode() string { return portal.ModeFixture }

func (s *Source) Assignments(_ context.Context, student string, _ bool) []portal.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]portal.Assignment(nil), s.assignments...)
}

func (s *Source) History(_ context.Context, student string, _ bool) []portal.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]portal.HistoryEntry(nil), s.history[strings.ToLower(student)]...)
}

func (s *Source) ProgressSummary(_ context.Context, student, dateRange string, _ bool) portal.ProgressSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.history[strings.ToLower(student)]
	sum := portal.ProgressSummary{Student: student, Range: dateRange, Accuracy: 0.9}
	for _, h := range entries {
		sum.Practiced++
		sum.PointsEarned += h.Points
	}
	sum.StreakDays = sum.Practiced
	return sum
}

func (s *Source) Calendar(_ context.Context, month string, _ bool) []portal.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if month == "" {
		return append([]portal.CalendarEvent(nil), s.calendar...)
	}
	out := []portal.CalendarEvent{}
	for _, ev := range s.calendar {
		if strings.HasPrefix(ev.Date, month) {
			out = append(out, ev)
		}
	}
	return out
}

func (s *Source) StoreItems(_ context.Context, _ bool) []portal.StoreItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]portal.StoreItem(nil), s.storeItems...)
}

func (s *Source) RewardRules(_ context.Context, _ bool) []portal.RewardRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]portal.RewardRule(nil), s.rewardRules...)
}

func (s *Source) Dictionary(_ context.Context, _ bool) []portal.DictionaryEntry {
	return append([]portal.DictionaryEntry(nil), hanzi...)
}

func (s *Source) LoginLogs(_ context.Context, _ bool) []portal.LoginLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]portal.LoginLog(nil), s.loginLogs...)
}

func (s *Source) ClassGoal(_ context.Context, _ bool) portal.ClassGoal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goal
}

// Login accepts any name and PIN. Unknown names get a fresh demo student
// so the walkthrough never dead-ends on credentials.
func (s *Source) Login(_ context.Context, name, pin string) (portal.Student, portal.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return portal.Student{}, portal.Fail("name is required")
	}
	st, ok := s.students[key]
	if !ok {
		st = &portal.Student{
			ID: "demo-" + uuid.NewString(), Name: name, Role: "student",
		}
		s.students[key] = st
	}
	s.loginLogs = append(s.loginLogs, portal.LoginLog{
		Student: st.Name, At: time.Now().Format(time.RFC3339),
	})
	return *st, portal.OK()
}

func (s *Source) SavePracticeRecord(_ context.Context, rec portal.PracticeRecord) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(rec.Student)
	s.history[key] = append(s.history[key], portal.HistoryEntry{
		Date:       time.Now().Format("2006-01-02"),
		Activity:   "practice",
		Characters: rec.Characters,
		Points:     5,
	})
	if st, ok := s.students[key]; ok {
		st.Points += 5
	}
	return portal.OK()
}

func (s *Source) UpdateAssignmentStatus(_ context.Context, assignmentID, student, status string) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assignments {
		if s.assignments[i].ID == assignmentID {
			s.assignments[i].Status = status
			return portal.OK()
		}
	}
	return portal.Fail("assignment not found")
}

func (s *Source) CreateAssignment(_ context.Context, a portal.Assignment) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = "demo-hw-" + uuid.NewString()
	}
	if a.Status == "" {
		a.Status = "assigned"
	}
	s.assignments = append(s.assignments, a)
	return portal.OK()
}

func (s *Source) EditAssignment(_ context.Context, a portal.Assignment) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assignments {
		if s.assignments[i].ID == a.ID {
			s.assignments[i] = a
			return portal.OK()
		}
	}
	return portal.Fail("assignment not found")
}

func (s *Source) DeleteAssignment(_ context.Context, id string) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assignments {
		if s.assignments[i].ID == id {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			return portal.OK()
		}
	}
	return portal.Fail("assignment not found")
}

func (s *Source) UpdatePoints(_ context.Context, student string, delta int, reason string) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[strings.ToLower(student)]
	if !ok {
		return portal.Fail("student not found")
	}
	st.Points += delta
	return portal.OK()
}

func (s *Source) PurchaseSticker(_ context.Context, student, itemID string) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[strings.ToLower(student)]
	if !ok {
		return portal.Fail("student not found")
	}
	for i := range s.storeItems {
		if s.storeItems[i].ID != itemID {
			continue
		}
		if st.Points < s.storeItems[i].Cost {
			return portal.Fail("not enough points")
		}
		st.Points -= s.storeItems[i].Cost
		if s.storeItems[i].Stock > 0 {
			s.storeItems[i].Stock--
		}
		return portal.OK()
	}
	return portal.Fail("item not found")
}

func (s *Source) SaveCustomSticker(_ context.Context, student, name, image string) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeItems = append(s.storeItems, portal.StoreItem{
		ID: "demo-item-" + uuid.NewString(), Name: name, Cost: 0, Emoji: image,
	})
	return portal.OK()
}

func (s *Source) GivePoints(ctx context.Context, student string, points int) portal.Result {
	return s.UpdatePoints(ctx, student, points, "teacher award")
}

func (s *Source) GiveSticker(_ context.Context, student, itemID string) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[strings.ToLower(student)]; !ok {
		return portal.Fail("student not found")
	}
	return portal.OK()
}

func (s *Source) UpdatePermission(_ context.Context, student, role string) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[strings.ToLower(student)]
	if !ok {
		return portal.Fail("student not found")
	}
	st.Role = role
	return portal.OK()
}

func (s *Source) SaveCalendarEvent(_ context.Context, ev portal.CalendarEvent) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == "" {
		ev.ID = "demo-ev-" + uuid.NewString()
	}
	for i := range s.calendar {
		if s.calendar[i].ID == ev.ID {
			s.calendar[i] = ev
			return portal.OK()
		}
	}
	s.calendar = append(s.calendar, ev)
	return portal.OK()
}

func (s *Source) DeleteCalendarEvent(_ context.Context, id string) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.calendar {
		if s.calendar[i].ID == id {
			s.calendar = append(s.calendar[:i], s.calendar[i+1:]...)
			return portal.OK()
		}
	}
	return portal.Fail("event not found")
}

func (s *Source) AddStoreItem(_ context.Context, item portal.StoreItem) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		item.ID = "demo-item-" + uuid.NewString()
	}
	s.storeItems = append(s.storeItems, item)
	return portal.OK()
}

func (s *Source) DeleteStoreItem(_ context.Context, id string) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.storeItems {
		if s.storeItems[i].ID == id {
			s.storeItems = append(s.storeItems[:i], s.storeItems[i+1:]...)
			return portal.OK()
		}
	}
	return portal.Fail("item not found")
}

func (s *Source) SubmitFeedback(_ context.Context, student, message string) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, student+": "+message)
	return portal.OK()
}

func (s *Source) SaveClassGoal(_ context.Context, goal portal.ClassGoal) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if goal.ID == "" {
		goal.ID = s.goal.ID
	}
	s.goal = goal
	return portal.OK()
}

func (s *Source) ContributeClassGoal(_ context.Context, student string, points int) portal.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[strings.ToLower(student)]
	if !ok {
		return portal.Fail("student not found")
	}
	if st.Points < points {
		return portal.Fail("not enough points")
	}
	st.Points -= points
	s.goal.Current += points
	return portal.OK()
}
