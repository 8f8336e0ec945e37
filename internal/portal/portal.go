// Package portal defines the data-access surface consumed by portal UIs.
// Two implementations exist: the remote source (live backend with caching,
// retries, and the offline queue) and the fixture source (demo mode, static
// in-memory data). UIs pick one at startup and never branch on mode again.
package portal

import (
	"context"
	"encoding/json"
)

// Wire action names. Reads go out as GET ?action=<name>, writes as
// POST {"action": <name>, "payload": {...}}.
const (
	ActionPing               = "ping"
	ActionLogin              = "login"
	ActionGetAssignments     = "getAssignments"
	ActionGetHistory         = "getHistory"
	ActionGetProgressSummary = "getProgressSummary"
	ActionGetCalendar        = "getCalendar"
	ActionGetStoreItems      = "getStoreItems"
	ActionGetRewardRules     = "getRewardRules"
	ActionGetDictionary      = "getDictionary"
	ActionGetLoginLogs       = "getLoginLogs"
	ActionGetClassGoal       = "getClassGoal"

	ActionSavePracticeRecord     = "savePracticeRecord"
	ActionUpdateAssignmentStatus = "updateAssignmentStatus"
	ActionCreateAssignment       = "createAssignment"
	ActionEditAssignment         = "editAssignment"
	ActionDeleteAssignment       = "deleteAssignment"
	ActionUpdatePoints           = "updatePoints"
	ActionPurchaseSticker        = "purchaseSticker"
	ActionSaveCustomSticker      = "saveCustomSticker"
	ActionGivePoints             = "givePoints"
	ActionGiveSticker            = "giveSticker"
	ActionUpdatePermission       = "updatePermission"
	ActionSaveCalendarEvent      = "saveCalendarEvent"
	ActionDeleteCalendarEvent    = "deleteCalendarEvent"
	ActionAddStoreItem           = "addStoreItem"
	ActionDeleteStoreItem        = "deleteStoreItem"
	ActionSubmitFeedback         = "submitFeedback"
	ActionSaveClassGoal          = "saveClassGoal"
	ActionContributeClassGoal    = "contributeClassGoal"
)

// Student is an authenticated portal identity.
type Student struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"` // "student" or "admin"
	Points int    `json:"points,omitempty"`
	// Offline marks a client-generated pseudo-identity assigned when the
	// backend was unreachable at login time.
	Offline bool `json:"offline,omitempty"`
}

// Assignment is one homework item.
type Assignment struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Characters []string `json:"characters,omitempty"` // hanzi to practice
	LessonDate string   `json:"lessonDate,omitempty"` // YYYY-MM-DD
	Status     string   `json:"status,omitempty"`     // "assigned" or "done"
	CreatedBy  string   `json:"createdBy,omitempty"`
}

// PracticeRecord captures one completed practice session.
type PracticeRecord struct {
	Student      string   `json:"student"`
	AssignmentID string   `json:"assignmentId,omitempty"`
	Characters   []string `json:"characters,omitempty"`
	Score        int      `json:"score"`
	DurationSec  int      `json:"durationSec,omitempty"`
	PracticedAt  string   `json:"practicedAt,omitempty"`
}

// HistoryEntry is one row of a student's activity history.
type HistoryEntry struct {
	Date       string   `json:"date"`
	Activity   string   `json:"activity"`
	Characters []string `json:"characters,omitempty"`
	Points     int      `json:"points,omitempty"`
}

// ProgressSummary aggregates a student's practice over a date range.
type ProgressSummary struct {
	Student      string  `json:"student"`
	Range        string  `json:"range,omitempty"`
	Practiced    int     `json:"practiced"`
	Accuracy     float64 `json:"accuracy,omitempty"`
	StreakDays   int     `json:"streakDays,omitempty"`
	PointsEarned int     `json:"pointsEarned,omitempty"`
}

// CalendarEvent is one lesson-calendar entry.
type CalendarEvent struct {
	ID    string `json:"id"`
	Date  string `json:"date"` // YYYY-MM-DD
	Title string `json:"title"`
	Kind  string `json:"kind,omitempty"` // "lesson", "holiday", ...
}

// StoreItem is one reward-shop entry.
type StoreItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cost  int    `json:"cost"`
	Emoji string `json:"emoji,omitempty"`
	Stock int    `json:"stock,omitempty"`
}

// RewardRule maps an activity to the points it earns.
type RewardRule struct {
	Action      string `json:"action"`
	Points      int    `json:"points"`
	Description string `json:"description,omitempty"`
}

// DictionaryEntry is one character in the lesson dictionary.
type DictionaryEntry struct {
	Character string `json:"character"`
	Pinyin    string `json:"pinyin"`
	Meaning   string `json:"meaning"`
}

// LoginLog is one recorded login.
type LoginLog struct {
	Student string `json:"student"`
	At      string `json:"at"`
}

// ClassGoal is the shared class reward goal.
type ClassGoal struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Target  int    `json:"target"`
	Current int    `json:"current"`
	Reward  string `json:"reward,omitempty"`
}

// Result is the structured outcome of every write operation. Writes never
// propagate errors past the facade; failures arrive as Success=false with a
// short human-actionable Message the UI renders verbatim.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	// Offline marks an optimistic success: the write was queued for
	// replay instead of reaching the backend.
	Offline bool `json:"offline,omitempty"`
	// Data carries operation-specific response fields, verbatim.
	Data json.RawMessage `json:"data,omitempty"`
}

// OK returns a plain success Result.
func OK() Result {
	return Result{Success: true}
}

// Fail returns a failure Result with the given message.
func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// QueuedOK returns the optimistic success used when a write was queued
// for later replay.
func QueuedOK() Result {
	return Result{
		Success: true,
		Offline: true,
		Message: "saved offline - will sync when the connection returns",
	}
}

// Source is the data-access facade. Read operations never fail: on any
// error they log and return an empty default so the UI degrades instead of
// breaking. Write operations always return a structured Result.
//
// force on a read bypasses the cache; a false value serves a fresh-enough
// cached copy when one exists.
type Source interface {
	// Reads
	Assignments(ctx context.Context, student string, force bool) []Assignment
	History(ctx context.Context, student string, force bool) []HistoryEntry
	ProgressSummary(ctx context.Context, student, dateRange string, force bool) ProgressSummary
	Calendar(ctx context.Context, month string, force bool) []CalendarEvent
	StoreItems(ctx context.Context, force bool) []StoreItem
	RewardRules(ctx context.Context, force bool) []RewardRule
	Dictionary(ctx context.Context, force bool) []DictionaryEntry
	LoginLogs(ctx context.Context, force bool) []LoginLog
	ClassGoal(ctx context.Context, force bool) ClassGoal

	// Writes
	Login(ctx context.Context, name, pin string) (Student, Result)
	SavePracticeRecord(ctx context.Context, rec PracticeRecord) Result
	UpdateAssignmentStatus(ctx context.Context, assignmentID, student, status string) Result
	CreateAssignment(ctx context.Context, a Assignment) Result
	EditAssignment(ctx context.Context, a Assignment) Result
	DeleteAssignment(ctx context.Context, id string) Result
	UpdatePoints(ctx context.Context, student string, delta int, reason string) Result
	PurchaseSticker(ctx context.Context, student, itemID string) Result
	SaveCustomSticker(ctx context.Context, student, name, image string) Result
	GivePoints(ctx context.Context, student string, points int) Result
	GiveSticker(ctx context.Context, student, itemID string) Result
	UpdatePermission(ctx context.Context, student, role string) Result
	SaveCalendarEvent(ctx context.Context, ev CalendarEvent) Result
	DeleteCalendarEvent(ctx context.Context, id string) Result
	AddStoreItem(ctx context.Context, item StoreItem) Result
	DeleteStoreItem(ctx context.Context, id string) Result
	SubmitFeedback(ctx context.Context, student, message string) Result
	SaveClassGoal(ctx context.Context, goal ClassGoal) Result
	ContributeClassGoal(ctx context.Context, student string, points int) Result

	// Mode identifies the active source: "remote" or "fixture".
	Mode() string
}

// Source mode identifiers.
const (
	ModeRemote  = "remote"
	ModeFixture = "fixture"
)
