package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/ironlog/internal/execution"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/progression"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// --- Tool definitions ---

var toolGetCurrentWorkout = mcp.NewTool("get_current_workout",
	mcp.WithDescription("Resolve the workout scheduled next in the user's active program execution, with per-exercise targets."),
)

var toolGetTrainingProgress = mcp.NewTool("get_training_progress",
	mcp.WithDescription("Progress through the active program: percentage complete, current streak, and workouts completed this week."),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("The user's heaviest completed set per exercise, with estimated one-rep max."),
)

var toolGetRecentSessions = mcp.NewTool("get_recent_sessions",
	mcp.WithDescription("Workout sessions in a time range with volume and completion totals."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolSuggestWorkingWeight = mcp.NewTool("suggest_working_weight",
	mcp.WithDescription("Suggest the next working weight for an exercise from the user's history and rounding preferences."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name, e.g. 'Barbell Squat'")),
)

// --- Tool handlers ---

func (h *handlers) activeMachine(ctx context.Context, uid int64) (*execution.Machine, error) {
	exec, err := h.ds.ActiveExecution(ctx, uid)
	if err != nil {
		return nil, err
	}
	program, err := h.ds.GetProgram(ctx, exec.ProgramID)
	if err != nil {
		return nil, err
	}
	return execution.Resume(exec, program), nil
}

func (h *handlers) getCurrentWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := h.activeMachine(ctx, UserIDFromContext(ctx))
	if err != nil {
		return mcp.NewToolResultError("no active program execution: " + err.Error()), nil
	}

	workout, err := m.CurrentWorkout()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"week":    m.Execution().CurrentWeek,
		"day":     m.Execution().CurrentDay,
		"workout": workout,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := h.activeMachine(ctx, UserIDFromContext(ctx))
	if err != nil {
		return mcp.NewToolResultError("no active program execution: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"progress_percentage": m.ProgressPercentage(),
		"current_streak":      m.CurrentStreak(),
		"completed_this_week": m.CompletedWorkoutsThisWeek(),
		"current_week":        m.Execution().CurrentWeek,
		"current_day":         m.Execution().CurrentDay,
		"is_paused":           m.Execution().IsPaused,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.PersonalRecords(ctx, UserIDFromContext(ctx))
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	type recordWithRM struct {
		ExerciseName string    `json:"exercise_name"`
		Weight       float64   `json:"weight"`
		Reps         int       `json:"reps"`
		AchievedAt   time.Time `json:"achieved_at"`
		EstimatedRM  float64   `json:"estimated_one_rm"`
	}
	out := make([]recordWithRM, 0, len(records))
	for _, r := range records {
		out = append(out, recordWithRM{
			ExerciseName: r.ExerciseName,
			Weight:       r.Weight,
			Reps:         r.Reps,
			AchievedAt:   r.AchievedAt,
			EstimatedRM:  progression.EstimateOneRM(r.Weight, r.Reps),
		})
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	sessions, err := h.ds.QuerySessions(ctx, UserIDFromContext(ctx), start, end)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) suggestWorkingWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	profile, err := h.ds.GetProfile(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError("profile query failed: " + err.Error()), nil
	}
	history, err := h.ds.LoadHistory(ctx, uid, []string{exercise})
	if err != nil {
		return mcp.NewToolResultError("history query failed: " + err.Error()), nil
	}

	tmpl := &models.ExerciseTemplate{Name: exercise, TargetSets: 1, TargetReps: 5}
	weight := progression.WorkingWeight(tmpl, *profile, history, 0)

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": exercise,
		"weight":   weight,
		"unit":     profile.Unit,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
