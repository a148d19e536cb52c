package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/pulsefit/internal/catalog"
	"github.com/meltforce/pulsefit/internal/models"
)

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List catalog workouts with title, duration, intensity, category and exercises."),
	mcp.WithString("category", mcp.Description("Only workouts in this category. Defaults to all."),
		mcp.Enum("HIIT", "Strength", "Cardio", "Core", "Stretch")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout by id, including every exercise with its interval duration and set count."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

var toolPlanSummary = mcp.NewTool("plan_summary",
	mcp.WithDescription("Summarize how a workout plays out: total sets, work and rest seconds per exercise, and the planned time when played without skipping."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

var toolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription("Get the user's profile and daily goals (calories, active minutes, steps)."),
)

var toolGetDailyMetrics = mcp.NewTool("get_daily_metrics",
	mcp.WithDescription("Get today's activity metrics with progress percentages against the user's goals."),
)

var toolGetSessionHistory = mcp.NewTool("get_session_history",
	mcp.WithDescription("List recent workout sessions, most recent first, with elapsed time, completion and estimated calories."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 20.")),
)

// PlanStep is one exercise in a plan summary.
type PlanStep struct {
	Exercise        string `json:"exercise"`
	Sets            int    `json:"sets"`
	DurationSeconds int    `json:"duration_seconds"`
	RestSeconds     int    `json:"rest_seconds"`
}

// PlanSummary describes a workout as a session would play it.
type PlanSummary struct {
	WorkoutID      string     `json:"workout_id"`
	Title          string     `json:"title"`
	Exercises      int        `json:"exercises"`
	TotalSets      int        `json:"total_sets"`
	PlannedSeconds int        `json:"planned_seconds"`
	StatedMinutes  int        `json:"stated_minutes"`
	Steps          []PlanStep `json:"steps"`
}

func planSummary(w models.Workout) PlanSummary {
	p := PlanSummary{
		WorkoutID:      w.ID,
		Title:          w.Title,
		Exercises:      w.TotalExercises(),
		TotalSets:      w.TotalSets(),
		PlannedSeconds: w.PlannedSeconds(),
		StatedMinutes:  w.TotalDurationMinutes,
	}
	for _, ex := range w.Exercises {
		p.Steps = append(p.Steps, PlanStep{
			Exercise:        ex.Name,
			Sets:            ex.Sets,
			DurationSeconds: ex.DurationSeconds,
			RestSeconds:     models.RestSeconds * (ex.Sets - 1),
		})
	}
	return p
}

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := models.Category(req.GetString("category", ""))

	workouts, err := h.ds.ListWorkouts(ctx, category)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) lookupWorkout(ctx context.Context, req mcp.CallToolRequest) (models.Workout, *mcp.CallToolResult) {
	id, err := req.RequireString("id")
	if err != nil {
		return models.Workout{}, mcp.NewToolResultError("id parameter is required")
	}
	w, err := h.ds.GetWorkout(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return models.Workout{}, mcp.NewToolResultError("no workout with id " + id)
	}
	if err != nil {
		h.log.Error("mcp workout lookup", "id", id, "error", err)
		return models.Workout{}, mcp.NewToolResultError("query failed: " + err.Error())
	}
	return w, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, errResult := h.lookupWorkout(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	result, err := mcp.NewToolResultJSON(w)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) planSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, errResult := h.lookupWorkout(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	result, err := mcp.NewToolResultJSON(planSummary(w))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProfile(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.ds.GetUserProfile(ctx)
	if err != nil {
		h.log.Error("mcp get_profile", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if p == nil {
		return mcp.NewToolResultText("No profile has been set up yet."), nil
	}

	result, err := mcp.NewToolResultJSON(p)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDailyMetrics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := h.ds.Dashboard(ctx)
	if err != nil {
		h.log.Error("mcp get_daily_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"metrics":  d.Metrics,
		"progress": d.Progress,
		"streak":   d.Streak,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessionHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)

	recs, err := h.ds.ListSessions(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_session_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if recs == nil {
		recs = []models.SessionRecord{}
	}

	result, err := mcp.NewToolResultJSON(recs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
