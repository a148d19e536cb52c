package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("PulseFit", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("PulseFit guided workout server. Browse the workout catalog, plan sessions, and read the user's profile, daily activity and workout history."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolPlanSummary, Handler: h.planSummary},
		server.ServerTool{Tool: toolGetProfile, Handler: h.getProfile},
		server.ServerTool{Tool: toolGetDailyMetrics, Handler: h.getDailyMetrics},
		server.ServerTool{Tool: toolGetSessionHistory, Handler: h.getSessionHistory},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCatalog, Handler: h.catalog},
		server.ServerResource{Resource: resDashboard, Handler: h.dashboard},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCatalog = mcp.NewResource(
	"pulsefit://catalog",
	"Workout Catalog",
	mcp.WithResourceDescription("Every workout with its exercises, sets and interval durations"),
	mcp.WithMIMEType("application/json"),
)

var resDashboard = mcp.NewResource(
	"pulsefit://dashboard",
	"Dashboard",
	mcp.WithResourceDescription("Today's metrics, goal progress, streak, weekly activity and milestones"),
	mcp.WithMIMEType("application/json"),
)
