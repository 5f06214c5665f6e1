package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ldi/stride/internal/db"
	"github.com/ldi/stride/internal/report"
	"github.com/ldi/stride/pkg/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server.
func NewServer(database *db.DB) *server.MCPServer {
	s := server.NewMCPServer("Stride", "0.1.0")
	builder := report.NewBuilder(database)

	// Staff Management
	s.AddTool(mcp.NewTool("create_staff",
		mcp.WithDescription("Register a staff member."),
		mcp.WithString("id", mcp.Description("Staff id (NV_00000)"), mcp.Required()),
		mcp.WithString("full_name", mcp.Description("Full name, letters and spaces only"), mcp.Required()),
		mcp.WithNumber("age", mcp.Description("Age (18-65)"), mcp.Required()),
		mcp.WithString("level", mcp.Description("Level (Intern|Junior|Senior)"), mcp.Required()),
		mcp.WithString("role", mcp.Description("Role, e.g. Developer, Tester, Business Analyst"), mcp.Required()),
		mcp.WithString("management_title", mcp.Description("Optional title (Team Leader|Project Manager)")),
	), createStaffHandler(database))

	s.AddTool(mcp.NewTool("list_staff",
		mcp.WithDescription("List all staff members."),
	), listStaffHandler(database))

	s.AddTool(mcp.NewTool("get_staff",
		mcp.WithDescription("Get a staff member by id, including assigned task ids."),
		mcp.WithString("id", mcp.Description("Staff id"), mcp.Required()),
	), getStaffHandler(database))

	s.AddTool(mcp.NewTool("delete_staff",
		mcp.WithDescription("Delete a staff member. Their tasks become Unassigned."),
		mcp.WithString("id", mcp.Description("Staff id"), mcp.Required()),
	), deleteStaffHandler(database))

	// Project Management
	s.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a project."),
		mcp.WithString("id", mcp.Description("Project id (P00_00000)"), mcp.Required()),
		mcp.WithString("name", mcp.Description("Project name"), mcp.Required()),
		mcp.WithString("customer", mcp.Description("Customer name"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Project description")),
		mcp.WithString("start_date", mcp.Description("Start date (dd/mm/yyyy)"), mcp.Required()),
		mcp.WithString("expected_end_date", mcp.Description("Expected end date (dd/mm/yyyy)"), mcp.Required()),
		mcp.WithNumber("budget", mcp.Description("Budget, must be positive"), mcp.Required()),
		mcp.WithString("pm_id", mcp.Description("Staff id of the project manager")),
	), createProjectHandler(database))

	s.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects."),
	), listProjectsHandler(database))

	s.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Get a project by id."),
		mcp.WithString("id", mcp.Description("Project id"), mcp.Required()),
	), getProjectHandler(database))

	s.AddTool(mcp.NewTool("set_project_status",
		mcp.WithDescription("Change a project's status. Completing before the expected end date needs override=true."),
		mcp.WithString("id", mcp.Description("Project id"), mcp.Required()),
		mcp.WithString("status", mcp.Description("New status (Not Started|In Progress|Paused|Completed|Cancelled)"), mcp.Required()),
		mcp.WithBoolean("override", mcp.Description("Allow early completion")),
	), setProjectStatusHandler(database))

	s.AddTool(mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project and its tasks. Reports are kept as history."),
		mcp.WithString("id", mcp.Description("Project id"), mcp.Required()),
	), deleteProjectHandler(database))

	s.AddTool(mcp.NewTool("get_project_members",
		mcp.WithDescription("List the staff assigned to a project's tasks."),
		mcp.WithString("id", mcp.Description("Project id"), mcp.Required()),
	), getProjectMembersHandler(database))

	s.AddTool(mcp.NewTool("get_progress",
		mcp.WithDescription("Get a project's task status breakdown and completion rate."),
		mcp.WithString("id", mcp.Description("Project id"), mcp.Required()),
	), getProgressHandler(database))

	// Task Management
	s.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a task in a project. The id is allocated automatically unless given."),
		mcp.WithString("project_id", mcp.Description("Project id"), mcp.Required()),
		mcp.WithString("id", mcp.Description("Task id (T<project_id>_00000), optional")),
		mcp.WithString("name", mcp.Description("Task name"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Task description")),
		mcp.WithString("assignee_id", mcp.Description("Staff id of the assignee, defaults to Unassigned")),
		mcp.WithString("start_date", mcp.Description("Start date (dd/mm/yyyy)"), mcp.Required()),
		mcp.WithString("deadline", mcp.Description("Deadline (dd/mm/yyyy)"), mcp.Required()),
		mcp.WithString("priority", mcp.Description("Priority (Low|Medium|High|Critical)")),
	), createTaskHandler(database))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks with optional filters."),
		mcp.WithString("project_id", mcp.Description("Filter by project")),
		mcp.WithString("status", mcp.Description("Filter by status")),
		mcp.WithString("assignee_id", mcp.Description("Filter by assignee")),
	), listTasksHandler(database))

	s.AddTool(mcp.NewTool("set_task_status",
		mcp.WithDescription("Change a task's status (To Do|In Progress|Completed|Cancelled)."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("status", mcp.Description("New status"), mcp.Required()),
	), setTaskStatusHandler(database))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), deleteTaskHandler(database))

	s.AddTool(mcp.NewTool("get_overdue_tasks",
		mcp.WithDescription("List tasks past their deadline that are not completed."),
		mcp.WithString("project_id", mcp.Description("Limit to one project")),
	), getOverdueTasksHandler(database))

	// Reporting
	s.AddTool(mcp.NewTool("create_weekly_report",
		mcp.WithDescription("Create the next weekly report of a project. The first report needs the period end date; later periods are derived."),
		mcp.WithString("project_id", mcp.Description("Project id"), mcp.Required()),
		mcp.WithString("author_id", mcp.Description("Staff id of the project's manager"), mcp.Required()),
		mcp.WithString("period_end", mcp.Description("First week's end date (dd/mm/yyyy), only for the first report")),
	), createWeeklyReportHandler(builder))

	s.AddTool(mcp.NewTool("create_final_report",
		mcp.WithDescription("Create the final report of a Completed or Cancelled project."),
		mcp.WithString("project_id", mcp.Description("Project id"), mcp.Required()),
		mcp.WithString("author_id", mcp.Description("Staff id of the project's manager"), mcp.Required()),
	), createFinalReportHandler(builder))

	s.AddTool(mcp.NewTool("list_weekly_reports",
		mcp.WithDescription("List weekly reports, optionally for one project."),
		mcp.WithString("project_id", mcp.Description("Filter by project")),
	), listWeeklyReportsHandler(database))

	s.AddTool(mcp.NewTool("list_final_reports",
		mcp.WithDescription("List final reports."),
	), listFinalReportsHandler(database))

	// Export
	s.AddTool(mcp.NewTool("export_csv",
		mcp.WithDescription("Export all entities as CSV files into a directory."),
		mcp.WithString("dir", mcp.Description("Target directory"), mcp.Required()),
	), exportCSVHandler(database))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func createStaffHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s := &models.Staff{
			ID:              mcp.ParseString(request, "id", ""),
			FullName:        models.NormalizeName(mcp.ParseString(request, "full_name", "")),
			Age:             mcp.ParseInt(request, "age", 0),
			Level:           models.StaffLevel(mcp.ParseString(request, "level", "")),
			Role:            models.StaffRole(mcp.ParseString(request, "role", "")),
			ManagementTitle: models.ManagementTitle(mcp.ParseString(request, "management_title", "")),
		}

		if err := database.CreateStaff(ctx, s); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Staff '%s' created", s.ID)), nil
	}
}

func listStaffHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		staff, err := database.ListStaff(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{"staff": staff})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func getStaffHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		s, err := database.GetStaff(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if s == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Staff '%s' not found", id)), nil
		}

		data, err := json.Marshal(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func deleteStaffHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		if err := database.DeleteStaff(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Staff '%s' deleted, their tasks are now %s", id, models.Unassigned)), nil
	}
}

func createProjectHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start, err := models.ParseImportDate(mcp.ParseString(request, "start_date", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		end, err := models.ParseImportDate(mcp.ParseString(request, "expected_end_date", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		p := &models.Project{
			ID:          mcp.ParseString(request, "id", ""),
			Name:        mcp.ParseString(request, "name", ""),
			Customer:    mcp.ParseString(request, "customer", ""),
			Description: mcp.ParseString(request, "description", ""),
			StartDate:   start,
			ExpectedEnd: end,
			Budget:      mcp.ParseFloat64(request, "budget", 0),
			PMID:        mcp.ParseString(request, "pm_id", ""),
		}

		if err := database.CreateProject(ctx, p); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Project '%s' created", p.ID)), nil
	}
}

func listProjectsHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projects, err := database.ListProjects(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{"projects": projects})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func getProjectHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		p, err := database.GetProject(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if p == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Project '%s' not found", id)), nil
		}

		data, err := json.Marshal(p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func setProjectStatusHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		status := models.ProjectStatus(mcp.ParseString(request, "status", ""))
		override := mcp.ParseBoolean(request, "override", false)

		if err := database.SetProjectStatus(ctx, id, status, override); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Project '%s' is now %s", id, status)), nil
	}
}

func deleteProjectHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		if err := database.DeleteProject(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Project '%s' and its tasks deleted", id)), nil
	}
}

func getProjectMembersHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		members, err := database.ProjectMembers(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{"members": members})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func getProgressHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		p, err := database.GetProject(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if p == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Project '%s' not found", id)), nil
		}

		tasks, err := database.TasksForProject(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(report.Progress(id, tasks))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func createTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start, err := models.ParseImportDate(mcp.ParseString(request, "start_date", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		deadline, err := models.ParseImportDate(mcp.ParseString(request, "deadline", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		t := &models.Task{
			ID:          mcp.ParseString(request, "id", ""),
			ProjectID:   mcp.ParseString(request, "project_id", ""),
			Name:        mcp.ParseString(request, "name", ""),
			Description: mcp.ParseString(request, "description", ""),
			AssigneeID:  mcp.ParseString(request, "assignee_id", models.Unassigned),
			StartDate:   start,
			Deadline:    deadline,
			Priority:    models.TaskPriority(mcp.ParseString(request, "priority", string(models.PriorityLow))),
		}

		if err := database.CreateTask(ctx, t); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Task '%s' created in project '%s'", t.ID, t.ProjectID)), nil
	}
}

func listTasksHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID := mcp.ParseString(request, "project_id", "")
		assigneeID := mcp.ParseString(request, "assignee_id", "")

		var status *models.TaskStatus
		if s := mcp.ParseString(request, "status", ""); s != "" {
			ts := models.TaskStatus(s)
			status = &ts
		}

		tasks, err := database.ListTasks(ctx, projectID, status, assigneeID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{"tasks": tasks})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func setTaskStatusHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		status := models.TaskStatus(mcp.ParseString(request, "status", ""))

		if err := database.SetTaskStatus(ctx, id, status); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Task '%s' is now %s", id, status)), nil
	}
}

func deleteTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")

		if err := database.DeleteTask(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Task '%s' deleted", id)), nil
	}
}

func getOverdueTasksHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID := mcp.ParseString(request, "project_id", "")

		tasks, err := database.OverdueTasks(ctx, projectID, models.DateOnly(time.Now().UTC()))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{"tasks": tasks})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func createWeeklyReportHandler(builder *report.Builder) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID := mcp.ParseString(request, "project_id", "")
		authorID := mcp.ParseString(request, "author_id", "")

		var firstEnd time.Time
		if s := mcp.ParseString(request, "period_end", ""); s != "" {
			var err error
			if firstEnd, err = models.ParseImportDate(s); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}

		result, err := builder.CreateWeekly(ctx, projectID, authorID, firstEnd)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{
			"report":            result.Report,
			"overdue_tasks":     result.OverdueTasks,
			"next_period_tasks": result.NextPeriodTasks,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func createFinalReportHandler(builder *report.Builder) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID := mcp.ParseString(request, "project_id", "")
		authorID := mcp.ParseString(request, "author_id", "")

		r, err := builder.CreateFinal(ctx, projectID, authorID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(r)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func listWeeklyReportsHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID := mcp.ParseString(request, "project_id", "")

		var reports []*models.WeeklyReport
		var err error
		if projectID != "" {
			reports, err = database.WeeklyReportsForProject(ctx, projectID)
		} else {
			reports, err = database.ListWeeklyReports(ctx)
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{"reports": reports})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func listFinalReportsHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reports, err := database.ListFinalReports(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(map[string]interface{}{"reports": reports})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func exportCSVHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dir := mcp.ParseString(request, "dir", "")
		if dir == "" {
			return mcp.NewToolResultError("dir is required"), nil
		}

		if err := database.ExportCSV(ctx, dir); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Exported CSV files to %s", dir)), nil
	}
}
