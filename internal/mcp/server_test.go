package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/ldi/stride/internal/db"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func testDatabase(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.Init(context.Background()); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	return database
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()

	tool := s.GetTool(name)
	if tool == nil {
		t.Fatalf("Tool %s not found", name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := tool.Handler(context.Background(), req)
	if err != nil {
		t.Fatalf("Handler %s failed: %v", name, err)
	}
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("Expected content in result")
	}
	return result.Content[0].(mcp.TextContent).Text
}

func TestServerInitialization(t *testing.T) {
	database := testDatabase(t)

	s := NewServer(database)
	stdio := server.NewStdioServer(s)

	r, w := io.Pipe()
	stdout := &bytes.Buffer{}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- stdio.Listen(ctx, r, stdout)
	}()

	initReq := mcp.InitializeRequest{}
	initReq.Method = "initialize"
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}

	rawReq := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params":  initReq.Params,
	}

	data, err := json.Marshal(rawReq)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	w.Write(data)
	w.Write([]byte("\n"))

	// Give it a moment to process
	time.Sleep(200 * time.Millisecond)

	if stdout.Len() == 0 {
		t.Fatal("Expected response from server, got none")
	}

	var resp struct {
		JSONRPC string `json:"jsonrpc"`
		ID      int    `json:"id"`
		Result  struct {
			ProtocolVersion string `json:"protocolVersion"`
			ServerInfo      struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
		} `json:"result"`
	}

	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v\nOutput: %s", err, stdout.String())
	}

	if resp.ID != 1 {
		t.Errorf("Expected id 1, got %v", resp.ID)
	}

	if resp.Result.ServerInfo.Name != "Stride" {
		t.Errorf("Expected server name Stride, got %v", resp.Result.ServerInfo.Name)
	}
}

func TestToolHandlers(t *testing.T) {
	database := testDatabase(t)
	ctx := context.Background()
	s := NewServer(database)

	t.Run("create_staff", func(t *testing.T) {
		result := callTool(t, s, "create_staff", map[string]interface{}{
			"id":               "NV_00001",
			"full_name":        "anna kovaleva",
			"age":              35.0,
			"level":            "Senior",
			"role":             "Technical Lead",
			"management_title": "Project Manager",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		staff, err := database.GetStaff(ctx, "NV_00001")
		if err != nil || staff == nil {
			t.Fatalf("Staff not found in DB: %v", err)
		}
		if staff.FullName != "Anna Kovaleva" {
			t.Errorf("Expected normalized name, got %s", staff.FullName)
		}
	})

	t.Run("create_project", func(t *testing.T) {
		result := callTool(t, s, "create_project", map[string]interface{}{
			"id":                "P25_00001",
			"name":              "Billing Portal",
			"customer":          "Acme",
			"start_date":        "01/01/2025",
			"expected_end_date": "31/01/2025",
			"budget":            100000.0,
			"pm_id":             "NV_00001",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		p, err := database.GetProject(ctx, "P25_00001")
		if err != nil || p == nil {
			t.Fatalf("Project not found in DB: %v", err)
		}
	})

	t.Run("create_task", func(t *testing.T) {
		result := callTool(t, s, "create_task", map[string]interface{}{
			"project_id":  "P25_00001",
			"name":        "Implement login",
			"assignee_id": "NV_00001",
			"start_date":  "02/01/2025",
			"deadline":    "10/01/2025",
			"priority":    "High",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}
		if !strings.Contains(resultText(t, result), "TP25_00001_00001") {
			t.Errorf("Expected allocated task id in response, got %s", resultText(t, result))
		}
	})

	t.Run("set_task_status", func(t *testing.T) {
		result := callTool(t, s, "set_task_status", map[string]interface{}{
			"id":     "TP25_00001_00001",
			"status": "In Progress",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		// Invalid transitions surface as tool errors, not Go errors.
		result = callTool(t, s, "set_task_status", map[string]interface{}{
			"id":     "TP25_00001_00001",
			"status": "Delay",
		})
		if !result.IsError {
			t.Fatal("Expected error for invalid status")
		}
	})

	t.Run("get_progress", func(t *testing.T) {
		result := callTool(t, s, "get_progress", map[string]interface{}{"id": "P25_00001"})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		var summary struct {
			Total      int     `json:"Total"`
			InProgress int     `json:"InProgress"`
			Rate       float64 `json:"Rate"`
		}
		if err := json.Unmarshal([]byte(resultText(t, result)), &summary); err != nil {
			t.Fatalf("Failed to unmarshal summary: %v", err)
		}
		if summary.Total != 1 || summary.InProgress != 1 {
			t.Errorf("Unexpected summary: %+v", summary)
		}
	})

	t.Run("create_weekly_report", func(t *testing.T) {
		// Step 1: a non-manager author is refused.
		result := callTool(t, s, "create_weekly_report", map[string]interface{}{
			"project_id": "P25_00001",
			"author_id":  "NV_99999",
		})
		if !result.IsError {
			t.Fatal("Expected error for unknown author")
		}

		// Step 2: the manager creates week one.
		result = callTool(t, s, "create_weekly_report", map[string]interface{}{
			"project_id": "P25_00001",
			"author_id":  "NV_00001",
			"period_end": "07/01/2025",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		var resp struct {
			Report struct {
				ID string `json:"id"`
			} `json:"report"`
		}
		if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if resp.Report.ID != "WRP25_00001_W01" {
			t.Errorf("Expected WRP25_00001_W01, got %s", resp.Report.ID)
		}
	})

	t.Run("create_final_report", func(t *testing.T) {
		result := callTool(t, s, "set_project_status", map[string]interface{}{
			"id":       "P25_00001",
			"status":   "Completed",
			"override": true,
		})
		if result.IsError {
			t.Fatalf("Failed to complete project: %v", result.Content[0])
		}

		result = callTool(t, s, "create_final_report", map[string]interface{}{
			"project_id": "P25_00001",
			"author_id":  "NV_00001",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		var report struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(resultText(t, result)), &report); err != nil {
			t.Fatalf("Failed to unmarshal report: %v", err)
		}
		if report.ID != "FRP25_00001" {
			t.Errorf("Expected FRP25_00001, got %s", report.ID)
		}

		// Only one final report per project.
		result = callTool(t, s, "create_final_report", map[string]interface{}{
			"project_id": "P25_00001",
			"author_id":  "NV_00001",
		})
		if !result.IsError {
			t.Fatal("Expected error for duplicate final report")
		}
	})

	t.Run("list_weekly_reports", func(t *testing.T) {
		result := callTool(t, s, "list_weekly_reports", map[string]interface{}{
			"project_id": "P25_00001",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		var resp struct {
			Reports []interface{} `json:"reports"`
		}
		if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(resp.Reports) != 1 {
			t.Errorf("Expected 1 report, got %d", len(resp.Reports))
		}
	})

	t.Run("get_overdue_tasks", func(t *testing.T) {
		result := callTool(t, s, "get_overdue_tasks", map[string]interface{}{
			"project_id": "P25_00001",
		})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}
	})

	t.Run("delete_staff", func(t *testing.T) {
		result := callTool(t, s, "delete_staff", map[string]interface{}{"id": "NV_00001"})
		if result.IsError {
			t.Fatalf("Tool returned error: %v", result.Content[0])
		}

		task, err := database.GetTask(ctx, "TP25_00001_00001")
		if err != nil {
			t.Fatalf("Failed to get task: %v", err)
		}
		if task.AssigneeID != "Unassigned" {
			t.Errorf("Expected task unassigned, got %s", task.AssigneeID)
		}
	})
}
