package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ldi/stride/pkg/models"
)

func runTask(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: stride task <command> [arguments]")
		fmt.Println("\nCommands:")
		fmt.Println("  add         Add a task to a project")
		fmt.Println("  list        List tasks")
		fmt.Println("  show        Show one task")
		fmt.Println("  update      Update a task")
		fmt.Println("  set-status  Change a task's status")
		fmt.Println("  overdue     List overdue tasks")
		fmt.Println("  delete      Remove a task")
		fmt.Println("  search      Search tasks by keyword")
		return nil
	}

	command := args[0]
	subArgs := args[1:]

	switch command {
	case "add":
		return runTaskAdd(subArgs)
	case "list":
		return runTaskList(subArgs)
	case "show":
		return runTaskShow(subArgs)
	case "update":
		return runTaskUpdate(subArgs)
	case "set-status":
		return runTaskSetStatus(subArgs)
	case "overdue":
		return runTaskOverdue(subArgs)
	case "delete":
		return runTaskDelete(subArgs)
	case "search":
		return runTaskSearch(subArgs)
	default:
		return fmt.Errorf("unknown task command: %s", command)
	}
}

func runTaskAdd(args []string) error {
	taskFlags := flag.NewFlagSet("task add", flag.ContinueOnError)
	project := taskFlags.String("project", "", "Project id")
	name := taskFlags.String("name", "", "Task name")
	description := taskFlags.String("description", "", "Description")
	assignee := taskFlags.String("assignee", "", "Assignee staff id (empty for Unassigned)")
	start := taskFlags.String("start", "", "Start date (dd/mm/yyyy)")
	deadline := taskFlags.String("deadline", "", "Deadline (dd/mm/yyyy)")
	priority := taskFlags.String("priority", "", "Priority (Low, Medium, High, Critical)")
	if err := taskFlags.Parse(args); err != nil {
		return err
	}

	startDate, err := models.ParseInputDate(*start)
	if err != nil {
		return err
	}
	deadlineDate, err := models.ParseInputDate(*deadline)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	t := &models.Task{
		ProjectID:   *project,
		Name:        *name,
		Description: *description,
		AssigneeID:  *assignee,
		StartDate:   startDate,
		Deadline:    deadlineDate,
		Priority:    models.TaskPriority(*priority),
	}
	if err := database.CreateTask(ctx, t); err != nil {
		return err
	}

	fmt.Printf("✓ Added task %s (%s)\n", t.ID, t.Name)
	return nil
}

func runTaskList(args []string) error {
	taskFlags := flag.NewFlagSet("task list", flag.ContinueOnError)
	project := taskFlags.String("project", "", "Filter by project id")
	statusFilter := taskFlags.String("status", "", "Filter by status (To Do, In Progress, Completed, Cancelled)")
	assignee := taskFlags.String("assignee", "", "Filter by assignee staff id")
	if err := taskFlags.Parse(args); err != nil {
		return err
	}

	var status *models.TaskStatus
	if *statusFilter != "" {
		s := models.TaskStatus(*statusFilter)
		status = &s
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	tasks, err := database.ListTasks(ctx, *project, status, *assignee)
	if err != nil {
		return err
	}

	printTaskTable(tasks)
	return nil
}

func runTaskShow(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride task show <id>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	t, err := database.GetTask(ctx, args[0])
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("task %s not found", args[0])
	}

	fmt.Printf("ID:          %s\n", t.ID)
	fmt.Printf("Project:     %s\n", t.ProjectID)
	fmt.Printf("Name:        %s\n", t.Name)
	if t.Description != "" {
		fmt.Printf("Description: %s\n", t.Description)
	}
	if t.AssigneeName != "" {
		fmt.Printf("Assignee:    %s (%s)\n", t.AssigneeID, t.AssigneeName)
	} else {
		fmt.Printf("Assignee:    %s\n", t.AssigneeID)
	}
	fmt.Printf("Start:       %s\n", models.FormatInputDate(t.StartDate))
	fmt.Printf("Deadline:    %s\n", models.FormatInputDate(t.Deadline))
	if t.CompletedDate != nil {
		fmt.Printf("Completed:   %s\n", models.FormatInputDate(*t.CompletedDate))
	}
	fmt.Printf("Priority:    %s\n", t.Priority)
	fmt.Printf("Status:      %s\n", t.Status)
	return nil
}

func runTaskUpdate(args []string) error {
	taskFlags := flag.NewFlagSet("task update", flag.ContinueOnError)
	id := taskFlags.String("id", "", "Task id")
	name := taskFlags.String("name", "", "New name")
	description := taskFlags.String("description", "", "New description")
	assignee := taskFlags.String("assignee", "", "New assignee staff id")
	unassign := taskFlags.Bool("unassign", false, "Remove the assignee")
	start := taskFlags.String("start", "", "New start date (dd/mm/yyyy)")
	deadline := taskFlags.String("deadline", "", "New deadline (dd/mm/yyyy)")
	priority := taskFlags.String("priority", "", "New priority")
	if err := taskFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	t, err := database.GetTask(ctx, *id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("task %s not found", *id)
	}

	if *name != "" {
		t.Name = *name
	}
	if *description != "" {
		t.Description = *description
	}
	if *assignee != "" {
		t.AssigneeID = *assignee
	}
	if *unassign {
		t.AssigneeID = models.Unassigned
	}
	if *start != "" {
		d, err := models.ParseInputDate(*start)
		if err != nil {
			return err
		}
		t.StartDate = d
	}
	if *deadline != "" {
		d, err := models.ParseInputDate(*deadline)
		if err != nil {
			return err
		}
		t.Deadline = d
	}
	if *priority != "" {
		t.Priority = models.TaskPriority(*priority)
	}

	if err := database.UpdateTask(ctx, t); err != nil {
		return err
	}
	fmt.Printf("✓ Updated task %s\n", t.ID)
	return nil
}

func runTaskSetStatus(args []string) error {
	taskFlags := flag.NewFlagSet("task set-status", flag.ContinueOnError)
	id := taskFlags.String("id", "", "Task id")
	status := taskFlags.String("status", "", "New status (To Do, In Progress, Completed, Cancelled)")
	if err := taskFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.SetTaskStatus(ctx, *id, models.TaskStatus(*status)); err != nil {
		return err
	}
	fmt.Printf("✓ Task %s is now %s\n", *id, *status)
	return nil
}

func runTaskOverdue(args []string) error {
	taskFlags := flag.NewFlagSet("task overdue", flag.ContinueOnError)
	project := taskFlags.String("project", "", "Restrict to one project")
	asOf := taskFlags.String("as-of", "", "Reference date (dd/mm/yyyy, default today)")
	if err := taskFlags.Parse(args); err != nil {
		return err
	}

	ref := models.DateOnly(time.Now().UTC())
	if *asOf != "" {
		d, err := models.ParseInputDate(*asOf)
		if err != nil {
			return err
		}
		ref = d
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	tasks, err := database.OverdueTasks(ctx, *project, ref)
	if err != nil {
		return err
	}

	printTaskTable(tasks)
	return nil
}

func runTaskDelete(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride task delete <id>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteTask(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted task %s\n", args[0])
	return nil
}

func runTaskSearch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride task search <keyword>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	tasks, err := database.SearchTasks(ctx, args[0])
	if err != nil {
		return err
	}

	printTaskTable(tasks)
	return nil
}

func printTaskTable(tasks []*models.Task) {
	fmt.Printf("%-18s %-30s %-12s %-12s %-10s %s\n", "ID", "NAME", "ASSIGNEE", "DEADLINE", "PRIORITY", "STATUS")
	fmt.Println("----------------------------------------------------------------------------------------------------")
	for _, t := range tasks {
		fmt.Printf("%-18s %-30s %-12s %-12s %-10s %s\n",
			t.ID, t.Name, t.AssigneeID, models.FormatInputDate(t.Deadline), t.Priority, t.Status)
	}
}
