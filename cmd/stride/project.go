package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ldi/stride/pkg/models"
)

func runProject(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: stride project <command> [arguments]")
		fmt.Println("\nCommands:")
		fmt.Println("  add        Add a project")
		fmt.Println("  list       List projects")
		fmt.Println("  show       Show one project")
		fmt.Println("  update     Update a project")
		fmt.Println("  status     Change a project's status")
	fmt.Println("  complete   Mark a project Completed")
		fmt.Println("  members    List the staff working on a project")
		fmt.Println("  delete     Remove a project and its tasks")
		fmt.Println("  search     Search projects by keyword")
		return nil
	}

	command := args[0]
	subArgs := args[1:]

	switch command {
	case "add":
		return runProjectAdd(subArgs)
	case "list":
		return runProjectList(subArgs)
	case "show":
		return runProjectShow(subArgs)
	case "update":
		return runProjectUpdate(subArgs)
	case "status":
		return runProjectStatus(subArgs)
	case "complete":
		return runProjectComplete(subArgs)
	case "members":
		return runProjectMembers(subArgs)
	case "delete":
		return runProjectDelete(subArgs)
	case "search":
		return runProjectSearch(subArgs)
	default:
		return fmt.Errorf("unknown project command: %s", command)
	}
}

func runProjectAdd(args []string) error {
	projectFlags := flag.NewFlagSet("project add", flag.ContinueOnError)
	id := projectFlags.String("id", "", "Project id (P00_00000)")
	name := projectFlags.String("name", "", "Project name")
	customer := projectFlags.String("customer", "", "Customer name")
	description := projectFlags.String("description", "", "Description")
	start := projectFlags.String("start", "", "Start date (dd/mm/yyyy)")
	end := projectFlags.String("end", "", "Expected end date (dd/mm/yyyy)")
	budget := projectFlags.Float64("budget", 0, "Budget")
	pm := projectFlags.String("pm", "", "Project manager staff id")
	if err := projectFlags.Parse(args); err != nil {
		return err
	}

	startDate, err := models.ParseInputDate(*start)
	if err != nil {
		return err
	}
	endDate, err := models.ParseInputDate(*end)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	p := &models.Project{
		ID:          *id,
		Name:        *name,
		Customer:    *customer,
		Description: *description,
		StartDate:   startDate,
		ExpectedEnd: endDate,
		Budget:      *budget,
		PMID:        *pm,
	}
	if err := database.CreateProject(ctx, p); err != nil {
		return err
	}

	fmt.Printf("✓ Added project %s (%s)\n", p.ID, p.Name)
	return nil
}

func runProjectList(args []string) error {
	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	projects, err := database.ListProjects(ctx)
	if err != nil {
		return err
	}

	printProjectTable(projects)
	return nil
}

func runProjectShow(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride project show <id>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	p, err := database.GetProject(ctx, args[0])
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("project %s not found", args[0])
	}

	fmt.Printf("ID:          %s\n", p.ID)
	fmt.Printf("Name:        %s\n", p.Name)
	fmt.Printf("Customer:    %s\n", p.Customer)
	if p.Description != "" {
		fmt.Printf("Description: %s\n", p.Description)
	}
	fmt.Printf("Start:       %s\n", models.FormatInputDate(p.StartDate))
	fmt.Printf("Expected:    %s\n", models.FormatInputDate(p.ExpectedEnd))
	if p.ActualEnd != nil {
		fmt.Printf("Ended:       %s\n", models.FormatInputDate(*p.ActualEnd))
	}
	fmt.Printf("Budget:      %.2f\n", p.Budget)
	fmt.Printf("Status:      %s\n", p.Status)
	if p.PMID != "" {
		fmt.Printf("Manager:     %s\n", p.PMID)
	}

	tasks, err := database.TasksForProject(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(tasks) > 0 {
		fmt.Printf("\nTasks (%d):\n", len(tasks))
		for _, t := range tasks {
			fmt.Printf("  %-20s %-30s %-12s %s\n", t.ID, t.Name, t.Status, t.AssigneeID)
		}
	}
	return nil
}

func runProjectUpdate(args []string) error {
	projectFlags := flag.NewFlagSet("project update", flag.ContinueOnError)
	id := projectFlags.String("id", "", "Project id")
	name := projectFlags.String("name", "", "New name")
	customer := projectFlags.String("customer", "", "New customer")
	description := projectFlags.String("description", "", "New description")
	start := projectFlags.String("start", "", "New start date (dd/mm/yyyy)")
	end := projectFlags.String("end", "", "New expected end date (dd/mm/yyyy)")
	budget := projectFlags.Float64("budget", -1, "New budget")
	pm := projectFlags.String("pm", "", "New project manager staff id")
	if err := projectFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	p, err := database.GetProject(ctx, *id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("project %s not found", *id)
	}

	if *name != "" {
		p.Name = *name
	}
	if *customer != "" {
		p.Customer = *customer
	}
	if *description != "" {
		p.Description = *description
	}
	if *start != "" {
		d, err := models.ParseInputDate(*start)
		if err != nil {
			return err
		}
		p.StartDate = d
	}
	if *end != "" {
		d, err := models.ParseInputDate(*end)
		if err != nil {
			return err
		}
		p.ExpectedEnd = d
	}
	if *budget >= 0 {
		p.Budget = *budget
	}
	if *pm != "" {
		p.PMID = *pm
	}

	if err := database.UpdateProject(ctx, p); err != nil {
		return err
	}
	fmt.Printf("✓ Updated project %s\n", p.ID)
	return nil
}

func runProjectStatus(args []string) error {
	projectFlags := flag.NewFlagSet("project status", flag.ContinueOnError)
	id := projectFlags.String("id", "", "Project id")
	status := projectFlags.String("status", "", "New status (Not Started, In Progress, Paused, Completed, Cancelled)")
	override := projectFlags.Bool("override", false, "Complete the project even with unfinished tasks")
	if err := projectFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.SetProjectStatus(ctx, *id, models.ProjectStatus(*status), *override); err != nil {
		return err
	}
	fmt.Printf("✓ Project %s is now %s\n", *id, *status)
	return nil
}

func runProjectComplete(args []string) error {
	projectFlags := flag.NewFlagSet("project complete", flag.ContinueOnError)
	id := projectFlags.String("id", "", "Project id")
	override := projectFlags.Bool("override", false, "Complete even with unfinished tasks")
	if err := projectFlags.Parse(args); err != nil {
		return err
	}
	if *id == "" && projectFlags.NArg() > 0 {
		*id = projectFlags.Arg(0)
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.SetProjectStatus(ctx, *id, models.ProjectCompleted, *override); err != nil {
		return err
	}
	fmt.Printf("✓ Project %s is now %s\n", *id, models.ProjectCompleted)
	return nil
}

func runProjectMembers(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride project members <id>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	members, err := database.ProjectMembers(ctx, args[0])
	if err != nil {
		return err
	}

	printStaffTable(members)
	return nil
}

func runProjectDelete(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride project delete <id>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteProject(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted project %s\n", args[0])
	return nil
}

func runProjectSearch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride project search <keyword>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	projects, err := database.SearchProjects(ctx, args[0])
	if err != nil {
		return err
	}

	printProjectTable(projects)
	return nil
}

func printProjectTable(projects []*models.Project) {
	fmt.Printf("%-10s %-30s %-20s %-12s %-12s %s\n", "ID", "NAME", "CUSTOMER", "START", "EXPECTED", "STATUS")
	fmt.Println("----------------------------------------------------------------------------------------------------")
	for _, p := range projects {
		fmt.Printf("%-10s %-30s %-20s %-12s %-12s %s\n",
			p.ID, p.Name, p.Customer,
			models.FormatInputDate(p.StartDate), models.FormatInputDate(p.ExpectedEnd), p.Status)
	}
}
