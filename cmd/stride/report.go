package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ldi/stride/internal/report"
	"github.com/ldi/stride/internal/ui/components"
	"github.com/ldi/stride/pkg/models"
)

func runReport(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: stride report <command> [arguments]")
		fmt.Println("\nCommands:")
		fmt.Println("  weekly    Create the next weekly report for a project")
		fmt.Println("  final     Create the final report for a finished project")
		fmt.Println("  list      List saved reports")
		fmt.Println("  show      Show one report")
		fmt.Println("  delete    Remove a weekly report")
		return nil
	}

	command := args[0]
	subArgs := args[1:]

	switch command {
	case "weekly":
		return runReportWeekly(subArgs)
	case "final":
		return runReportFinal(subArgs)
	case "list":
		return runReportList(subArgs)
	case "show":
		return runReportShow(subArgs)
	case "delete":
		return runReportDelete(subArgs)
	default:
		return fmt.Errorf("unknown report command: %s", command)
	}
}

func runReportWeekly(args []string) error {
	reportFlags := flag.NewFlagSet("report weekly", flag.ContinueOnError)
	project := reportFlags.String("project", "", "Project id")
	author := reportFlags.String("author", "", "Author staff id (must be the project's manager)")
	firstEnd := reportFlags.String("end", "", "End of the first period (dd/mm/yyyy, first report only)")
	if err := reportFlags.Parse(args); err != nil {
		return err
	}

	var end time.Time
	if *firstEnd != "" {
		d, err := models.ParseInputDate(*firstEnd)
		if err != nil {
			return err
		}
		end = d
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	builder := report.NewBuilder(database)
	result, err := builder.CreateWeekly(ctx, *project, *author, end)
	if err != nil {
		return err
	}

	printWeeklyReport(result.Report)

	if len(result.OverdueTasks) > 0 || len(result.NextPeriodTasks) > 0 {
		board := components.NewTaskBoard(72)
		board.Title = ""
		for _, t := range result.OverdueTasks {
			board.Add(components.TaskLine{
				Label:   fmt.Sprintf("%s %s (deadline: %s)", t.ID, t.Name, models.FormatInputDate(t.Deadline)),
				Overdue: true,
			}, 0)
		}
		for _, t := range result.NextPeriodTasks {
			board.Add(components.TaskLine{
				Label: fmt.Sprintf("%s %s (deadline: %s)", t.ID, t.Name, models.FormatInputDate(t.Deadline)),
			}, 0)
		}
		fmt.Println()
		fmt.Println(board.View())
	}
	return nil
}

func runReportFinal(args []string) error {
	reportFlags := flag.NewFlagSet("report final", flag.ContinueOnError)
	project := reportFlags.String("project", "", "Project id")
	author := reportFlags.String("author", "", "Author staff id (must be the project's manager)")
	if err := reportFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	builder := report.NewBuilder(database)
	r, err := builder.CreateFinal(ctx, *project, *author)
	if err != nil {
		return err
	}

	printFinalReport(r)
	return nil
}

func runReportList(args []string) error {
	reportFlags := flag.NewFlagSet("report list", flag.ContinueOnError)
	project := reportFlags.String("project", "", "Restrict weekly reports to one project")
	if err := reportFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	var weekly []*models.WeeklyReport
	if *project != "" {
		weekly, err = database.WeeklyReportsForProject(ctx, *project)
	} else {
		weekly, err = database.ListWeeklyReports(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%-20s %-10s %-12s %-12s %-8s %s\n", "ID", "PROJECT", "FROM", "TO", "PROG", "STATUS")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, r := range weekly {
		fmt.Printf("%-20s %-10s %-12s %-12s %6.2f%% %s\n",
			r.ID, r.ProjectID,
			models.FormatInputDate(r.PeriodStart), models.FormatInputDate(r.PeriodEnd),
			r.Progress, r.Status)
	}

	if *project == "" {
		finals, err := database.ListFinalReports(ctx)
		if err != nil {
			return err
		}
		if len(finals) > 0 {
			fmt.Println("\nFinal reports:")
			for _, r := range finals {
				fmt.Printf("  %-14s %-10s %-30s %6.2f%%\n",
					r.ID, r.ProjectID, r.ProjectName, r.OverallProgress)
			}
		}
	}
	return nil
}

func runReportShow(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride report show <id>")
	}
	id := args[0]

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if w, err := database.GetWeeklyReport(ctx, id); err != nil {
		return err
	} else if w != nil {
		printWeeklyReport(w)
		return nil
	}

	f, err := database.GetFinalReport(ctx, id)
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("report %s not found", id)
	}
	printFinalReport(f)
	return nil
}

func runReportDelete(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride report delete <id>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteWeeklyReport(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted report %s\n", args[0])
	return nil
}

func runProgress(args []string) error {
	progressFlags := flag.NewFlagSet("progress", flag.ContinueOnError)
	project := progressFlags.String("project", "", "Project id")
	if err := progressFlags.Parse(args); err != nil {
		return err
	}
	if *project == "" && progressFlags.NArg() > 0 {
		*project = progressFlags.Arg(0)
	}
	if *project == "" {
		return fmt.Errorf("usage: stride progress -project <id>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	p, err := database.GetProject(ctx, *project)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("project %s not found", *project)
	}

	tasks, err := database.TasksForProject(ctx, p.ID)
	if err != nil {
		return err
	}

	summary := report.Progress(p.ID, tasks)
	fmt.Printf("Progress for %s (%s)\n", p.Name, p.ID)
	fmt.Println("========================================")
	fmt.Printf("To Do:       %d\n", summary.ToDo)
	fmt.Printf("In Progress: %d\n", summary.InProgress)
	fmt.Printf("Completed:   %d\n", summary.Completed)
	fmt.Printf("Cancelled:   %d\n", summary.Cancelled)
	fmt.Printf("Total:       %d\n", summary.Total)
	fmt.Printf("Rate:        %.2f%%\n", summary.Rate)
	return nil
}

func printWeeklyReport(r *models.WeeklyReport) {
	fmt.Printf("Weekly Report %s\n", r.ID)
	fmt.Println("========================================")
	fmt.Printf("Project:   %s\n", r.ProjectID)
	fmt.Printf("Author:    %s\n", r.AuthorID)
	fmt.Printf("Period:    %s - %s\n",
		models.FormatInputDate(r.PeriodStart), models.FormatInputDate(r.PeriodEnd))
	fmt.Printf("Tasks:     %d\n", r.TotalTasks)
	fmt.Printf("Completed: %d\n", r.Completed)
	fmt.Printf("Overdue:   %d\n", r.Overdue)
	fmt.Printf("Progress:  %.2f%%\n", r.Progress)
	fmt.Printf("Status:    %s\n", r.Status)
}

func printFinalReport(r *models.FinalReport) {
	fmt.Printf("Final Report %s\n", r.ID)
	fmt.Println("========================================")
	fmt.Printf("Project:   %s (%s)\n", r.ProjectName, r.ProjectID)
	fmt.Printf("Customer:  %s\n", r.Customer)
	fmt.Printf("Author:    %s\n", r.AuthorID)
	fmt.Printf("Duration:  %s - %s (%d days)\n",
		models.FormatInputDate(r.ProjectStart), models.FormatInputDate(r.ActualEnd), r.DurationDays)
	fmt.Printf("Tasks:     %d\n", r.TotalTasks)
	fmt.Printf("Completed: %d (on time: %d, overdue: %d)\n", r.Completed, r.OnTime, r.Overdue)
	fmt.Printf("Cancelled: %d\n", r.Cancelled)
	fmt.Printf("Progress:  %.2f%%\n", r.OverallProgress)
	fmt.Printf("Outcome:   %s\n", r.ProjectStatus)
}
