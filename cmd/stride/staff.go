package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/ldi/stride/pkg/models"
)

func runStaff(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: stride staff <command> [arguments]")
		fmt.Println("\nCommands:")
		fmt.Println("  add       Add a staff member")
		fmt.Println("  list      List staff members")
		fmt.Println("  show      Show one staff member")
		fmt.Println("  update    Update a staff member")
		fmt.Println("  delete    Remove a staff member")
		fmt.Println("  search    Search staff by keyword")
		return nil
	}

	command := args[0]
	subArgs := args[1:]

	switch command {
	case "add":
		return runStaffAdd(subArgs)
	case "list":
		return runStaffList(subArgs)
	case "show":
		return runStaffShow(subArgs)
	case "update":
		return runStaffUpdate(subArgs)
	case "delete":
		return runStaffDelete(subArgs)
	case "search":
		return runStaffSearch(subArgs)
	default:
		return fmt.Errorf("unknown staff command: %s", command)
	}
}

func runStaffAdd(args []string) error {
	staffFlags := flag.NewFlagSet("staff add", flag.ContinueOnError)
	id := staffFlags.String("id", "", "Staff id (NV_00000)")
	name := staffFlags.String("name", "", "Full name")
	age := staffFlags.Int("age", 0, "Age (18-70)")
	level := staffFlags.String("level", string(models.LevelJunior), "Level (Intern, Junior, Senior)")
	role := staffFlags.String("role", "", "Role (Developer, Tester, ...)")
	title := staffFlags.String("title", "", "Management title (Team Leader, Project Manager)")
	if err := staffFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	s := &models.Staff{
		ID:              *id,
		FullName:        models.NormalizeName(*name),
		Age:             *age,
		Level:           models.StaffLevel(*level),
		Role:            models.StaffRole(*role),
		ManagementTitle: models.ManagementTitle(*title),
	}
	if err := database.CreateStaff(ctx, s); err != nil {
		return err
	}

	fmt.Printf("✓ Added staff %s (%s)\n", s.ID, s.FullName)
	return nil
}

func runStaffList(args []string) error {
	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	staff, err := database.ListStaff(ctx)
	if err != nil {
		return err
	}

	printStaffTable(staff)
	return nil
}

func runStaffShow(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride staff show <id>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	s, err := database.GetStaff(ctx, args[0])
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("staff %s not found", args[0])
	}

	fmt.Printf("ID:     %s\n", s.ID)
	fmt.Printf("Name:   %s\n", s.FullName)
	fmt.Printf("Age:    %d\n", s.Age)
	fmt.Printf("Level:  %s\n", s.Level)
	fmt.Printf("Role:   %s\n", s.Role)
	if s.ManagementTitle != models.TitleNone {
		fmt.Printf("Title:  %s\n", s.ManagementTitle)
	}
	if len(s.TaskIDs) > 0 {
		fmt.Printf("Tasks:  %s\n", strings.Join(s.TaskIDs, ", "))
	}
	return nil
}

func runStaffUpdate(args []string) error {
	staffFlags := flag.NewFlagSet("staff update", flag.ContinueOnError)
	id := staffFlags.String("id", "", "Staff id")
	name := staffFlags.String("name", "", "New full name")
	age := staffFlags.Int("age", 0, "New age")
	level := staffFlags.String("level", "", "New level")
	role := staffFlags.String("role", "", "New role")
	title := staffFlags.String("title", "", "New management title")
	clearTitle := staffFlags.Bool("clear-title", false, "Remove the management title")
	if err := staffFlags.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	s, err := database.GetStaff(ctx, *id)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("staff %s not found", *id)
	}

	if *name != "" {
		s.FullName = models.NormalizeName(*name)
	}
	if *age != 0 {
		s.Age = *age
	}
	if *level != "" {
		s.Level = models.StaffLevel(*level)
	}
	if *role != "" {
		s.Role = models.StaffRole(*role)
	}
	if *title != "" {
		s.ManagementTitle = models.ManagementTitle(*title)
	}
	if *clearTitle {
		s.ManagementTitle = models.TitleNone
	}

	if err := database.UpdateStaff(ctx, s); err != nil {
		return err
	}
	fmt.Printf("✓ Updated staff %s\n", s.ID)
	return nil
}

func runStaffDelete(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride staff delete <id>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteStaff(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted staff %s\n", args[0])
	return nil
}

func runStaffSearch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: stride staff search <keyword>")
	}

	ctx := context.Background()
	database, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	staff, err := database.SearchStaff(ctx, args[0])
	if err != nil {
		return err
	}

	printStaffTable(staff)
	return nil
}

func printStaffTable(staff []*models.Staff) {
	fmt.Printf("%-10s %-25s %-5s %-8s %-25s %s\n", "ID", "NAME", "AGE", "LEVEL", "ROLE", "TITLE")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, s := range staff {
		fmt.Printf("%-10s %-25s %-5d %-8s %-25s %s\n",
			s.ID, s.FullName, s.Age, s.Level, s.Role, s.ManagementTitle)
	}
}
