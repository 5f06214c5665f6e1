package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

type StaffLevel string

const (
	LevelIntern StaffLevel = "Intern"
	LevelJunior StaffLevel = "Junior"
	LevelSenior StaffLevel = "Senior"
)

var StaffLevels = []StaffLevel{LevelIntern, LevelJunior, LevelSenior}

type StaffRole string

const (
	RoleBusinessAnalyst  StaffRole = "Business Analyst"
	RoleDeveloper        StaffRole = "Developer"
	RoleTester           StaffRole = "Tester"
	RoleUIUXDesigner     StaffRole = "UI/UX Designer"
	RoleTechnicalLead    StaffRole = "Technical Lead"
	RoleImplConsultant   StaffRole = "Implementation Consultant"
	RoleDevOpsEngineer   StaffRole = "DevOps Engineer"
	RoleQualityAssurance StaffRole = "Quality Assurance"
)

var StaffRoles = []StaffRole{
	RoleBusinessAnalyst, RoleDeveloper, RoleTester, RoleUIUXDesigner,
	RoleTechnicalLead, RoleImplConsultant, RoleDevOpsEngineer, RoleQualityAssurance,
}

type ManagementTitle string

const (
	TitleNone           ManagementTitle = ""
	TitleTeamLeader     ManagementTitle = "Team Leader"
	TitleProjectManager ManagementTitle = "Project Manager"
)

type Staff struct {
	ID              string          `json:"id"`
	FullName        string          `json:"full_name"`
	Age             int             `json:"age"`
	Level           StaffLevel      `json:"level"`
	Role            StaffRole       `json:"role"`
	ManagementTitle ManagementTitle `json:"management_title,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// TaskIDs is derived from task assignments on load, never authoritative.
	TaskIDs []string `json:"task_ids,omitempty"`
}

func (s *Staff) IsProjectManager() bool {
	return s.ManagementTitle == TitleProjectManager
}

var staffIDRe = regexp.MustCompile(`^NV_\d{5}$`)

func ValidateStaffID(id string) error {
	if !staffIDRe.MatchString(id) {
		return fmt.Errorf("staff id %q must match NV_00000: %w", id, ErrValidation)
	}
	return nil
}

var nameRe = regexp.MustCompile(`^[\p{L} ]+$`)

// NormalizeName title-cases each word of an operator-entered name.
func NormalizeName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func (s *Staff) Validate() error {
	if err := ValidateStaffID(s.ID); err != nil {
		return err
	}
	if strings.TrimSpace(s.FullName) == "" || !nameRe.MatchString(s.FullName) {
		return fmt.Errorf("staff name %q must contain only letters and spaces: %w", s.FullName, ErrValidation)
	}
	if s.Age < 18 || s.Age > 65 {
		return fmt.Errorf("staff age %d must be between 18 and 65: %w", s.Age, ErrValidation)
	}
	if !validStaffLevel(s.Level) {
		return fmt.Errorf("invalid staff level %q: %w", s.Level, ErrValidation)
	}
	if !validStaffRole(s.Role) {
		return fmt.Errorf("invalid staff role %q: %w", s.Role, ErrValidation)
	}
	switch s.ManagementTitle {
	case TitleNone, TitleTeamLeader, TitleProjectManager:
	default:
		return fmt.Errorf("invalid management title %q: %w", s.ManagementTitle, ErrValidation)
	}
	return nil
}

func validStaffLevel(l StaffLevel) bool {
	for _, v := range StaffLevels {
		if l == v {
			return true
		}
	}
	return false
}

func validStaffRole(r StaffRole) bool {
	for _, v := range StaffRoles {
		if r == v {
			return true
		}
	}
	return false
}
