package domain

import "time"

type Role string

const (
	RoleSuperAdmin         Role = "SUPER_ADMIN"
	RoleFacultyCoordinator Role = "FACULTY_COORDINATOR"
	RoleStudentCoordinator Role = "STUDENT_COORDINATOR"
	RoleParticipant        Role = "PARTICIPANT"
)

// rank defines the authority ladder explicitly; higher outranks lower.
// Declaration order of the constants is not load-bearing.
var rank = map[Role]int{
	RoleSuperAdmin:         3,
	RoleFacultyCoordinator: 2,
	RoleStudentCoordinator: 1,
	RoleParticipant:        0,
}

func (r Role) Valid() bool {
	_, ok := rank[r]
	return ok
}

// AtLeast reports whether r carries at least the authority of other.
func (r Role) AtLeast(other Role) bool {
	return rank[r] >= rank[other]
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DOB          time.Time `json:"dob"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	PhotoHash    []byte    `json:"photo_hash,omitempty"`
	Verified     bool      `json:"verified"`
	PasswordHash string    `json:"-"`
}

// Profile is the externally visible slice of a User.
type Profile struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	DOB      time.Time `json:"dob"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Role     Role      `json:"role"`
	Verified bool      `json:"verified"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Name:     u.Name,
		DOB:      u.DOB,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     u.Role,
		Verified: u.Verified,
	}
}

type Department string

const (
	DeptCS    Department = "CS"
	DeptCT    Department = "CT"
	DeptCEN   Department = "CEN"
	DeptECE   Department = "ECE"
	DeptFET   Department = "FET"
	DeptMech  Department = "MECH"
	DeptDS    Department = "DS"
	DeptMH    Department = "MH"
	DeptPhy   Department = "PHY"
	DeptMaths Department = "MATHS"
	DeptChm   Department = "CHM"
)

func (d Department) Valid() bool {
	switch d {
	case DeptCS, DeptCT, DeptCEN, DeptECE, DeptFET, DeptMech, DeptDS, DeptMH, DeptPhy, DeptMaths, DeptChm:
		return true
	}
	return false
}

// Departments lists every department code, for frontend form
// population.
func Departments() []Department {
	return []Department{
		DeptCS, DeptCT, DeptCEN, DeptECE, DeptFET, DeptMech,
		DeptDS, DeptMH, DeptPhy, DeptMaths, DeptChm,
	}
}

type FacultyTitle string

const (
	TitleProfessor          FacultyTitle = "PROF"
	TitleAssociateProfessor FacultyTitle = "ASOCP"
	TitleAssistantProfessor FacultyTitle = "ASP"
	TitleGuest              FacultyTitle = "GUEST"
)

func (t FacultyTitle) Valid() bool {
	switch t {
	case TitleProfessor, TitleAssociateProfessor, TitleAssistantProfessor, TitleGuest:
		return true
	}
	return false
}

// Student holds the student-specific profile row attached to a User.
type Student struct {
	UserID  int64      `json:"user_id"`
	College string     `json:"college"`
	RegNo   string     `json:"reg_no"`
	Dept    Department `json:"dept"`
}

// Faculty holds the faculty-specific profile row attached to a User.
type Faculty struct {
	UserID int64        `json:"user_id"`
	Title  FacultyTitle `json:"title"`
	Dept   Department   `json:"dept"`
}

type StudentProfile struct {
	Student
	Profile
}

type FacultyProfile struct {
	Faculty
	Profile
}
