package domain

type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type TeamMember struct {
	TeamID    int64 `json:"team_id"`
	StudentID int64 `json:"student_id"`
	IsLeader  bool  `json:"is_leader"`
}

// TeamRequest is a pending invitation; the row existing means
// "invited, undecided".
type TeamRequest struct {
	TeamID    int64 `json:"team_id"`
	StudentID int64 `json:"student_id"`
}

// TeamMemberProfile is a member's student profile annotated with the
// leadership flag, as returned by the member roster.
type TeamMemberProfile struct {
	StudentProfile
	IsLeader bool `json:"is_leader"`
}

// MaxTeamInvites bounds the invitee list accepted at team creation.
const MaxTeamInvites = 3
