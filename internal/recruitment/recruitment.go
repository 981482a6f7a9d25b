package recruitment

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusUnhandled Status = "UNHANDLED"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
)

var Statuses = []Status{StatusUnhandled, StatusAccepted, StatusRejected}

func (s Status) Valid() bool {
	switch s {
	case StatusUnhandled, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// ParseStatus accepts any letter case.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown application status %q", value)
	}
	return status, nil
}

// ApplicationDetail is one applicant's application as seen by a recruiter.
// Version is the server's optimistic-lock counter.
type ApplicationDetail struct {
	PersonID       int64             `json:"personID"`
	Name           string            `json:"name"`
	Surname        string            `json:"surname"`
	Email          string            `json:"email"`
	Pnr            string            `json:"pnr"`
	Status         Status            `json:"status"`
	Version        int64             `json:"version"`
	Competences    []CompetenceEntry `json:"competences"`
	Availabilities []Availability    `json:"availabilities"`
}

type ApplicationSummary struct {
	PersonID int64  `json:"personID"`
	FullName string `json:"fullName"`
	Status   Status `json:"status"`
}

type CompetenceEntry struct {
	CompetenceID      int64   `json:"competenceId"`
	Name              string  `json:"name"`
	YearsOfExperience float64 `json:"yearsOfExperience"`
}

type Availability struct {
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
}

type statusUpdateRequest struct {
	Status  Status `json:"status"`
	Version int64  `json:"version"`
}

func (a *ApplicationDetail) FullName() string {
	return strings.TrimSpace(a.Name + " " + a.Surname)
}

// Clone returns a deep copy.
func (a *ApplicationDetail) Clone() *ApplicationDetail {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Competences != nil {
		clone.Competences = make([]CompetenceEntry, len(a.Competences))
		copy(clone.Competences, a.Competences)
	}
	if a.Availabilities != nil {
		clone.Availabilities = make([]Availability, len(a.Availabilities))
		copy(clone.Availabilities, a.Availabilities)
	}
	return &clone
}
