package recruitmenttest

import (
	"errors"
	"sort"
	"sync"
)

const (
	RoleRecruiter = 1
	RoleApplicant = 2
)

var (
	errNotFound        = errors.New("not found")
	errUsernameTaken   = errors.New("username already exists")
	errVersionMismatch = errors.New("version mismatch")
	errAlreadyApplied  = errors.New("application already exists")
)

type User struct {
	ID       int64
	Username string
	Password string
	Email    string
	Pnr      string
	Role     int
}

type Application struct {
	PersonID       int64             `json:"personID"`
	Name           string            `json:"name"`
	Surname        string            `json:"surname"`
	Email          string            `json:"email"`
	Pnr            string            `json:"pnr"`
	Status         string            `json:"status"`
	Version        int64             `json:"version"`
	Competences    []CompetenceEntry `json:"competences"`
	Availabilities []Availability    `json:"availabilities"`
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

type Competence struct {
	CompetenceID int64  `json:"competenceId"`
	Name         string `json:"name"`
}

type summary struct {
	PersonID int64  `json:"personID"`
	FullName string `json:"fullName"`
	Status   string `json:"status"`
}

type applicationForm struct {
	Name           string            `json:"name"`
	Surname        string            `json:"surname"`
	Competences    []CompetenceEntry `json:"competences"`
	Availabilities []Availability    `json:"availabilities"`
}

// Store is the in-memory state behind the fake API. Every write to an
// application increments its version.
type Store struct {
	mu           sync.Mutex
	nextUserID   int64
	users        map[int64]*User
	applications map[int64]*Application
	competences  []Competence
}

func NewStore() *Store {
	return &Store{
		nextUserID:   1,
		users:        make(map[int64]*User),
		applications: make(map[int64]*Application),
		competences: []Competence{
			{CompetenceID: 1, Name: "ticket sales"},
			{CompetenceID: 2, Name: "lotteries"},
			{CompetenceID: 3, Name: "roller coaster operation"},
		},
	}
}

func (s *Store) CreateUser(user User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return nil, errUsernameTaken
		}
	}
	user.ID = s.nextUserID
	s.nextUserID++
	s.users[user.ID] = &user
	created := user
	return &created, nil
}

func (s *Store) userByUsername(username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			found := *user
			return &found, nil
		}
	}
	return nil, errNotFound
}

func (s *Store) hasEmail(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) updateProfile(userID int64, email, pnr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return errNotFound
	}
	if email != "" {
		user.Email = email
	}
	if pnr != "" {
		user.Pnr = pnr
	}
	if app, ok := s.applications[userID]; ok {
		app.Email = user.Email
		app.Pnr = user.Pnr
		app.Version++
	}
	return nil
}

// PutApplication stores app as given, including its version.
func (s *Store) PutApplication(app Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[app.PersonID] = cloneApplication(&app)
}

func (s *Store) Application(personID int64) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, exists := s.applications[personID]
	if !exists {
		return nil, errNotFound
	}
	return cloneApplication(app), nil
}

// SetStatus changes the status the way another recruiter would, bumping the
// version.
func (s *Store) SetStatus(personID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, exists := s.applications[personID]
	if !exists {
		return errNotFound
	}
	app.Status = status
	app.Version++
	return nil
}

func (s *Store) updateStatus(personID int64, status string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, exists := s.applications[personID]
	if !exists {
		return errNotFound
	}
	if app.Version != version {
		return errVersionMismatch
	}
	app.Status = status
	app.Version++
	return nil
}

func (s *Store) summaries() []summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]summary, 0, len(s.applications))
	for _, app := range s.applications {
		result = append(result, summary{
			PersonID: app.PersonID,
			FullName: app.Name + " " + app.Surname,
			Status:   app.Status,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PersonID < result[j].PersonID
	})
	return result
}

func (s *Store) saveApplication(user *User, form applicationForm, create bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.applications[user.ID]
	if create && exists {
		return errAlreadyApplied
	}

	competences := make([]CompetenceEntry, len(form.Competences))
	for i, entry := range form.Competences {
		entry.Name = s.competenceNameLocked(entry.CompetenceID)
		competences[i] = entry
	}

	app := &Application{
		PersonID:       user.ID,
		Name:           form.Name,
		Surname:        form.Surname,
		Email:          user.Email,
		Pnr:            user.Pnr,
		Status:         "UNHANDLED",
		Competences:    competences,
		Availabilities: append([]Availability(nil), form.Availabilities...),
	}
	if exists {
		app.Version = existing.Version + 1
	}
	s.applications[user.ID] = app
	return nil
}

func (s *Store) competenceNameLocked(id int64) string {
	for _, competence := range s.competences {
		if competence.CompetenceID == id {
			return competence.Name
		}
	}
	return ""
}

func (s *Store) Competences() []Competence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Competence(nil), s.competences...)
}

func cloneApplication(app *Application) *Application {
	clone := *app
	clone.Competences = append([]CompetenceEntry(nil), app.Competences...)
	clone.Availabilities = append([]Availability(nil), app.Availabilities...)
	return &clone
}
