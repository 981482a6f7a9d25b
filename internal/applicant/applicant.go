package applicant

import "errors"

type Competence struct {
	CompetenceID int64  `json:"competenceId"`
	Name         string `json:"name"`
}

type CompetenceProfile struct {
	CompetenceID      int64   `json:"competenceId" validate:"required,gt=0"`
	YearsOfExperience float64 `json:"yearsOfExperience" validate:"gte=0,lte=80"`
	Name              string  `json:"name,omitempty"`
}

type Availability struct {
	FromDate string `json:"fromDate" validate:"required,datetime=2006-01-02"`
	ToDate   string `json:"toDate" validate:"required,datetime=2006-01-02,availability_after=FromDate"`
}

// ApplicationForm is what an applicant submits. Saving replaces every
// competence and availability the server holds.
type ApplicationForm struct {
	Name           string              `json:"name" validate:"required,personname"`
	Surname        string              `json:"surname" validate:"required,personname"`
	Competences    []CompetenceProfile `json:"competences" validate:"required,min=1,dive"`
	Availabilities []Availability      `json:"availabilities" validate:"required,min=1,dive"`
}

// Application is the applicant's own application as stored by the server.
type Application struct {
	PersonID       int64               `json:"personID"`
	Name           string              `json:"name"`
	Surname        string              `json:"surname"`
	Email          string              `json:"email"`
	Pnr            string              `json:"pnr"`
	Status         string              `json:"status"`
	Version        int64               `json:"version"`
	Competences    []CompetenceProfile `json:"competences"`
	Availabilities []Availability      `json:"availabilities"`
}

// Form converts a stored application back into an editable form.
func (a *Application) Form() ApplicationForm {
	return ApplicationForm{
		Name:           a.Name,
		Surname:        a.Surname,
		Competences:    append([]CompetenceProfile(nil), a.Competences...),
		Availabilities: append([]Availability(nil), a.Availabilities...),
	}
}

var ErrApplicationNotFound = errors.New("APPLICATION_NOT_FOUND")

// RequestError carries the server's text, or a default message when the
// server sent none.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}
