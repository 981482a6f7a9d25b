package recruitmenttest

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

const recruitmentPrefix = "/api/recruitment"

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	switch {
	case path == "/auth/register" && method == fasthttp.MethodPost:
		s.register(ctx)
	case path == "/auth/register/recruiter" && method == fasthttp.MethodPost:
		s.registerRecruiter(ctx)
	case path == "/auth/login" && method == fasthttp.MethodPost:
		s.login(ctx)

	case path == recruitmentPrefix+"/migrated-user" && method == fasthttp.MethodPost:
		s.migratedUser(ctx)
	case path == recruitmentPrefix+"/competences" && method == fasthttp.MethodGet:
		s.requireAuth(s.listCompetences)(ctx)
	case path == recruitmentPrefix+"/profile" && method == fasthttp.MethodPut:
		s.requireAuth(s.updateProfile)(ctx)

	case path == recruitmentPrefix+"/applications":
		switch method {
		case fasthttp.MethodGet:
			s.requireRole(RoleRecruiter, fasthttp.StatusForbidden, s.listApplications)(ctx)
		case fasthttp.MethodPost:
			s.requireRole(RoleApplicant, fasthttp.StatusForbidden, s.createApplication)(ctx)
		default:
			ctx.Error("Method Not Allowed", fasthttp.StatusMethodNotAllowed)
		}
	case path == recruitmentPrefix+"/applications/me":
		switch method {
		case fasthttp.MethodGet:
			s.requireRole(RoleApplicant, fasthttp.StatusForbidden, s.getMyApplication)(ctx)
		case fasthttp.MethodPut:
			s.requireRole(RoleApplicant, fasthttp.StatusForbidden, s.replaceMyApplication)(ctx)
		default:
			ctx.Error("Method Not Allowed", fasthttp.StatusMethodNotAllowed)
		}
	case strings.HasPrefix(path, recruitmentPrefix+"/applications/"):
		parts := strings.Split(strings.TrimPrefix(path, recruitmentPrefix+"/"), "/")
		personID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			ctx.Error("Not Found", fasthttp.StatusNotFound)
			return
		}
		ctx.SetUserValue("personID", personID)

		switch {
		case len(parts) == 2 && method == fasthttp.MethodGet:
			// applicants get 404, not 403, for records they cannot see
			s.requireRole(RoleRecruiter, fasthttp.StatusNotFound, s.getApplication)(ctx)
		case len(parts) == 3 && parts[2] == "status" && method == fasthttp.MethodPut:
			s.requireRole(RoleRecruiter, fasthttp.StatusForbidden, s.updateStatus)(ctx)
		default:
			ctx.Error("Not Found", fasthttp.StatusNotFound)
		}

	default:
		ctx.Error("Not Found", fasthttp.StatusNotFound)
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, statusCode int, v any) {
	ctx.SetStatusCode(statusCode)
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		ctx.Error("Failed to encode response", fasthttp.StatusInternalServerError)
	}
}

func (s *Server) register(ctx *fasthttp.RequestCtx) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
		Pnr      string `json:"pnr"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Username == "" || req.Password == "" {
		ctx.Error("Invalid request body", fasthttp.StatusBadRequest)
		return
	}

	_, err := s.store.CreateUser(User{Username: req.Username, Password: req.Password, Email: req.Email, Pnr: req.Pnr, Role: RoleApplicant})
	if errors.Is(err, errUsernameTaken) {
		ctx.Error("Username already exists", fasthttp.StatusConflict)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusCreated)
	ctx.SetBodyString("User registered successfully")
}

func (s *Server) registerRecruiter(ctx *fasthttp.RequestCtx) {
	var req struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		SecretCode string `json:"secretCode"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Username == "" || req.Password == "" {
		ctx.Error("Invalid request body", fasthttp.StatusBadRequest)
		return
	}
	if req.SecretCode != RecruiterSecretCode {
		ctx.Error("Invalid secret code", fasthttp.StatusForbidden)
		return
	}

	_, err := s.store.CreateUser(User{Username: req.Username, Password: req.Password, Role: RoleRecruiter})
	if errors.Is(err, errUsernameTaken) {
		ctx.Error("Username already exists", fasthttp.StatusConflict)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusCreated)
	ctx.SetBodyString("Recruiter registered successfully")
}

func (s *Server) login(ctx *fasthttp.RequestCtx) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.Error("Invalid request body", fasthttp.StatusBadRequest)
		return
	}

	user, err := s.store.userByUsername(req.Username)
	if err != nil || user.Password != req.Password {
		ctx.Error("Invalid username or password", fasthttp.StatusUnauthorized)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{"token": s.IssueToken(user)})
}

func (s *Server) migratedUser(ctx *fasthttp.RequestCtx) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.Error("Invalid request body", fasthttp.StatusBadRequest)
		return
	}
	if !s.store.hasEmail(req.Email) {
		ctx.Error("Not Found", fasthttp.StatusNotFound)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
}

func (s *Server) listCompetences(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, s.store.Competences())
}

func (s *Server) updateProfile(ctx *fasthttp.RequestCtx) {
	var req struct {
		Email string `json:"email"`
		Pnr   string `json:"pnr"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || (req.Email == "" && req.Pnr == "") {
		ctx.Error("Nothing to update", fasthttp.StatusBadRequest)
		return
	}
	if err := s.store.updateProfile(currentUser(ctx).ID, req.Email, req.Pnr); err != nil {
		ctx.Error("Profile not found", fasthttp.StatusNotFound)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
}

func (s *Server) listApplications(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, s.store.summaries())
}

func (s *Server) getApplication(ctx *fasthttp.RequestCtx) {
	app, err := s.store.Application(ctx.UserValue("personID").(int64))
	if err != nil {
		ctx.Error("Application not found", fasthttp.StatusNotFound)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, app)
}

func (s *Server) updateStatus(ctx *fasthttp.RequestCtx) {
	var req struct {
		Status  string `json:"status"`
		Version *int64 `json:"version"`
	}
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Version == nil {
		ctx.Error("Invalid request body", fasthttp.StatusBadRequest)
		return
	}
	switch req.Status {
	case "UNHANDLED", "ACCEPTED", "REJECTED":
	default:
		ctx.Error("Invalid status: "+req.Status, fasthttp.StatusBadRequest)
		return
	}

	err := s.store.updateStatus(ctx.UserValue("personID").(int64), req.Status, *req.Version)
	switch {
	case errors.Is(err, errNotFound):
		ctx.Error("Application not found", fasthttp.StatusNotFound)
	case errors.Is(err, errVersionMismatch):
		ctx.Error("Application was modified by another recruiter", fasthttp.StatusConflict)
	default:
		ctx.SetStatusCode(fasthttp.StatusOK)
	}
}

func (s *Server) createApplication(ctx *fasthttp.RequestCtx) {
	s.saveApplication(ctx, true)
}

func (s *Server) replaceMyApplication(ctx *fasthttp.RequestCtx) {
	s.saveApplication(ctx, false)
}

func (s *Server) saveApplication(ctx *fasthttp.RequestCtx, create bool) {
	var form applicationForm
	if err := json.Unmarshal(ctx.PostBody(), &form); err != nil || form.Name == "" || form.Surname == "" {
		ctx.Error("Invalid application", fasthttp.StatusBadRequest)
		return
	}

	err := s.store.saveApplication(currentUser(ctx), form, create)
	if errors.Is(err, errAlreadyApplied) {
		ctx.Error("Application already submitted", fasthttp.StatusConflict)
		return
	}
	if create {
		ctx.SetStatusCode(fasthttp.StatusCreated)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
}

func (s *Server) getMyApplication(ctx *fasthttp.RequestCtx) {
	app, err := s.store.Application(currentUser(ctx).ID)
	if err != nil {
		ctx.Error("Application not found", fasthttp.StatusNotFound)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, app)
}
