package recruitment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

type StatusFilter string

const FilterAll StatusFilter = "ALL"

func ParseStatusFilter(value string) (StatusFilter, error) {
	if value == "" || strings.EqualFold(value, string(FilterAll)) {
		return FilterAll, nil
	}
	status, err := ParseStatus(value)
	if err != nil {
		return "", fmt.Errorf("invalid status filter: %w", err)
	}
	return StatusFilter(status), nil
}

func (f StatusFilter) matches(status Status) bool {
	return f == FilterAll || f == "" || Status(f) == status
}

type ListState struct {
	// Applications holds the summaries passing the current filters.
	Applications []ApplicationSummary `json:"applications"`
	// TotalCount is the number of applications before filtering.
	TotalCount   int          `json:"totalCount"`
	Loading      bool         `json:"loading"`
	Error        string       `json:"error,omitempty"`
	StatusFilter StatusFilter `json:"statusFilter"`
	NameSearch   string       `json:"nameSearch,omitempty"`
}

// ListPresenter backs the recruiter's application overview.
type ListPresenter struct {
	lister Lister

	mu         sync.Mutex
	generation uint64
	all        []ApplicationSummary
	loading    bool
	err        string
	filter     StatusFilter
	search     string
}

func NewListPresenter(lister Lister) *ListPresenter {
	return &ListPresenter{lister: lister, filter: FilterAll}
}

// Load fetches all summaries, replacing the previous list. A Load started
// later wins over one still in flight.
func (p *ListPresenter) Load(ctx context.Context) error {
	p.mu.Lock()
	p.generation++
	generation := p.generation
	p.loading = true
	p.err = ""
	p.mu.Unlock()

	summaries, err := p.lister.ListApplications(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if generation != p.generation {
		return ErrSuperseded
	}

	p.loading = false
	if err != nil {
		log.Error().Err(err).Msg("Failed to load applications")
		p.err = err.Error()
		return err
	}
	p.all = summaries
	return nil
}

func (p *ListPresenter) Refetch(ctx context.Context) error {
	return p.Load(ctx)
}

func (p *ListPresenter) SetStatusFilter(filter StatusFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = filter
}

func (p *ListPresenter) SetNameSearch(search string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.search = strings.TrimSpace(search)
}

func (p *ListPresenter) State() ListState {
	p.mu.Lock()
	defer p.mu.Unlock()

	search := strings.ToLower(p.search)
	filtered := make([]ApplicationSummary, 0, len(p.all))
	for _, summary := range p.all {
		if !p.filter.matches(summary.Status) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(summary.FullName), search) {
			continue
		}
		filtered = append(filtered, summary)
	}

	return ListState{
		Applications: filtered,
		TotalCount:   len(p.all),
		Loading:      p.loading,
		Error:        p.err,
		StatusFilter: p.filter,
		NameSearch:   p.search,
	}
}
