// Package report aggregates permission requests for dashboards and renders
// PDF/Excel exports. Visibility follows the same scoping as request lists:
// HR sees everything, a manager only the sector they head.
package report

import (
	"log/slog"
	"sort"

	"github.com/frahmantamala/permission-management/internal"
	"github.com/frahmantamala/permission-management/internal/auth"
	"github.com/frahmantamala/permission-management/internal/request"
)

type StatusBreakdown struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

type GroupCount struct {
	Name      string `json:"name"`
	Breakdown StatusBreakdown
}

// Summary is the dashboard payload: overall counts plus per-sector and
// per-type breakdowns.
type Summary struct {
	Overall  StatusBreakdown `json:"overall"`
	BySector []GroupCount    `json:"by_sector"`
	ByType   []GroupCount    `json:"by_type"`
}

// RequestSource is the slice of the request repository reporting needs.
type RequestSource interface {
	GetAll(filter request.ListFilter) ([]*request.PermissionRequest, error)
}

type Service struct {
	requests RequestSource
	logger   *slog.Logger
}

func NewService(requests RequestSource, logger *slog.Logger) *Service {
	return &Service{
		requests: requests,
		logger:   logger,
	}
}

// visibleRequests loads requests inside the actor's scope. Employees are
// limited to their own history.
func (s *Service) visibleRequests(actor *auth.Actor, requestedSectorID *int64) ([]*request.PermissionRequest, error) {
	scope, err := request.ListScope(actor, requestedSectorID)
	if err != nil {
		if err == request.ErrListForbidden {
			return s.requests.GetAll(request.ListFilter{UserID: &actor.UserID})
		}
		return nil, internal.ErrForbiddenRequest
	}
	return s.requests.GetAll(request.ListFilter{SectorID: scope})
}

// Summarize aggregates the actor's visible requests by status, sector and
// type.
func (s *Service) Summarize(actor *auth.Actor, requestedSectorID *int64) (*Summary, error) {
	reqs, err := s.visibleRequests(actor, requestedSectorID)
	if err != nil {
		s.logger.Error("failed to load requests for summary", "error", err)
		return nil, err
	}

	summary := &Summary{}
	bySector := make(map[string]*StatusBreakdown)
	byType := make(map[string]*StatusBreakdown)

	for _, req := range reqs {
		tally(&summary.Overall, req.Status)

		sectorName := req.SectorName
		if sectorName == "" {
			sectorName = "Sin sector"
		}
		tallyInto(bySector, sectorName, req.Status)

		typeName := req.TypeName
		if typeName == "" {
			typeName = "Sin tipo"
		}
		tallyInto(byType, typeName, req.Status)
	}

	summary.BySector = sortedGroups(bySector)
	summary.ByType = sortedGroups(byType)
	return summary, nil
}

func tally(b *StatusBreakdown, status request.Status) {
	b.Total++
	switch status {
	case request.StatusPending:
		b.Pending++
	case request.StatusApproved:
		b.Approved++
	case request.StatusRejected:
		b.Rejected++
	}
}

func tallyInto(groups map[string]*StatusBreakdown, key string, status request.Status) {
	b, ok := groups[key]
	if !ok {
		b = &StatusBreakdown{}
		groups[key] = b
	}
	tally(b, status)
}

func sortedGroups(groups map[string]*StatusBreakdown) []GroupCount {
	out := make([]GroupCount, 0, len(groups))
	for name, b := range groups {
		out = append(out, GroupCount{Name: name, Breakdown: *b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
