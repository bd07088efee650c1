package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	gperrors "github.com/gitpulse/gitpulse-mcp-server/pkg/errors"
	gh "github.com/gitpulse/gitpulse-mcp-server/pkg/github"
)

// apiRequest is the shared request body for every /api action. Actions
// read only the fields they understand.
type apiRequest struct {
	Repository string `json:"repository"`
	PerPage    int    `json:"per_page"`
	Since      string `json:"since"`
	State      string `json:"state"`
	Labels     string `json:"labels"`
	Status     string `json:"status"`
	Branch     string `json:"branch"`
}

// apiResponse is the REST envelope. Either Data or Error is set,
// matched by Success.
type apiResponse struct {
	Success   bool   `json:"success"`
	Status    int    `json:"status"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
}

var apiActions = []string{"commits", "prs", "issues", "releases", "repo-info", "workflow-runs"}

func (s *Server) writeAPIResponse(w http.ResponseWriter, action string, status int, data any, errMsg string) {
	s.writeJSON(w, status, apiResponse{
		Success:   errMsg == "",
		Status:    status,
		Data:      data,
		Error:     errMsg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Action:    action,
	})
}

func (s *Server) writeAPIError(w http.ResponseWriter, action string, err error) {
	status := http.StatusInternalServerError
	switch gperrors.KindOf(err) {
	case gperrors.KindInvalidInput:
		status = http.StatusBadRequest
	case gperrors.KindMissingCredential:
		status = http.StatusUnauthorized
	case gperrors.KindUpstreamFailure:
		// a missing repository is the caller's mistake, not a gateway fault
		if gperrors.UpstreamStatus(err) == http.StatusNotFound {
			status = http.StatusNotFound
		} else {
			status = http.StatusBadGateway
		}
	}
	s.writeAPIResponse(w, action, status, nil, err.Error())
}

// handleAPIAction serves POST /api/{action}. The REST surface reaches
// the same fetch layer as the MCP tools, so clamping and filtering
// behave identically on both.
func (s *Server) handleAPIAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	var req apiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeAPIResponse(w, action, http.StatusBadRequest, nil, "invalid request body: expected a JSON object")
		return
	}

	ref, err := gh.ParseRepository(req.Repository)
	if err != nil {
		s.writeAPIError(w, action, err)
		return
	}

	client, err := s.deps.GetClient(r.Context())
	if err != nil {
		s.writeAPIError(w, action, err)
		return
	}

	ctx := r.Context()
	var data any

	switch action {
	case "commits":
		opts := gh.CommitListOptions{PerPage: gh.ClampPerPage(req.PerPage, gh.DefaultPerPage)}
		if req.Since != "" {
			since, parseErr := time.Parse(time.RFC3339, req.Since)
			if parseErr != nil {
				s.writeAPIError(w, action, gperrors.NewInvalidInput("invalid since parameter: expected ISO 8601 timestamp, got %q", req.Since))
				return
			}
			opts.Since = since
		}
		data, err = gh.FetchCommits(ctx, client, ref, opts)

	case "prs":
		data, err = gh.FetchPullRequests(ctx, client, ref, gh.PullRequestListOptions{
			State:   req.State,
			PerPage: gh.ClampPerPage(req.PerPage, gh.DefaultPerPage),
		})

	case "issues":
		data, err = gh.FetchIssues(ctx, client, ref, gh.IssueListOptions{
			State:   req.State,
			Labels:  gh.ParseLabels(req.Labels),
			PerPage: gh.ClampPerPage(req.PerPage, gh.DefaultPerPage),
		})

	case "releases":
		data, err = gh.FetchReleases(ctx, client, ref, gh.ClampPerPage(req.PerPage, gh.DefaultReleasesPerPage))

	case "repo-info":
		data, err = gh.FetchRepositoryInfo(ctx, client, ref)

	case "workflow-runs":
		data, err = gh.FetchWorkflowRuns(ctx, client, ref, gh.WorkflowRunListOptions{
			Status:  req.Status,
			Branch:  req.Branch,
			PerPage: gh.ClampPerPage(req.PerPage, gh.DefaultPerPage),
		})

	default:
		s.writeAPIResponse(w, action, http.StatusNotFound, nil,
			"unknown action: "+action+" (valid actions: "+strings.Join(apiActions, ", ")+")")
		return
	}

	if err != nil {
		s.writeAPIError(w, action, err)
		return
	}
	s.writeAPIResponse(w, action, http.StatusOK, data, "")
}
