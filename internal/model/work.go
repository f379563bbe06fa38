package model

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	TimeframeCurrent = "current"
	TimeframeAll     = ""
)

type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Iteration struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	FinishDate *time.Time `json:"finishDate,omitempty"`
	TimeFrame  string     `json:"timeFrame,omitempty"`
}

// TeamContext scopes iteration lookups.
type TeamContext struct {
	ProjectID string
	TeamID    string
}

// WebContext is the host context of a single request. It is built by
// middleware and passed explicitly into every service call.
type WebContext struct {
	HostURI     string
	Project     Project
	Team        Team
	IterationID string // Set when the host renders the tab for a specific iteration
	ExtensionID string
	UserID      string
	Foreground  bool
}

func (wc *WebContext) TeamContext() TeamContext {
	return TeamContext{
		ProjectID: wc.Project.ID,
		TeamID:    wc.Team.ID,
	}
}

// EnvSuffix returns "-dev" or "-acc" for non-production extension ids.
func (wc *WebContext) EnvSuffix() string {
	env := ""
	if strings.Contains(wc.ExtensionID, "-dev") {
		env = "-dev"
	}
	if strings.Contains(wc.ExtensionID, "-acc") {
		env = "-acc"
	}
	return env
}

// Query encodes the host context the way the host passes it to the widget,
// so follow-up requests carry the same context.
func (wc *WebContext) Query() url.Values {
	q := url.Values{}
	q.Set("hostUri", wc.HostURI)
	q.Set("projectId", wc.Project.ID)
	q.Set("projectName", wc.Project.Name)
	if wc.Team.ID != "" {
		q.Set("teamId", wc.Team.ID)
		q.Set("teamName", wc.Team.Name)
	}
	if wc.IterationID != "" {
		q.Set("iterationId", wc.IterationID)
	}
	q.Set("foreground", strconv.FormatBool(wc.Foreground))
	return q
}
