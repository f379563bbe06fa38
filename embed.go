package sprintgoal

import "embed"

// ContentFS holds the markdown help shown on the admin page.
//
//go:embed content
var ContentFS embed.FS
