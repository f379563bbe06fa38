package model

// HelpPage is a section of the admin page help.
type HelpPage struct {
	Title       string
	Slug        string
	Order       int
	HTMLContent string
}
