package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

const maxIDLength = 256

// ValidateHostURI checks that uri points at the organization the widget
// serves. Navigation targets are built from it, so foreign hosts are rejected.
func ValidateHostURI(uri, orgURL string) error {
	if uri == "" {
		return errors.New("host uri is required")
	}

	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return errors.New("host uri must be an absolute url")
	}

	if u.Scheme != "https" && !(u.Scheme == "http" && u.Hostname() == "localhost") {
		return errors.New("host uri must use https")
	}

	if !strings.HasSuffix(u.Path, "/") {
		return errors.New("host uri must end with a slash")
	}

	if !allowedHost(u.Hostname(), orgURL) {
		return fmt.Errorf("host %q is not allowed", u.Hostname())
	}

	return nil
}

func allowedHost(host, orgURL string) bool {
	if host == "dev.azure.com" || strings.HasSuffix(host, ".visualstudio.com") {
		return true
	}
	org, err := url.Parse(orgURL)
	return err == nil && org.Hostname() != "" && strings.EqualFold(org.Hostname(), host)
}

// ValidateID validates a host identifier such as a project or team id
func ValidateID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}

	if len(value) > maxIDLength {
		return fmt.Errorf("%s is too long (max %d characters)", field, maxIDLength)
	}

	if strings.IndexFunc(value, unicode.IsControl) >= 0 {
		return fmt.Errorf("%s contains invalid characters", field)
	}

	return nil
}
