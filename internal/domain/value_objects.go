package domain

import (
	"fmt"
	"net/url"
	"strings"
)

type (
	// ReportEndpoint is a validated, normalized destination for fix reports.
	ReportEndpoint struct {
		value string
	}
)

// NewReportEndpoint parses and normalizes the destination URL. Only absolute
// http and https URLs are accepted.
func NewReportEndpoint(rawURL string) (*ReportEndpoint, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("endpoint URL cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	parsedURL.Scheme = strings.ToLower(parsedURL.Scheme)
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("endpoint scheme must be http or https, got %q", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return nil, fmt.Errorf("endpoint URL must include a host")
	}

	parsedURL.Host = strings.ToLower(parsedURL.Host)

	if (parsedURL.Scheme == "http" && strings.HasSuffix(parsedURL.Host, ":80")) ||
		(parsedURL.Scheme == "https" && strings.HasSuffix(parsedURL.Host, ":443")) {
		parsedURL.Host = parsedURL.Host[:strings.LastIndex(parsedURL.Host, ":")]
	}

	parsedURL.Fragment = ""

	return &ReportEndpoint{value: parsedURL.String()}, nil
}

func (e *ReportEndpoint) String() string {
	return e.value
}
