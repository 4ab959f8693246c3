package engine

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	syncerrors "vaultsync.dev/vaultsync/internal/errors"
)

// AuthMethod is the transport a remote URL authenticates with
type AuthMethod int

const (
	AuthUnspecified AuthMethod = iota
	AuthSSH
	AuthHTTPS
)

func (m AuthMethod) String() string {
	switch m {
	case AuthSSH:
		return "ssh"
	case AuthHTTPS:
		return "https"
	default:
		return "unspecified"
	}
}

// ParseAuthMethod parses "ssh", "https" or an empty string
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "unspecified":
		return AuthUnspecified, nil
	case "ssh":
		return AuthSSH, nil
	case "https", "http":
		return AuthHTTPS, nil
	default:
		return AuthUnspecified, fmt.Errorf("unknown auth method %q: expected ssh or https", s)
	}
}

// scp-like syntax: [user@]host:path, where host has no slash
var scpURL = regexp.MustCompile(`^(?:([^@/:]+)@)?([^@/:]+):(.+)$`)

// RemoteURL is a parsed SSH or HTTPS remote location
type RemoteURL struct {
	// Scheme is "ssh", "https", "http", or empty for scp-like SSH syntax
	Scheme string
	// User is the SSH login, or the credential part of an HTTPS URL
	User string
	Host string
	Port string
	// Path is the repository path without a leading slash
	Path string
}

// ParseRemoteURL recognizes git@host:owner/repo.git, ssh://git@host/owner/repo.git
// and https://[credentials@]host/owner/repo.git.
func ParseRemoteURL(raw string) (RemoteURL, error) {
	raw = strings.TrimSpace(raw)
	invalid := syncerrors.NewInvalidRemoteURLError(raw)

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return RemoteURL{}, invalid
		}
		scheme := strings.ToLower(u.Scheme)
		switch scheme {
		case "ssh", "git+ssh", "https", "http":
		default:
			return RemoteURL{}, invalid
		}
		path := strings.TrimPrefix(u.Path, "/")
		if u.Hostname() == "" || path == "" {
			return RemoteURL{}, invalid
		}
		if scheme == "git+ssh" {
			scheme = "ssh"
		}
		return RemoteURL{
			Scheme: scheme,
			User:   userinfo(u.User),
			Host:   u.Hostname(),
			Port:   u.Port(),
			Path:   path,
		}, nil
	}

	m := scpURL.FindStringSubmatch(raw)
	if m == nil || m[2] == "" || strings.HasPrefix(m[3], "//") {
		return RemoteURL{}, invalid
	}
	return RemoteURL{
		User: m[1],
		Host: m[2],
		Path: strings.TrimPrefix(m[3], "/"),
	}, nil
}

func userinfo(u *url.Userinfo) string {
	if u == nil {
		return ""
	}
	return u.String()
}

// Method returns the auth method implied by the URL form
func (r RemoteURL) Method() AuthMethod {
	switch r.Scheme {
	case "https", "http":
		return AuthHTTPS
	default:
		return AuthSSH
	}
}

// As converts the URL to the requested form, keeping host and path.
// Credentials and ports belong to one transport and are dropped on conversion.
func (r RemoteURL) As(method AuthMethod) RemoteURL {
	if method == AuthUnspecified || method == r.Method() {
		return r
	}
	if method == AuthHTTPS {
		return RemoteURL{Scheme: "https", Host: r.Host, Path: r.Path}
	}
	return RemoteURL{User: "git", Host: r.Host, Path: r.Path}
}

func (r RemoteURL) String() string {
	if r.Scheme == "" {
		if r.User != "" {
			return fmt.Sprintf("%s@%s:%s", r.User, r.Host, r.Path)
		}
		return fmt.Sprintf("%s:%s", r.Host, r.Path)
	}

	var b strings.Builder
	b.WriteString(r.Scheme)
	b.WriteString("://")
	if r.User != "" {
		b.WriteString(r.User)
		b.WriteString("@")
	}
	b.WriteString(r.Host)
	if r.Port != "" {
		b.WriteString(":")
		b.WriteString(r.Port)
	}
	b.WriteString("/")
	b.WriteString(r.Path)
	return b.String()
}

// key is the comparison form: transport, login, lower-cased host and the
// path without a trailing slash or .git suffix.
func (r RemoteURL) key() string {
	path := strings.TrimSuffix(strings.TrimSuffix(r.Path, "/"), ".git")
	return strings.Join([]string{r.Method().String(), r.User, strings.ToLower(r.Host), r.Port, path}, "|")
}

// ConvertRemoteURL rewrites raw into the requested auth method's form
func ConvertRemoteURL(raw string, method AuthMethod) (string, error) {
	parsed, err := ParseRemoteURL(raw)
	if err != nil {
		return "", err
	}
	return parsed.As(method).String(), nil
}

// SameRemoteURL reports whether two URLs point at the same repository over
// the same transport, ignoring a trailing ".git" or slash.
func SameRemoteURL(a, b string) bool {
	pa, errA := ParseRemoteURL(a)
	pb, errB := ParseRemoteURL(b)
	if errA != nil || errB != nil {
		return strings.TrimSuffix(strings.TrimSpace(a), ".git") == strings.TrimSuffix(strings.TrimSpace(b), ".git")
	}
	return pa.key() == pb.key()
}
