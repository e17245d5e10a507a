package classify

import (
	"net"
	"net/url"
	"strings"

	"github.com/ppiankov/ladder/internal/model"
	"github.com/ppiankov/ladder/internal/risk"
)

// ClassifyDomain decides what kind of target the action touches.
// First match wins: critical paths, privilege and devices are system;
// any path outside the workspace is system, even for network actions;
// network actions are graded by their least trusted host; everything else
// is workspace.
func ClassifyDomain(p *model.ActionProfile, caps model.Capabilities) model.Domain {
	var (
		home    string
		extra   []string
		trusted []string
		ws      model.WorkspaceContext
	)
	if caps != nil {
		home = caps.HomeDir()
		extra = caps.CriticalPaths()
		trusted = caps.TrustedDomains()
		ws = caps.Workspace()
	}

	if _, _, hit := risk.CheckCriticalPaths(p.TouchedPaths, home, extra); hit {
		return model.DomainSystem
	}
	if usesPrivilege(p) || p.HasOperation(model.OpDevice) {
		return model.DomainSystem
	}
	for _, path := range p.TouchedPaths {
		if ws == nil || !ws.IsPathWithinWorkspace(path) {
			return model.DomainSystem
		}
	}
	if p.HasOperation(model.OpNetwork) {
		return networkDomain(p.URLs, trusted)
	}
	return model.DomainWorkspace
}

// networkDomain grades every URL and returns the least trusted result.
// No parseable URL means untrusted.
func networkDomain(urls []string, trusted []string) model.Domain {
	if len(urls) == 0 {
		return model.DomainUntrusted
	}
	worst := model.DomainLocalhost
	for _, raw := range urls {
		switch hostDomain(raw, trusted) {
		case model.DomainUntrusted:
			return model.DomainUntrusted
		case model.DomainTrusted:
			worst = model.DomainTrusted
		}
	}
	return worst
}

func hostDomain(raw string, trusted []string) model.Domain {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return model.DomainUntrusted
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return model.DomainUntrusted
	}
	if IsLocalhost(host) {
		return model.DomainLocalhost
	}
	if IsTrustedHost(host, trusted) {
		return model.DomainTrusted
	}
	return model.DomainUntrusted
}

// IsLocalhost reports whether host names the local machine.
func IsLocalhost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}

// IsTrustedHost reports whether host equals or is a subdomain of a trusted
// domain. Entries may be written as "example.com", ".example.com" or
// "*.example.com".
func IsTrustedHost(host string, trusted []string) bool {
	for _, d := range trusted {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(d, "*")
		d = strings.TrimPrefix(d, ".")
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
