// Package wpaddiscovery derives candidate PAC-script URLs from a
// WPADInfo record. It does no I/O itself - that is the PAC fetcher's
// job (internal/adapter/fetcher).
package wpaddiscovery

import (
	"fmt"

	"pacproxy/internal/core/domain"
)

// CandidateURLs returns the ordered list of URLs worth trying for a
// PAC script. An explicit DHCP wpad option always wins outright;
// otherwise one "http://wpad.<domain>/wpad.dat" candidate is emitted
// per search domain, in order. An empty result is legal - it leaves
// the resolver to fall back to Static(Direct).
func CandidateURLs(info domain.WPADInfo) []string {
	if info.WPADOption != nil {
		return []string{*info.WPADOption}
	}

	urls := make([]string, 0, len(info.Domains))
	for _, d := range info.Domains {
		urls = append(urls, fmt.Sprintf("http://wpad.%s/wpad.dat", d))
	}
	return urls
}
