package gitrepo

import (
	"fmt"
	"strings"
)

const (
	compareLinkTemplateConstant = "https://%s/%s/%s/compare/%s...%s?expand=1"
	defaultBaseBranchConstant   = "main"
)

// LinkDeriver builds pull-request compare links against a base branch.
type LinkDeriver struct {
	BaseBranch string
}

// NewLinkDeriver constructs a LinkDeriver. An empty base branch defaults to main.
func NewLinkDeriver(baseBranch string) LinkDeriver {
	if len(strings.TrimSpace(baseBranch)) == 0 {
		baseBranch = defaultBaseBranchConstant
	}
	return LinkDeriver{BaseBranch: baseBranch}
}

// CompareURL derives the compare link for a branch pushed to an HTTPS remote.
// Other remote forms return an error and no link.
func (deriver LinkDeriver) CompareURL(remoteURL string, branchName string) (string, error) {
	remote, parseError := ParseRemoteURL(remoteURL)
	if parseError != nil {
		return "", parseError
	}
	if remote.Protocol != RemoteProtocolHTTPS {
		return "", UnsupportedProtocolError{Protocol: remote.Protocol}
	}
	return fmt.Sprintf(compareLinkTemplateConstant, remote.Host, remote.Owner, remote.Repository, deriver.BaseBranch, branchName), nil
}
