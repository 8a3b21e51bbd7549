package workflow

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	customDomainFileNameConstant     = "CNAME"
	customDomainNoticeTemplate       = "This repository publishes the custom domain %s (CNAME). Keep the CNAME file when merging."
	logMessageCustomDomainReadFailed = "unable to read CNAME file"
	logFieldPathConstant             = "path"
)

// announceCustomDomain prints an advisory when the repository root carries a CNAME file.
// The file is never created or modified.
func announceCustomDomain(environment *Environment) {
	if environment.FileReader == nil {
		return
	}
	path := filepath.Join(environment.Options.RepositoryRoot, customDomainFileNameConstant)
	contents, readError := environment.FileReader.ReadFile(path)
	if readError != nil {
		if !errors.Is(readError, fs.ErrNotExist) {
			environment.Logger.Debug(logMessageCustomDomainReadFailed, zap.String(logFieldPathConstant, path), zap.Error(readError))
		}
		return
	}
	domain := strings.TrimSpace(string(contents))
	if len(domain) == 0 {
		return
	}
	environment.Console.Info(customDomainNoticeTemplate, domain)
}
