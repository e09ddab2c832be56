package tui

import (
	"github.com/buildnote/draftkeeper/internal/service"
	"github.com/buildnote/draftkeeper/models"
)

type sessionOpenedMsg struct {
	session service.DraftSession
	err     error
}

type serverLoadedMsg struct {
	set models.AnnotationSet
	err error
}

type resolveDoneMsg struct {
	choice models.RecoveryChoice
	err    error
}

type commitDoneMsg struct {
	session service.DraftSession
	result  models.SaveResult
}

type deleteDoneMsg struct {
	session service.DraftSession
	result  models.SaveResult
}

type statusErrMsg struct {
	err error
}

type copiedMsg struct{}

type clearStatusMsg struct{}

type autosaveErrMsg struct {
	err error
}
