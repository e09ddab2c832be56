// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Buildnote

package tui

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/mock/gomock"

	"github.com/buildnote/draftkeeper/internal/logger"
	"github.com/buildnote/draftkeeper/internal/mock"
	"github.com/buildnote/draftkeeper/internal/service"
	"github.com/buildnote/draftkeeper/internal/store"
	"github.com/buildnote/draftkeeper/models"
)

func newTestApp(t *testing.T, ctrl *gomock.Controller, project string) (appModel, *mock.MockDraftRepository, *mock.MockServerAdapter) {
	t.Helper()
	drafts := mock.NewMockDraftRepository(ctrl)
	server := mock.NewMockServerAdapter(ctrl)

	services := service.NewClientServices(
		&store.ClientStorages{DraftRepository: drafts},
		server,
		logger.Nop(),
		nil,
	)
	return newAppModel(context.Background(), services, project), drafts, server
}

func update(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(appModel)
	require.True(t, ok)
	return next, cmd
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestAppModel_OpenRequiresResourceID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m, _, _ := newTestApp(t, ctrl, "")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Equal(t, screenOpen, m.currentScreen)
	assert.Equal(t, "リソースIDを入力してください", m.errMsg)
}

func TestAppModel_SessionWithDraftShowsRecovery_RestoreLoadsDraft(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m, _, _ := newTestApp(t, ctrl, "project/42")

	payload := json.RawMessage(`{"objects": [{"kind": "arrow"}]}`)
	session := service.DraftSession{
		ResourceID:  "project/42/photo/7",
		Draft:       &models.Draft{ResourceID: "project/42/photo/7", Payload: payload, ObjectCount: 1},
		ServerKnown: true,
		Decision: models.RecoveryDecision{
			HasDraft:    true,
			ServerKnown: true,
			LocalNewer:  true,
		},
	}

	m, cmd := update(t, m, sessionOpenedMsg{session: session})
	assert.Nil(t, cmd)
	assert.Equal(t, screenEditor, m.currentScreen)
	require.True(t, m.recovery.visible())

	// restore resolves the prompt without touching storage
	m, cmd = update(t, m, keyRune('r'))
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.False(t, m.recovery.visible())
	assert.Equal(t, string(payload), m.editor.textarea.Value())
	assert.Equal(t, "下書きを復元しました", m.status)
}

func TestAppModel_DiscardClearsDraft(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m, drafts, _ := newTestApp(t, ctrl, "project/42")

	session := service.DraftSession{
		ResourceID:  "project/42/photo/7",
		Draft:       &models.Draft{ResourceID: "project/42/photo/7", Payload: json.RawMessage(`{}`)},
		ServerKnown: true,
		Decision:    models.RecoveryDecision{HasDraft: true, ServerKnown: true, LocalNewer: true},
	}
	m, _ = update(t, m, sessionOpenedMsg{session: session})
	require.True(t, m.recovery.visible())

	drafts.EXPECT().Clear(gomock.Any(), "project/42/photo/7").Return(nil)

	m, cmd := update(t, m, keyRune('d'))
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.False(t, m.recovery.visible())
	assert.Nil(t, m.session.Draft)
	assert.Equal(t, "下書きを破棄しました", m.status)
}

func TestAppModel_DismissKeepsDraftAndSeedsFromServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m, _, server := newTestApp(t, ctrl, "project/42")

	serverAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	serverPayload := json.RawMessage(`{"objects": [{"kind": "line"}, {"kind": "text"}]}`)
	session := service.DraftSession{
		ResourceID:    "project/42/photo/7",
		Draft:         &models.Draft{ResourceID: "project/42/photo/7", Payload: json.RawMessage(`{}`)},
		Server:        &models.Snapshot{ResourceID: "project/42/photo/7", ObjectCount: 2, UpdatedAt: serverAt},
		ServerKnown:   true,
		BaseUpdatedAt: &serverAt,
		Decision:      models.RecoveryDecision{HasDraft: true, ServerKnown: true, ServerConflict: true},
	}
	m, _ = update(t, m, sessionOpenedMsg{session: session})
	require.True(t, m.recovery.visible())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	server.EXPECT().Load(gomock.Any(), "project/42/photo/7").Return(models.AnnotationSet{
		ResourceID:  "project/42/photo/7",
		Payload:     serverPayload,
		ObjectCount: 2,
		UpdatedAt:   serverAt,
	}, nil)

	m, cmd = update(t, m, cmd())
	assert.False(t, m.recovery.visible())
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Equal(t, string(serverPayload), m.editor.textarea.Value())
	// the draft stays recoverable for the next session
	assert.NotNil(t, m.session.Draft)
}

func TestAppModel_CommitConflictReentersRecovery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m, drafts, server := newTestApp(t, ctrl, "project/42")

	session := service.DraftSession{
		ResourceID:  "project/42/photo/7",
		ServerKnown: true,
		Decision:    models.RecoveryDecision{HasDraft: false, ServerKnown: true, LocalNewer: true},
	}
	m, _ = update(t, m, sessionOpenedMsg{session: session})
	require.Equal(t, screenEditor, m.currentScreen)

	m.editor.setPayload([]byte(`{"objects": [{"kind": "arrow"}]}`))

	winnerAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	winner := models.Snapshot{ResourceID: "project/42/photo/7", ObjectCount: 4, UpdatedAt: winnerAt}
	server.EXPECT().Save(gomock.Any(), gomock.Any()).Return(models.SaveConflictResult(winner))
	drafts.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.True(t, m.editor.committing)

	m, _ = update(t, m, cmd())
	assert.False(t, m.editor.committing)
	require.True(t, m.recovery.visible())
	assert.True(t, m.recovery.decision.HasDraft)
	require.NotNil(t, m.session.Draft)
	require.NotNil(t, m.session.BaseUpdatedAt)
	assert.True(t, m.session.BaseUpdatedAt.Equal(winnerAt), "the rejected commit adopts the server's token")
}

func TestAppModel_CommitOKShowsStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m, drafts, server := newTestApp(t, ctrl, "project/42")

	session := service.DraftSession{
		ResourceID:  "project/42/photo/7",
		ServerKnown: true,
		Decision:    models.RecoveryDecision{ServerKnown: true, LocalNewer: true},
	}
	m, _ = update(t, m, sessionOpenedMsg{session: session})

	newAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	snap := models.Snapshot{ResourceID: "project/42/photo/7", ObjectCount: 1, UpdatedAt: newAt}
	server.EXPECT().Save(gomock.Any(), gomock.Any()).Return(models.SaveOKResult(snap))
	drafts.EXPECT().Clear(gomock.Any(), "project/42/photo/7").Return(nil)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Equal(t, "保存しました", m.status)
	require.NotNil(t, m.session.BaseUpdatedAt)
	assert.True(t, m.session.BaseUpdatedAt.Equal(newAt))
}

func TestAppModel_AutosaveFailureDegradesStatusLine(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	m, _, _ := newTestApp(t, ctrl, "")

	m, _ = update(t, m, autosaveErrMsg{err: assert.AnError})

	assert.Contains(t, m.warn, "自動保存に失敗しました")
	assert.Equal(t, assert.AnError.Error(), m.errMsg)
}
