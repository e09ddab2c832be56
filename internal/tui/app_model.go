package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/buildnote/draftkeeper/internal/adapter"
	"github.com/buildnote/draftkeeper/internal/service"
	"github.com/buildnote/draftkeeper/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type screen int

const (
	screenOpen screen = iota
	screenLoading
	screenEditor
)

const warnServerUnknown = "サーバーの状態を確認できません。保存結果は不明として扱われます"

type appModel struct {
	ctx      context.Context
	services *service.ClientServices

	currentScreen screen
	resourceInput textinput.Model
	spinner       spinner.Model

	session service.DraftSession
	editor  editorModel

	recovery    recoveryModel
	showConfirm bool
	confirm     confirmModel

	status string
	errMsg string
	warn   string
}

func newAppModel(ctx context.Context, services *service.ClientServices, project string) appModel {
	ti := textinput.New()
	ti.Placeholder = "project/42/photo/7"
	ti.Width = 48
	if project != "" {
		ti.SetValue(project + "/")
	}
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return appModel{
		ctx:           ctx,
		services:      services,
		currentScreen: screenOpen,
		resourceInput: ti,
		spinner:       sp,
		editor:        newEditorModel(),
	}
}

func (m appModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, keys.quit) {
			return m, tea.Quit
		}
		if m.recovery.visible() {
			return m.updateRecovery(keyMsg)
		}
		if m.showConfirm {
			return m.updateConfirm(keyMsg)
		}
	}

	switch msg := msg.(type) {
	case sessionOpenedMsg:
		return m.onSessionOpened(msg)
	case serverLoadedMsg:
		return m.onServerLoaded(msg)
	case resolveDoneMsg:
		return m.onResolveDone(msg)
	case commitDoneMsg:
		return m.onCommitDone(msg)
	case deleteDoneMsg:
		return m.onDeleteDone(msg)
	case statusErrMsg:
		m.errMsg = msg.err.Error()
		return m, nil
	case copiedMsg:
		m.status = "コピーしました"
		return m, cmdClearStatus()
	case clearStatusMsg:
		m.status = ""
		return m, nil
	case autosaveErrMsg:
		m.warn = "自動保存に失敗しました。編集はメモリ上でのみ継続しています"
		m.errMsg = msg.err.Error()
		return m, nil
	case spinner.TickMsg:
		if m.currentScreen == screenLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		return m, nil
	}

	switch m.currentScreen {
	case screenOpen:
		return m.updateOpen(msg)
	case screenEditor:
		return m.updateEditor(msg)
	}

	return m, nil
}

func (m appModel) onSessionOpened(msg sessionOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.currentScreen = screenOpen
		m.errMsg = msg.err.Error()
		return m, nil
	}

	m.session = msg.session
	m.currentScreen = screenEditor
	m.status = ""
	m.errMsg = ""
	m.warn = ""
	if !m.session.ServerKnown {
		m.warn = warnServerUnknown
	}

	if m.session.Decision.HasDraft {
		m.recovery.show(m.session.Decision)
		return m, nil
	}

	return m, m.seedFromServer()
}

func (m appModel) onServerLoaded(msg serverLoadedMsg) (tea.Model, tea.Cmd) {
	// the user may have left the editor while the load was in flight
	if m.currentScreen != screenEditor {
		return m, nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, adapter.ErrNotFound) {
			m.editor.setPayload(nil)
			return m, nil
		}
		m.errMsg = msg.err.Error()
		m.warn = warnServerUnknown
		return m, nil
	}

	m.editor.setPayload(msg.set.Payload)
	return m, nil
}

func (m appModel) onResolveDone(msg resolveDoneMsg) (tea.Model, tea.Cmd) {
	m.recovery.hide()
	if msg.err != nil {
		m.errMsg = msg.err.Error()
		return m, nil
	}

	switch msg.choice {
	case models.RecoveryRestore:
		if m.session.Draft != nil {
			m.editor.setPayload(m.session.Draft.Payload)
		}
		m.status = "下書きを復元しました"
		return m, cmdClearStatus()
	case models.RecoveryDiscard:
		m.session.Draft = nil
		m.status = "下書きを破棄しました"
		return m, tea.Batch(cmdClearStatus(), m.seedFromServer())
	default:
		// dismissed: the draft stays put, editing starts from server state
		return m, m.seedFromServer()
	}
}

func (m appModel) onCommitDone(msg commitDoneMsg) (tea.Model, tea.Cmd) {
	if m.currentScreen != screenEditor {
		return m, nil
	}

	m.editor.committing = false
	m.session = msg.session

	switch msg.result.Outcome {
	case models.SaveOK:
		m.warn = ""
		m.errMsg = ""
		m.status = "保存しました"
		return m, cmdClearStatus()
	case models.SaveConflict:
		m.recovery.show(m.session.Decision)
		return m, nil
	default:
		m.warn = warnServerUnknown
		if msg.result.Err != nil {
			m.errMsg = msg.result.Err.Error()
		}
		return m, nil
	}
}

func (m appModel) onDeleteDone(msg deleteDoneMsg) (tea.Model, tea.Cmd) {
	if m.currentScreen != screenEditor {
		return m, nil
	}

	m.session = msg.session

	switch msg.result.Outcome {
	case models.SaveOK:
		m.editor.setPayload(nil)
		m.errMsg = ""
		m.status = "削除しました"
		return m, cmdClearStatus()
	case models.SaveConflict:
		if m.session.Decision.HasDraft {
			m.recovery.show(m.session.Decision)
			return m, nil
		}
		m.errMsg = "サーバー側が更新されています。削除は適用されませんでした"
		return m, nil
	default:
		m.warn = warnServerUnknown
		if msg.result.Err != nil {
			m.errMsg = msg.result.Err.Error()
		}
		return m, nil
	}
}

func (m appModel) updateRecovery(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var choice models.RecoveryChoice
	switch {
	case key.Matches(keyMsg, keys.restore):
		choice = models.RecoveryRestore
	case key.Matches(keyMsg, keys.discard):
		choice = models.RecoveryDiscard
	case key.Matches(keyMsg, keys.esc):
		choice = models.RecoveryDismiss
	default:
		return m, nil
	}

	m.recovery.resolve(choice)
	return m, m.cmdResolve(m.session, choice)
}

func (m appModel) updateConfirm(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.yes):
		m.showConfirm = false
		return m, m.cmdDelete(m.session)
	case key.Matches(keyMsg, keys.no), key.Matches(keyMsg, keys.esc):
		m.showConfirm = false
	}
	return m, nil
}

func (m appModel) updateOpen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, keys.enter) {
		resourceID := strings.Trim(strings.TrimSpace(m.resourceInput.Value()), "/")
		if resourceID == "" {
			m.errMsg = "リソースIDを入力してください"
			return m, nil
		}
		m.errMsg = ""
		m.currentScreen = screenLoading
		return m, tea.Batch(m.spinner.Tick, m.cmdOpenSession(resourceID))
	}

	var cmd tea.Cmd
	m.resourceInput, cmd = m.resourceInput.Update(msg)
	return m, cmd
}

func (m appModel) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			m.currentScreen = screenOpen
			m.resourceInput.Focus()
			return m, m.cmdFlush()
		case key.Matches(keyMsg, keys.commit):
			if m.editor.committing {
				return m, nil
			}
			m.editor.committing = true
			payload := []byte(m.editor.textarea.Value())
			return m, m.cmdCommit(m.session, payload, countObjects(payload))
		case key.Matches(keyMsg, keys.remove):
			if m.session.Server == nil {
				m.status = "サーバーにデータがありません"
				return m, cmdClearStatus()
			}
			m.showConfirm = true
			m.confirm.message = m.session.ResourceID
			return m, nil
		case key.Matches(keyMsg, keys.copy):
			return m, cmdCopyToClipboard(m.editor.textarea.Value())
		}
	}

	before := m.editor.textarea.Value()
	var cmd tea.Cmd
	m.editor.textarea, cmd = m.editor.textarea.Update(msg)
	if v := m.editor.textarea.Value(); v != before {
		m.services.AutosaveJob.Notify(models.Draft{
			ResourceID:    m.session.ResourceID,
			Payload:       []byte(v),
			ObjectCount:   countObjects([]byte(v)),
			BaseUpdatedAt: m.session.BaseUpdatedAt,
		})
	}
	return m, cmd
}

// seedFromServer fills the editor from server state. For a resource the
// server has never seen the editor simply starts blank.
func (m *appModel) seedFromServer() tea.Cmd {
	if m.session.Server == nil {
		m.editor.setPayload(nil)
		return nil
	}
	return m.cmdLoadServer(m.session.ResourceID)
}

func (m appModel) View() string {
	var body string
	switch m.currentScreen {
	case screenOpen:
		body = m.viewOpen()
	case screenLoading:
		body = renderPage("読み込み中", m.spinner.View()+" サーバーの状態を確認しています...", "")
	case screenEditor:
		body = m.viewEditor()
	}

	if m.showConfirm {
		body += "\n\n" + m.confirm.View()
	}
	if m.recovery.visible() {
		body += "\n\n" + m.recovery.View()
	}

	return appStyle.Render(body)
}

func (m appModel) viewOpen() string {
	out := "リソースID: " + m.resourceInput.View() + "\n"
	if m.errMsg != "" {
		out += "\nエラー: " + m.errMsg + "\n"
	}
	return renderPage("アノテーション編集", strings.TrimRight(out, "\n"), "enter: 開く")
}

func (m appModel) viewEditor() string {
	out := "リソース: " + fitText(m.session.ResourceID, 48) + "\n"
	out += "サーバー: " + sessionServerLine(m.session) + "\n\n"
	out += m.editor.textarea.View() + "\n"

	if m.editor.committing {
		out += "\n保存中...\n"
	}
	if m.status != "" {
		out += "\n" + m.status + "\n"
	}
	if m.warn != "" {
		out += "\n" + warnStyle.Render("！ "+m.warn) + "\n"
	}
	if m.errMsg != "" {
		out += "\nエラー: " + m.errMsg + "\n"
	}

	return renderPage(
		"編集",
		strings.TrimRight(out, "\n"),
		"ctrl+s: 保存 │ ctrl+y: コピー │ ctrl+d: 削除 │ esc: 戻る",
	)
}

func sessionServerLine(s service.DraftSession) string {
	if !s.ServerKnown {
		return "不明"
	}
	if s.Server == nil {
		return "新規（データなし）"
	}
	return fmt.Sprintf("%s（%d オブジェクト）", formatStamp(s.Server.UpdatedAt), s.Server.ObjectCount)
}

func (m appModel) cmdOpenSession(resourceID string) tea.Cmd {
	ctx := m.ctx
	svc := m.services.DraftService
	return func() tea.Msg {
		session, err := svc.OpenSession(ctx, resourceID)
		return sessionOpenedMsg{session: session, err: err}
	}
}

func (m appModel) cmdLoadServer(resourceID string) tea.Cmd {
	ctx := m.ctx
	svc := m.services.DraftService
	return func() tea.Msg {
		set, err := svc.Load(ctx, resourceID)
		return serverLoadedMsg{set: set, err: err}
	}
}

func (m appModel) cmdResolve(session service.DraftSession, choice models.RecoveryChoice) tea.Cmd {
	ctx := m.ctx
	svc := m.services.DraftService
	return func() tea.Msg {
		err := svc.Resolve(ctx, session, choice)
		return resolveDoneMsg{choice: choice, err: err}
	}
}

func (m appModel) cmdCommit(session service.DraftSession, payload []byte, objectCount int) tea.Cmd {
	ctx := m.ctx
	svc := m.services.DraftService
	return func() tea.Msg {
		result := svc.Commit(ctx, &session, payload, objectCount)
		return commitDoneMsg{session: session, result: result}
	}
}

func (m appModel) cmdDelete(session service.DraftSession) tea.Cmd {
	ctx := m.ctx
	svc := m.services.DraftService
	return func() tea.Msg {
		result := svc.Delete(ctx, &session)
		return deleteDoneMsg{session: session, result: result}
	}
}

func (m appModel) cmdFlush() tea.Cmd {
	ctx := m.ctx
	job := m.services.AutosaveJob
	return func() tea.Msg {
		if err := job.Flush(ctx); err != nil {
			return autosaveErrMsg{err: err}
		}
		return nil
	}
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return statusErrMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{}
	}
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
