// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Buildnote

package tui

import (
	"fmt"

	"github.com/buildnote/draftkeeper/models"
)

type recoveryState int

const (
	recoveryHidden recoveryState = iota
	recoveryShown
	recoveryResolved
)

// recoveryModel is the draft recovery prompt shown when a session resumes
// with an unsaved draft. It only ever becomes visible for a decision with
// HasDraft set, and each shown prompt is terminated by exactly one choice.
type recoveryModel struct {
	state    recoveryState
	decision models.RecoveryDecision
	choice   models.RecoveryChoice
}

func (m *recoveryModel) show(decision models.RecoveryDecision) {
	if !decision.HasDraft {
		m.state = recoveryHidden
		return
	}
	m.decision = decision
	m.choice = models.RecoveryDismiss
	m.state = recoveryShown
}

func (m *recoveryModel) resolve(choice models.RecoveryChoice) {
	if m.state != recoveryShown {
		return
	}
	m.choice = choice
	m.state = recoveryResolved
}

func (m *recoveryModel) hide() {
	m.state = recoveryHidden
}

func (m recoveryModel) visible() bool {
	return m.state == recoveryShown
}

func (m recoveryModel) View() string {
	d := m.decision

	content := "未保存の下書きがあります\n\n"
	content += fmt.Sprintf("ローカル下書き : %s（%d オブジェクト）\n",
		formatStamp(d.DraftSavedAt), d.DraftObjectCount)
	content += "サーバー       : " + serverSideLabel(d) + "\n"
	content += "\n" + newerIndicator(d) + "\n"

	if banner := warningBanner(d); banner != "" {
		content += "\n" + warnStyle.Render(banner) + "\n"
	}

	content += "\nr 復元    d 破棄    esc 閉じる"
	return overlayBoxStyle.Render(content)
}

func serverSideLabel(d models.RecoveryDecision) string {
	if !d.ServerKnown {
		return "不明"
	}
	if d.ServerUpdatedAt == nil {
		return "新規（データなし）"
	}
	return fmt.Sprintf("%s（%d オブジェクト）", formatStamp(*d.ServerUpdatedAt), d.ServerObjectCount)
}

func newerIndicator(d models.RecoveryDecision) string {
	if !d.ServerKnown {
		return "比較できません"
	}
	if d.LocalNewer {
		return "ローカルの方が新しい"
	}
	return "サーバーの方が新しい"
}

// warningBanner warns but never blocks: all three choices stay available
// even when restoring would overwrite server-side changes.
func warningBanner(d models.RecoveryDecision) string {
	if !d.ServerKnown {
		return "！ サーバーの状態を確認できませんでした。復元しても安全とは限りません"
	}
	if d.ServerConflict {
		return "！ サーバー側が更新されています。復元すると他の端末の変更を上書きする可能性があります"
	}
	return ""
}
