package tui

import (
	"encoding/json"

	"github.com/charmbracelet/bubbles/textarea"
)

type editorModel struct {
	textarea   textarea.Model
	committing bool
}

func newEditorModel() editorModel {
	ta := textarea.New()
	ta.Placeholder = `{"objects": []}`
	ta.SetWidth(72)
	ta.SetHeight(16)
	ta.Focus()
	return editorModel{textarea: ta}
}

func (m *editorModel) setPayload(payload []byte) {
	m.textarea.SetValue(string(payload))
}

// countObjects summarises an annotation payload for display and for the
// object_count column. Payloads the editor cannot parse count as zero rather
// than failing, the server stores them verbatim either way.
func countObjects(payload []byte) int {
	var doc struct {
		Objects []json.RawMessage `json:"objects"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return 0
	}
	return len(doc.Objects)
}
