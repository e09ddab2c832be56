package tui

type confirmModel struct {
	message string
}

func (m confirmModel) View() string {
	content := "「" + m.message + "」をサーバーから削除しますか？\n\n"
	content += "y はい    n いいえ"
	return overlayBoxStyle.Render(content)
}
