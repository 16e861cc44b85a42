package repository

import "unicode/utf8"

// 列表预览截断长度 (按 rune 计)
const previewLen = 50

// NormalizePage 页码与页大小下限为 1
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	return page, perPage
}

// TotalPages 向上取整的总页数
func TotalPages(total int64, perPage int) int {
	if perPage < 1 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// Preview 最后一条消息的列表预览
// 内容非空时截取前 50 个字符并追加省略号, 否则返回空会话占位
func Preview(content string) string {
	if content == "" {
		return "[empty chat]"
	}
	if utf8.RuneCountInString(content) > previewLen {
		runes := []rune(content)
		content = string(runes[:previewLen])
	}
	return content + "..."
}
