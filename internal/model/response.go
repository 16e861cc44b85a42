package model

// GenerateResponse 生成回复响应
type GenerateResponse struct {
	ChatID   string `json:"chat_id"`
	Response string `json:"response"`
}

// ChatListResponse 分页列表响应
type ChatListResponse struct {
	Chats      []ChatSummary `json:"chats"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
}

// ErrorResponse 错误响应
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
