package model

// GenerateRequest 生成回复请求
// ChatID 为空时新建会话
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	ChatID string `json:"chat_id,omitempty"`
}

// CreateChatRequest 创建会话请求
type CreateChatRequest struct {
	Title string `json:"title,omitempty"`
}

// HistoryQuery 列表 / 导出的过滤参数
type HistoryQuery struct {
	Query    string `form:"query"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Page     int    `form:"page,default=1"`
}
