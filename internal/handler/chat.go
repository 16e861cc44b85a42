package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parley/internal/model"
	"parley/internal/service"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	svc *service.ChatService
}

// NewChatHandler 创建对话处理器
// svc 为 nil 表示存储不可用, 所有接口返回 503
func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

func (h *ChatHandler) unavailable(c *gin.Context) bool {
	if h.svc != nil {
		return false
	}
	c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
		Code:    50301,
		Message: "Database not available",
	})
	return true
}

// Generate 一轮对话: 提交 prompt, 返回生成的回复
// @Summary      生成回复
// @Description  提交 prompt 并返回模型生成的回复, chat_id 为空时新建会话
// @Tags         对话
// @Accept       json
// @Produce      json
// @Param        request  body      model.GenerateRequest  true  "生成请求"
// @Success      200      {object}  model.GenerateResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Failure      500      {object}  model.ErrorResponse
// @Router       /api/v1/chat/generate [post]
func (h *ChatHandler) Generate(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	resp, err := h.svc.Generate(c.Request.Context(), &req)
	if err != nil {
		status, body := errorStatus(err, "Failed to generate reply")
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Create 创建空会话
// @Summary      创建会话
// @Description  创建一个没有消息的新会话, 标题缺省为占位标题
// @Tags         会话
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreateChatRequest  true  "创建请求"
// @Success      201      {object}  map[string]interface{}
// @Failure      400      {object}  model.ErrorResponse
// @Failure      500      {object}  model.ErrorResponse
// @Router       /api/v1/chats [post]
func (h *ChatHandler) Create(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	var req model.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	id, err := h.svc.CreateChat(c.Request.Context(), req.Title)
	if err != nil {
		status, body := errorStatus(err, "Failed to create chat")
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"chat_id": id})
}
