package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"parley/internal/model"
	"parley/internal/repository"
)

// filterFromQuery 从查询参数取过滤条件
// 只有 page 会解析失败; 失败时落回第一页, 字符串过滤条件照常生效
func filterFromQuery(c *gin.Context) (repository.ChatFilter, int) {
	var q model.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		q.Query = c.Query("query")
		q.DateFrom = c.Query("date_from")
		q.DateTo = c.Query("date_to")
		q.Page = 1
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return repository.ChatFilter{
		Search:   q.Query,
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
	}, q.Page
}

// List 过滤 + 分页的会话列表
// 存储出错时返回空页而不是报错
// @Summary      会话列表
// @Description  按创建时间倒序的分页列表, 支持关键字与日期范围过滤
// @Tags         会话
// @Produce      json
// @Param        page       query     int     false  "页码, 从 1 开始"
// @Param        query      query     string  false  "标题或消息内容关键字"
// @Param        date_from  query     string  false  "起始日期 YYYY-MM-DD"
// @Param        date_to    query     string  false  "结束日期 YYYY-MM-DD"
// @Success      200        {object}  model.ChatListResponse
// @Router       /api/v1/chats [get]
func (h *ChatHandler) List(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	f, page := filterFromQuery(c)
	chats, total, totalPages, err := h.svc.ListChats(c.Request.Context(), page, f)
	if err != nil {
		log.Error().Err(err).Msg("failed to list chats")
		chats, total, totalPages = []model.ChatSummary{}, 0, 0
	}

	c.JSON(http.StatusOK, model.ChatListResponse{
		Chats:      chats,
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
	})
}

// Get 会话详情 (完整转录)
// @Summary      会话详情
// @Description  返回会话元数据与完整消息转录
// @Tags         会话
// @Produce      json
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  model.Chat
// @Failure      400  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /api/v1/chats/{id} [get]
func (h *ChatHandler) Get(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	chat, err := h.svc.Details(c.Request.Context(), c.Param("id"))
	if err != nil {
		status, body := errorStatus(err, "Failed to load chat")
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, chat)
}

// Delete 删除会话
// @Summary      删除会话
// @Description  删除会话及其全部消息
// @Tags         会话
// @Produce      json
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Router       /api/v1/chats/{id} [delete]
func (h *ChatHandler) Delete(c *gin.Context) {
	if h.unavailable(c) {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		status, body := errorStatus(err, "Failed to delete chat")
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Chat deleted"})
}
