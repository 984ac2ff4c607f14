package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetChatHistory returns the conversation with the given user, empty when
// the two have never talked.
func (h HandlerSet) GetChatHistory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	chat, err := h.chats.GetHistory(c.Request.Context(), user.ID, c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat.View()})
}
