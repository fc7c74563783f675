package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"unsritalk/internal/dashboard"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

// pageBounds reads page and perPage and clamps them to [0, total). A page past the end is
// pulled back to the last one.
func pageBounds(c *gin.Context, total int) (start, end, page, perPage int) {
	perPage = defaultPerPage
	page = 1

	if v, err := strconv.Atoi(c.Query("perPage")); err == nil && v > 0 && v <= maxPerPage {
		perPage = v
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 1 {
		page = v
	}

	if last := total/perPage + 1; page > last {
		page = last
	}

	start = (page - 1) * perPage
	if start > total {
		start = total
	}
	end = start + perPage
	if end > total {
		end = total
	}
	return start, end, page, perPage
}

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	users := h.store.Snapshot().UserList()
	for i := range users {
		users[i] = users[i].WithoutCredential()
	}

	start, end, page, perPage := pageBounds(c, len(users))
	c.JSON(http.StatusOK, gin.H{
		"items":   users[start:end],
		"total":   len(users),
		"page":    page,
		"perPage": perPage,
	})
}

func (h HandlerSet) AdminListChats(c *gin.Context) {
	rows := dashboard.Monitor(h.store.Snapshot().Chats)

	start, end, page, perPage := pageBounds(c, len(rows))
	c.JSON(http.StatusOK, gin.H{
		"items":   rows[start:end],
		"total":   len(rows),
		"page":    page,
		"perPage": perPage,
	})
}
