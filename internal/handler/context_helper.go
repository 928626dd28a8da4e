package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/response"
)

const defaultPageSize = 20

// bindJSON decodes the request body into dest and answers 400 on failure.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// searchQuery returns the search parameter verbatim. Whitespace is part of
// the substring match, as it is for the CLI.
func searchQuery(c *gin.Context) string {
	return c.Query("search")
}

// pageParams reads page and page_size. page_size=0 asks for every row.
func pageParams(c *gin.Context) (page, size int) {
	page, size = 1, defaultPageSize
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v >= 0 {
		size = v
	}
	return page, size
}
