package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaginationParams holds pagination-related query parameters
type PaginationParams struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip for the page
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePaginationParams reads page and limit from the query string, falling
// back to defaultLimit and capping at maxLimit
func ParsePaginationParams(c *gin.Context, defaultLimit int, maxLimit int) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))

	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	return PaginationParams{
		Page:  page,
		Limit: limit,
	}
}

// CalculateTotalPages calculates the total number of pages based on total items and limit
func CalculateTotalPages(totalItems, limit int) int {
	if limit < 1 {
		return 1
	}
	totalPages := (totalItems + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}
	return totalPages
}

// PaginationMetadata represents the standardized pagination metadata
type PaginationMetadata struct {
	TotalItems   int `json:"totalItems"`
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// SendPaginatedResponse sends a standardized paginated API response
func SendPaginatedResponse(c *gin.Context, statusCode int, data interface{}, totalItems int, params PaginationParams) {
	c.JSON(statusCode, gin.H{
		"data": data,
		"pagination": PaginationMetadata{
			TotalItems:   totalItems,
			CurrentPage:  params.Page,
			TotalPages:   CalculateTotalPages(totalItems, params.Limit),
			ItemsPerPage: params.Limit,
		},
	})
}

// SendErrorResponse sends a standardized error response
func SendErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}
