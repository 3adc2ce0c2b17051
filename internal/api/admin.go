package api

import (
	"context"                         // Context for cache operations
	"fortune_gateway/internal/domain" // Journal record model
	"net/http"                        // HTTP status codes
	"strconv"                         // String conversion
	"time"                            // Cache TTLs

	"github.com/gin-gonic/gin" // Gin web framework
)

// JournalLister lists checkout journal rows. *journal.Store implements it.
type JournalLister interface {
	List(ctx context.Context, page, pageSize int) ([]domain.CheckoutRecord, int64, error)
}

// ListCheckoutsHandler returns the paginated checkout journal for admins.
func ListCheckoutsHandler(store JournalLister, cache Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 1      // Default page
		pageSize := 20 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			// Convert page_size to integer
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size if valid
			}
		}
		// Redis cache key
		cacheKey := "checkouts:page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for cache operations
		var cached struct {
			Checkouts  []domain.CheckoutRecord `json:"checkouts"`   // Journal rows
			Page       int                     `json:"page"`        // Current page
			PageSize   int                     `json:"page_size"`   // Page size
			Total      int64                   `json:"total"`       // Total rows
			TotalPages int                     `json:"total_pages"` // Total pages
		}
		// Try to get from cache
		found, err := cache.GetJSON(ctx, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"checkouts":   cached.Checkouts,
				"page":        cached.Page,
				"page_size":   cached.PageSize,
				"total":       cached.Total,
				"total_pages": cached.TotalPages,
				"cached":      true,
			})
			return
		}
		records, total, err := store.List(c.Request.Context(), page, pageSize)
		if err != nil {
			// If listing fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch checkouts"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"checkouts":   records,    // Journal rows
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total rows
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Not from cache
		}
		// Cache the result for 60 seconds
		_ = cache.SetJSON(ctx, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return the journal page
	}
}
