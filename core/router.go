package core

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(cfg Config, auth *AuthService, tokens TokenService, accounts AccountRepository, videos VideoRepository, comments CommentRepository, limiter RateLimiter) *gin.Engine {
	r := gin.Default()

	// Global middleware: origin/CORS -> rate limit
	r.Use(CORSMiddleware(cfg))
	r.Use(RateLimitMiddleware(limiter))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/register", func(c *gin.Context) {
			var req struct {
				Name     string `json:"name"`
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
				return
			}

			token, account, err := auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
			if err != nil {
				var verr *ValidationError
				switch {
				case errors.As(err, &verr):
					respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
				case errors.Is(err, ErrDuplicateAccount):
					respondError(c, http.StatusBadRequest, "DUPLICATE_ACCOUNT", "an account with this email already exists")
				default:
					respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "registration failed")
				}
				return
			}

			c.JSON(http.StatusOK, gin.H{"token": token, "user": account})
		})

		api.POST("/auth/login", func(c *gin.Context) {
			var req struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
				return
			}

			token, account, err := auth.Login(c.Request.Context(), req.Email, req.Password)
			if err != nil {
				switch {
				case errors.Is(err, ErrMissingCredentials):
					respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "provide email and password")
				case errors.Is(err, ErrInvalidCredentials):
					respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
				default:
					respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "login failed")
				}
				return
			}

			c.JSON(http.StatusOK, gin.H{"token": token, "user": account})
		})

		api.GET("/users/me", AuthRequired(tokens), func(c *gin.Context) {
			userID, ok := authenticatedUserID(c)
			if !ok {
				respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
				return
			}
			account, err := accounts.FindByID(c.Request.Context(), userID)
			if err != nil {
				if errors.Is(err, ErrAccountNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", "account not found")
					return
				}
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to load account")
				return
			}
			c.JSON(http.StatusOK, account.Public())
		})

		api.POST("/videos", AuthRequired(tokens), func(c *gin.Context) {
			userID, ok := authenticatedUserID(c)
			if !ok {
				respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
				return
			}

			var req struct {
				Title        string `json:"title"`
				Description  string `json:"description"`
				URL          string `json:"url"`
				ThumbnailURL string `json:"thumbnail_url"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
				return
			}
			req.Title = strings.TrimSpace(req.Title)
			req.URL = strings.TrimSpace(req.URL)
			if req.Title == "" || req.URL == "" {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "title and url are required")
				return
			}

			video, err := videos.Create(c.Request.Context(), userID, req.Title, req.Description, req.URL, req.ThumbnailURL)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to create video")
				return
			}
			c.JSON(http.StatusCreated, video)
		})

		api.GET("/videos", func(c *gin.Context) {
			page, limit, err := parsePagination(c.Query("page"), c.Query("limit"))
			if err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
				return
			}
			items, total, err := videos.List(c.Request.Context(), page, limit)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to fetch videos")
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"items":       items,
				"page":        page,
				"limit":       limit,
				"total_items": total,
				"total_pages": calcTotalPages(total, limit),
			})
		})

		api.GET("/videos/:id", func(c *gin.Context) {
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil || id <= 0 {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
				return
			}
			video, err := videos.Get(c.Request.Context(), id)
			if err != nil {
				if errors.Is(err, ErrVideoNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", "video not found")
					return
				}
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to fetch video")
				return
			}
			c.JSON(http.StatusOK, video)
		})

		api.POST("/videos/:id/like", AuthRequired(tokens), func(c *gin.Context) {
			userID, ok := authenticatedUserID(c)
			if !ok {
				respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
				return
			}
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil || id <= 0 {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
				return
			}
			count, liked, err := videos.ToggleLike(c.Request.Context(), id, userID)
			if err != nil {
				if errors.Is(err, ErrVideoNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", "video not found")
					return
				}
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to toggle like")
				return
			}
			c.JSON(http.StatusOK, gin.H{"likes_count": count, "liked": liked})
		})

		api.GET("/videos/:id/comments", func(c *gin.Context) {
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil || id <= 0 {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
				return
			}
			page, limit, err := parsePagination(c.Query("page"), c.Query("limit"))
			if err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
				return
			}
			items, total, err := comments.ListByVideo(c.Request.Context(), id, page, limit)
			if err != nil {
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to fetch comments")
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"items":       items,
				"page":        page,
				"limit":       limit,
				"total_items": total,
				"total_pages": calcTotalPages(total, limit),
			})
		})

		api.POST("/comments", AuthRequired(tokens), func(c *gin.Context) {
			userID, ok := authenticatedUserID(c)
			if !ok {
				respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
				return
			}

			var req struct {
				VideoID int64  `json:"video_id"`
				Text    string `json:"text"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
				return
			}
			req.Text = strings.TrimSpace(req.Text)
			if req.VideoID <= 0 || req.Text == "" {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "video_id and text are required")
				return
			}

			comment, err := comments.Create(c.Request.Context(), req.VideoID, userID, req.Text)
			if err != nil {
				if errors.Is(err, ErrVideoNotFound) {
					respondError(c, http.StatusNotFound, "NOT_FOUND", "video not found")
					return
				}
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to create comment")
				return
			}
			c.JSON(http.StatusCreated, comment)
		})
	}

	return r
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func parsePagination(pageStr, limitStr string) (int, int, error) {
	page := 1
	limit := defaultPerPage
	if strings.TrimSpace(pageStr) != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			return 0, 0, errors.New("page must be a positive integer")
		}
		page = p
	}
	if strings.TrimSpace(limitStr) != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			return 0, 0, errors.New("limit must be a positive integer")
		}
		if l > maxPerPage {
			l = maxPerPage
		}
		limit = l
	}
	return page, limit, nil
}

func calcTotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
