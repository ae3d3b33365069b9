package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketpulse/config"
	"marketpulse/dto"
	"marketpulse/feeder"
	"marketpulse/logger"
	"marketpulse/newsapi"
	"marketpulse/services"
)

// ListPostsHandler godoc
// @Summary      List posts
// @Description  List published posts with filters and pagination, newest first
// @Tags         posts
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        page_size  query  int     false  "Page size (<=100)"
// @Param        category   query  string  false  "Category slug"
// @Param        tag        query  string  false  "Tag"
// @Produce      json
// @Success      200  {object}  dto.PostListDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /posts [get]
func ListPostsHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ListInput
		in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		in.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
		in.CategorySlug = c.Query("category")
		in.Tag = c.Query("tag")

		page, err := svc.List(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetPostHandler godoc
// @Summary      Get post by slug
// @Description  Get a single post by its URL slug; recently generated posts are served from memory
// @Tags         posts
// @Param        slug  path  string  true  "Post slug"
// @Produce      json
// @Success      200  {object}  dto.PostDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /posts/{slug} [get]
func GetPostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		post, err := svc.GetBySlug(c.Request.Context(), slug)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewPostDTO(*post))
	}
}

// ListCategoriesHandler godoc
// @Summary      List categories
// @Description  The fixed category list configured for the site
// @Tags         categories
// @Produce      json
// @Success      200  {array}  dto.CategoryDTO
// @Router       /categories [get]
func ListCategoriesHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Categories())
	}
}

// NewsHeadlinesHandler godoc
// @Summary      Market news headlines
// @Description  Latest headlines aggregated from the configured RSS feeds and, when a MarketAux token is set, the MarketAux API
// @Tags         news
// @Param        limit  query  int  false  "Max headlines per source"  default(10)
// @Produce      json
// @Success      200  {array}  dto.HeadlineDTO
// @Router       /news/headlines [get]
func NewsHeadlinesHandler(cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if limit < 1 || limit > 50 {
			limit = 10
		}

		headlines := []dto.HeadlineDTO{}
		for _, feed := range cfg.NewsFeeds {
			items, err := feeder.FetchHeadlines(feed.Name, feed.RSSURL, limit)
			if err != nil {
				logger.Log.Warnf("feed %s failed: %v", feed.Name, err)
				continue
			}
			for _, h := range items {
				headlines = append(headlines, dto.HeadlineDTO{
					Title:       h.Title,
					Link:        h.Link,
					Source:      h.Source,
					PublishedAt: h.PublishedAt,
				})
			}
		}

		if cfg.MarketauxToken != "" {
			client := newsapi.New(cfg.MarketauxToken)
			articles, err := client.TopHeadlines(c.Request.Context(), "", limit)
			if err != nil {
				logger.Log.Warnf("marketaux headlines failed: %v", err)
			}
			for _, a := range articles {
				headlines = append(headlines, dto.HeadlineDTO{
					Title:       a.Title,
					Link:        a.URL,
					Source:      a.Source,
					PublishedAt: a.PublishedAt,
				})
			}
		}

		c.JSON(http.StatusOK, headlines)
	}
}
