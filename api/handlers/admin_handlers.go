package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketpulse/dto"
	"marketpulse/services"
)

// @Summary Create a post manually
// @Description Create a new post authored by an editor; the slug derives from the title
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.CreatePostRequest true "Post creation request"
// @Success 201 {object} dto.PostDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 409 {object} dto.ErrorResponseDTO
// @Failure 422 {object} dto.ErrorResponseDTO
// @Router /api/v1/admin/posts [post]
func AdminCreatePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}

		post, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.NewPostDTO(*post))
	}
}

// @Summary Update a post
// @Description Patch post fields; a changed title reassigns the slug
// @Tags admin
// @Accept json
// @Produce json
// @Param slug path string true "Post slug"
// @Param body body dto.UpdatePostRequest true "Fields to update"
// @Success 200 {object} dto.PostDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Failure 409 {object} dto.ErrorResponseDTO
// @Router /api/v1/admin/posts/{slug} [patch]
func AdminUpdatePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UpdatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}

		post, err := svc.Update(c.Request.Context(), c.Param("slug"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewPostDTO(*post))
	}
}

// @Summary Delete a post
// @Description Delete a post by slug, evicting any cached copy and cleaning up its image
// @Tags admin
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} dto.MessageResponseDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Router /api/v1/admin/posts/{slug} [delete]
func AdminDeletePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "post deleted successfully"})
	}
}

// @Summary Generate one post
// @Description Run the AI pipeline for a single topic or source article URL
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.GenerateSingleRequest true "Generation request"
// @Success 201 {object} dto.PostDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 422 {object} dto.ErrorResponseDTO
// @Failure 502 {object} dto.ErrorResponseDTO
// @Router /api/v1/admin/generate [post]
func AdminGenerateSingleHandler(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.GenerateSingleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}
		if req.Topic == "" && req.SourceURL == "" {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "either topic or source_url is required"})
			return
		}

		post, err := svc.GenerateSingle(c.Request.Context(), services.GenerateInput{
			Topic:        req.Topic,
			SourceURL:    req.SourceURL,
			CategoryHint: req.CategoryHint,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.NewPostDTO(*post))
	}
}

// @Summary Generate a batch of posts
// @Description Run up to 10 independent generation attempts; per-item failures are skipped, not fatal
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.GenerateBatchRequest true "Batch request"
// @Success 200 {object} dto.BatchResultDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Router /api/v1/admin/generate/batch [post]
func AdminGenerateBatchHandler(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.GenerateBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}

		result, err := svc.GenerateBatch(c.Request.Context(), req.Count, req.Topics, req.CategoryHint)
		if err != nil {
			respondError(c, err)
			return
		}

		out := dto.BatchResultDTO{
			Requested: result.Requested,
			Succeeded: result.Succeeded(),
			Posts:     make([]dto.PostDTO, 0, len(result.Posts)),
		}
		for _, p := range result.Posts {
			out.Posts = append(out.Posts, dto.NewPostDTO(p))
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary Regenerate a post summary
// @Tags admin
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} dto.PostDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Failure 502 {object} dto.ErrorResponseDTO
// @Router /api/v1/admin/posts/{slug}/regenerate/summary [post]
func AdminRegenerateSummaryHandler(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.RegenerateSummary(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewPostDTO(*post))
	}
}

// @Summary Regenerate post tags
// @Tags admin
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} dto.PostDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Failure 502 {object} dto.ErrorResponseDTO
// @Router /api/v1/admin/posts/{slug}/regenerate/tags [post]
func AdminRegenerateTagsHandler(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.RegenerateTags(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewPostDTO(*post))
	}
}

// @Summary Regenerate post content
// @Tags admin
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} dto.PostDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Failure 502 {object} dto.ErrorResponseDTO
// @Router /api/v1/admin/posts/{slug}/regenerate/content [post]
func AdminRegenerateContentHandler(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.RegenerateContent(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewPostDTO(*post))
	}
}

// @Summary Regenerate the post image
// @Description Unlike creation, image failures here surface as errors instead of the placeholder
// @Tags admin
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} dto.PostDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Failure 502 {object} dto.ErrorResponseDTO
// @Router /api/v1/admin/posts/{slug}/regenerate/image [post]
func AdminRegenerateImageHandler(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.RegenerateImage(c.Request.Context(), c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewPostDTO(*post))
	}
}

// @Summary Synthesize speech
// @Description Narrate arbitrary text (1-5000 characters) as a WAV data URI
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.SpeechRequest true "Text to narrate"
// @Success 200 {object} dto.SpeechResponseDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 422 {object} dto.ErrorResponseDTO
// @Failure 502 {object} dto.ErrorResponseDTO
// @Router /api/v1/admin/speech [post]
func AdminSpeechHandler(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.SpeechRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}

		audio, err := svc.SynthesizeSpeech(c.Request.Context(), req.Text)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.SpeechResponseDTO{AudioDataURI: audio})
	}
}
