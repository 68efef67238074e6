package server

import (
	"strings"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Lang    string `json:"lang"`
}

// GetPosts handles GET /api/posts
// @Summary List or search posts
// @Description Without q every post is listed newest first. With q, posts sharing a normalized tag with the query are returned.
// @Tags posts
// @Produce json
// @Param q query string false "Keyword query"
// @Param lang query string false "Query language (en, ro)"
// @Param limit query int false "Page size" default(5)
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, service.DefaultPageSize)

	var lang models.Language
	if raw := c.Query("lang"); raw != "" {
		parsed, err := models.ParseLanguage(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		lang = parsed
	}

	posts, err := s.searchService.Search(c.UserContext(), service.SearchInput{
		Query:    c.Query("q"),
		Language: lang,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// GetPostTags handles GET /api/posts/:id/tags
// @Summary List the tags derived from a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.Tag
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/tags [get]
func (s *Server) GetPostTags(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	tags, err := s.postService.GetPostTags(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tags)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description The post is tagged in its language after it is saved.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,content=string,lang=string} true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   currentUserID(c),
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Language: req.Lang,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post
// @Description Only the author may update. Tags are rebuilt from the new content.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{title=string,content=string,lang=string} true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:   currentUserID(c),
		PostID:   postID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Language: req.Lang,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Description Removes the post with its comments and tags.
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUserID(c),
		PostID: postID,
	}); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserPosts handles GET /api/users/:username/posts
// @Summary List an author's posts
// @Tags posts
// @Produce json
// @Param username path string true "Username"
// @Param limit query int false "Page size" default(5)
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	page := parsePagination(c, service.DefaultPageSize)

	posts, err := s.postService.GetUserPosts(c.UserContext(), c.Params("username"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}
