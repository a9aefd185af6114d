package handler

import (
	"social-system/internal/model"
	"social-system/internal/service"
	"social-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// PostHandler 帖子、评论与点赞
type PostHandler struct {
	service *service.PostService
}

// NewPostHandler 创建PostHandler实例
func NewPostHandler(s *service.PostService) *PostHandler {
	return &PostHandler{service: s}
}

type postBody struct {
	Entry string `json:"entry"`
	File  string `json:"file"`
}

// Create POST /posts
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var r postBody
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.service.Create(c.Request.Context(), userID, r.Entry, r.File)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "发布成功", response.FilterPost(post, 0, 0))
}

// Get GET /posts/:post_id
func (h *PostHandler) Get(c *gin.Context) {
	postID, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, response.FilterPost(view.Post, view.Likes, view.Dislikes))
}

// Update PUT /posts/:post_id
func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	var r postBody
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.service.Update(c.Request.Context(), userID, postID, r.Entry, r.File)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "修改成功", response.FilterPost(post, 0, 0))
}

// Delete DELETE /posts/:post_id
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, postID); err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// Like POST /posts/:post_id/like
func (h *PostHandler) Like(c *gin.Context) {
	h.react(c, model.ReactionLike)
}

// Dislike POST /posts/:post_id/dislike
func (h *PostHandler) Dislike(c *gin.Context) {
	h.react(c, model.ReactionDislike)
}

func (h *PostHandler) react(c *gin.Context, kind string) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "post_id")
	if !ok {
		return
	}

	current, view, err := h.service.React(c.Request.Context(), userID, postID, kind)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"reaction": current,
		"likes":    view.Likes,
		"dislikes": view.Dislikes,
	})
}

// AddComment POST /posts/:post_id/comments
func (h *PostHandler) AddComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	postID, ok := paramID(c, "post_id")
	if !ok {
		return
	}
	type req struct {
		Entry string `json:"entry" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), userID, postID, r.Entry)
	if err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMessage(c, "评论成功", response.FilterComment(comment))
}

// Feed GET /posts/feed 好友动态
func (h *PostHandler) Feed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c)

	views, err := h.service.FriendsFeed(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	posts := make([]*response.PostInfo, 0, len(views))
	for _, v := range views {
		posts = append(posts, response.FilterPost(v.Post, v.Likes, v.Dislikes))
	}
	response.Success(c, posts)
}
