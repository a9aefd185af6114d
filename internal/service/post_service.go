package service

import (
	"context"
	"fmt"
	"strings"

	"social-system/internal/guard"
	"social-system/internal/model"
	"social-system/internal/repository"
)

// 分页默认值
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// PostView 帖子及其互动统计
type PostView struct {
	Post     *model.Post
	Likes    int64
	Dislikes int64
}

// PostService 帖子、评论、点赞与好友动态
type PostService struct {
	repo    *repository.PostRepository
	friends *FriendService
}

// NewPostService 创建PostService实例
func NewPostService(repo *repository.PostRepository, friends *FriendService) *PostService {
	return &PostService{repo: repo, friends: friends}
}

// Create 发帖，正文与图片至少有一项
func (s *PostService) Create(ctx context.Context, authorID uint, entry, file string) (*model.Post, error) {
	entry = strings.TrimSpace(entry)
	file = strings.TrimSpace(file)
	if entry == "" && file == "" {
		return nil, fmt.Errorf("post is empty: %w", ErrInvalidArgument)
	}

	post := &model.Post{AuthorID: authorID, Entry: entry, File: file}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Get 获取帖子详情（含评论与点赞统计）
func (s *PostService) Get(ctx context.Context, postID uint) (*PostView, error) {
	post, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, post)
}

// Update 修改帖子，仅作者可操作
func (s *PostService) Update(ctx context.Context, actingID, postID uint, entry, file string) (*model.Post, error) {
	post, err := s.find(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := guard.AuthorCheck(actingID, post.AuthorID); err != nil {
		return nil, err
	}

	entry = strings.TrimSpace(entry)
	file = strings.TrimSpace(file)
	if entry == "" && file == "" {
		return nil, fmt.Errorf("post is empty: %w", ErrInvalidArgument)
	}
	if err := s.repo.Update(ctx, postID, entry, file); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	post.Entry, post.File = entry, file
	return post, nil
}

// Delete 删除帖子及其评论和互动，仅作者可操作
func (s *PostService) Delete(ctx context.Context, actingID, postID uint) error {
	post, err := s.find(ctx, postID)
	if err != nil {
		return err
	}
	if err := guard.AuthorCheck(actingID, post.AuthorID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// React 点赞或点踩，返回操作后的互动状态与统计
func (s *PostService) React(ctx context.Context, userID, postID uint, kind string) (string, *PostView, error) {
	if kind != model.ReactionLike && kind != model.ReactionDislike {
		return "", nil, fmt.Errorf("reaction %q: %w", kind, ErrInvalidArgument)
	}
	post, err := s.find(ctx, postID)
	if err != nil {
		return "", nil, err
	}

	current, err := s.repo.ToggleReaction(ctx, postID, userID, kind)
	if err != nil {
		return "", nil, fmt.Errorf("toggle reaction: %w", err)
	}
	view, err := s.view(ctx, post)
	if err != nil {
		return "", nil, err
	}
	return current, view, nil
}

// AddComment 发表评论
func (s *PostService) AddComment(ctx context.Context, authorID, postID uint, entry string) (*model.Comment, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil, fmt.Errorf("comment is empty: %w", ErrInvalidArgument)
	}
	if _, err := s.find(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{PostID: postID, AuthorID: authorID, Entry: entry}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// FriendsFeed 好友发布的帖子，按时间倒序
func (s *PostService) FriendsFeed(ctx context.Context, userID uint, limit, offset int) ([]*PostView, error) {
	ids, err := s.friends.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit, offset = normalizePage(limit, offset)
	posts, err := s.repo.ListByAuthors(ctx, ids, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		v, err := s.view(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *PostService) find(ctx context.Context, postID uint) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	if post == nil {
		return nil, fmt.Errorf("post %d: %w", postID, ErrNotFound)
	}
	return post, nil
}

func (s *PostService) view(ctx context.Context, post *model.Post) (*PostView, error) {
	likes, dislikes, err := s.repo.CountReactions(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}
	return &PostView{Post: post, Likes: likes, Dislikes: dislikes}, nil
}
