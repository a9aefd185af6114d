package repository

import (
	"context"
	"errors"

	"social-system/internal/model"

	"gorm.io/gorm"
)

// PostRepository 帖子、互动与评论数据仓储
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建PostRepository实例
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create 创建帖子
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// FindByID 获取帖子（含作者与评论），不存在时返回 (nil, nil)
func (r *PostRepository) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update 更新帖子内容
func (r *PostRepository) Update(ctx context.Context, id uint, entry, file string) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"entry": entry, "file": file}).Error
}

// Delete 在一个事务中删除帖子及其互动、评论
func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.PostReaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Post{}, id).Error
	})
}

// ToggleReaction 切换点赞/点踩：
// 重复同一种互动则取消；已有另一种互动则改为当前互动。
// 返回操作后用户对该帖子的互动类型（取消时为空字符串）。
func (r *PostRepository) ToggleReaction(ctx context.Context, postID, userID uint, kind string) (string, error) {
	var result string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.PostReaction
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			result = kind
			return tx.Create(&model.PostReaction{PostID: postID, UserID: userID, Kind: kind}).Error
		case err != nil:
			return err
		case existing.Kind == kind:
			result = ""
			return tx.Delete(&existing).Error
		default:
			result = kind
			return tx.Model(&existing).Update("kind", kind).Error
		}
	})
	return result, err
}

// CountReactions 统计帖子的点赞数与点踩数
func (r *PostRepository) CountReactions(ctx context.Context, postID uint) (likes, dislikes int64, err error) {
	type row struct {
		Kind  string
		Total int64
	}
	var rows []row
	err = r.db.WithContext(ctx).Model(&model.PostReaction{}).
		Select("kind, COUNT(*) AS total").
		Where("post_id = ?", postID).
		Group("kind").
		Scan(&rows).Error
	for _, rw := range rows {
		switch rw.Kind {
		case model.ReactionLike:
			likes = rw.Total
		case model.ReactionDislike:
			dislikes = rw.Total
		}
	}
	return likes, dislikes, err
}

// ListByAuthors 获取指定作者们的帖子，按时间倒序
func (r *PostRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	if len(authorIDs) == 0 {
		return posts, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// CreateComment 创建评论
func (r *PostRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}
