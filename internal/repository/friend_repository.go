package repository

import (
	"context"
	"errors"

	"social-system/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPairConflict 同一对用户之间已存在好友申请（唯一索引冲突）
var ErrPairConflict = errors.New("friend request already exists for this pair")

// RelationStore 好友关系的持久化接口
// Find* 方法在记录不存在时返回 (nil, nil)。
// 所有多行写操作都应在 Transaction 回调中通过传入的 RelationStore 完成。
type RelationStore interface {
	FindIdentity(ctx context.Context, id uint) (*model.User, error)
	FindRequest(ctx context.Context, id uint) (*model.FriendRequest, error)
	FindRequestByPair(ctx context.Context, senderID, receiverID uint) (*model.FriendRequest, error)
	IsFriend(ctx context.Context, userID, friendID uint) (bool, error)
	AddFriendEdge(ctx context.Context, a, b uint) error
	RemoveFriendEdge(ctx context.Context, a, b uint) error
	CreateRequest(ctx context.Context, senderID, receiverID uint) (*model.FriendRequest, error)
	DeleteRequest(ctx context.Context, id uint) (bool, error)
	ListFriends(ctx context.Context, userID uint) ([]*model.User, error)
	ListFriendIDs(ctx context.Context, userID uint) ([]uint, error)
	ListPendingRequests(ctx context.Context, receiverID uint) ([]*model.FriendRequest, error)
	Transaction(ctx context.Context, fn func(store RelationStore) error) error
}

// FriendRepository 好友关系与好友申请数据仓储
type FriendRepository struct {
	db   *gorm.DB
	inTx bool
}

// NewFriendRepository 创建FriendRepository实例
func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// Transaction 在一个数据库事务中执行 fn，fn 返回错误时整体回滚
func (r *FriendRepository) Transaction(ctx context.Context, fn func(store RelationStore) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&FriendRepository{db: tx, inTx: true})
	})
}

// locking 事务内读取时加行锁（SELECT ... FOR UPDATE）
// sqlite 没有行锁，单连接下事务本身就是串行的。
func (r *FriendRepository) locking(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.inTx && r.db.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// FindIdentity 根据ID查找用户
func (r *FriendRepository) FindIdentity(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindRequest 根据ID查找好友申请（附带发送者信息）
func (r *FriendRepository) FindRequest(ctx context.Context, id uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.locking(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sender, err := r.FindIdentity(ctx, req.SenderID)
	if err != nil {
		return nil, err
	}
	req.Sender = sender
	return &req, nil
}

// FindRequestByPair 查找 sender -> receiver 方向的好友申请
func (r *FriendRepository) FindRequestByPair(ctx context.Context, senderID, receiverID uint) (*model.FriendRequest, error) {
	var req model.FriendRequest
	err := r.locking(ctx).
		Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// IsFriend 判断 friendID 是否在 userID 的好友集合中
func (r *FriendRepository) IsFriend(ctx context.Context, userID, friendID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error
	return count > 0, err
}

// AddFriendEdge 双向写入好友关系，已存在的方向保持不变
func (r *FriendRepository) AddFriendEdge(ctx context.Context, a, b uint) error {
	edges := []model.Friendship{
		{UserID: a, FriendID: b},
		{UserID: b, FriendID: a},
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edges).Error
}

// RemoveFriendEdge 双向删除好友关系
func (r *FriendRepository) RemoveFriendEdge(ctx context.Context, a, b uint) error {
	return r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Delete(&model.Friendship{}).Error
}

// CreateRequest 创建好友申请
func (r *FriendRepository) CreateRequest(ctx context.Context, senderID, receiverID uint) (*model.FriendRequest, error) {
	req := &model.FriendRequest{SenderID: senderID, ReceiverID: receiverID}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPairConflict
		}
		return nil, err
	}
	return req, nil
}

// DeleteRequest 删除好友申请，返回是否确实删除了一行
func (r *FriendRepository) DeleteRequest(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.FriendRequest{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListFriends 获取用户的好友列表
func (r *FriendRepository) ListFriends(ctx context.Context, userID uint) ([]*model.User, error) {
	var users []*model.User
	friendIDs := r.db.Model(&model.Friendship{}).
		Select("friend_id").
		Where("user_id = ?", userID)
	err := r.db.WithContext(ctx).
		Where("id IN (?)", friendIDs).
		Find(&users).Error
	return users, err
}

// ListFriendIDs 获取用户的好友ID列表
func (r *FriendRepository) ListFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_id = ?", userID).
		Pluck("friend_id", &ids).Error
	return ids, err
}

// ListPendingRequests 获取发给用户的全部待处理好友申请
func (r *FriendRepository) ListPendingRequests(ctx context.Context, receiverID uint) ([]*model.FriendRequest, error) {
	var reqs []*model.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ?", receiverID).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}
