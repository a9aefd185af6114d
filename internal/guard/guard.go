// Package guard 提供无状态的权限判断，在任何写操作之前调用。
package guard

import (
	"errors"

	"social-system/internal/model"
)

// ErrForbidden 操作者无权执行该操作
var ErrForbidden = errors.New("you cannot perform this action")

// OwnershipCheck 操作者必须是目标资源的所有者
func OwnershipCheck(actingID, subjectID uint) error {
	if actingID == 0 || actingID != subjectID {
		return ErrForbidden
	}
	return nil
}

// ReceiverCheck 只有好友申请的接收者可以同意或拒绝
func ReceiverCheck(actingID uint, req *model.FriendRequest) error {
	if req == nil || actingID == 0 || actingID != req.ReceiverID {
		return ErrForbidden
	}
	return nil
}

// ParticipantCheck 只有房间成员可以读写房间
func ParticipantCheck(actingID uint, room *model.Room) error {
	if room == nil || actingID == 0 || !room.HasParticipant(actingID) {
		return ErrForbidden
	}
	return nil
}

// AuthorCheck 只有作者可以修改或删除自己的内容
func AuthorCheck(actingID, authorID uint) error {
	return OwnershipCheck(actingID, authorID)
}
