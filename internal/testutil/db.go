// Package testutil 提供测试用的数据库与用户夹具。
package testutil

import (
	"context"
	"fmt"
	"testing"

	"social-system/config"
	"social-system/internal/model"
	dbPkg "social-system/pkg/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB 打开一个已迁移的 sqlite 内存库，测试结束时关闭
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := dbPkg.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		Database: ":memory:",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(model.All()...))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// CreateUser 直接写入一个用户
func CreateUser(t testing.TB, gdb *gorm.DB, username string) *model.User {
	t.Helper()

	u := &model.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
		Status:       "offline",
	}
	require.NoError(t, gdb.WithContext(context.Background()).Create(u).Error)
	return u
}

// CountRows 统计表中满足条件的行数
func CountRows(t testing.TB, gdb *gorm.DB, value interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	q := gdb.Model(value)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
