package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	User   *UserHandler
	Friend *FriendHandler
	Post   *PostHandler
	Room   *RoomHandler
}

// RegisterRoutes 注册 /api/v1 下的业务路由
// auth 为认证中间件，limit 为按用户限流中间件（好友申请、发消息）
func RegisterRoutes(r gin.IRouter, h Handlers, auth, limit gin.HandlerFunc) {
	v1 := r.Group("/api/v1")

	users := v1.Group("/users")
	{
		// 公开接口（无需认证）
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)

		authUsers := users.Group("")
		authUsers.Use(auth)
		{
			authUsers.POST("/logout", h.User.Logout)
			authUsers.GET("", h.User.ListProfiles)
			authUsers.GET("/online", h.User.GetOnlineUsers)
			authUsers.GET("/:user_id", h.User.GetProfile)
			authUsers.PUT("/:user_id", h.User.UpdateProfile)
			authUsers.GET("/:user_id/online", h.User.CheckUserOnline)

			// 好友
			authUsers.POST("/:user_id/friend-requests", limit, h.Friend.CreateRequest)
			authUsers.GET("/:user_id/friend-requests", h.Friend.ListRequests)
			authUsers.POST("/:user_id/friend-requests/:request_id/accept", h.Friend.AcceptRequest)
			authUsers.POST("/:user_id/friend-requests/:request_id/refuse", h.Friend.RefuseRequest)
			authUsers.GET("/:user_id/friends", h.Friend.ListFriends)
			authUsers.DELETE("/:user_id/friends/:friend_id", h.Friend.RemoveFriend)
		}
	}

	posts := v1.Group("/posts")
	posts.Use(auth)
	{
		posts.POST("", h.Post.Create)
		posts.GET("/feed", h.Post.Feed)
		posts.GET("/:post_id", h.Post.Get)
		posts.PUT("/:post_id", h.Post.Update)
		posts.DELETE("/:post_id", h.Post.Delete)
		posts.POST("/:post_id/like", h.Post.Like)
		posts.POST("/:post_id/dislike", h.Post.Dislike)
		posts.POST("/:post_id/comments", h.Post.AddComment)
	}

	rooms := v1.Group("/rooms")
	rooms.Use(auth)
	{
		rooms.POST("", h.Room.Create)
		rooms.GET("", h.Room.MyRooms)
		rooms.GET("/:room_id", h.Room.Get)
		rooms.DELETE("/:room_id", h.Room.Delete)
		rooms.GET("/:room_id/messages", h.Room.ListMessages)
		rooms.POST("/:room_id/messages", limit, h.Room.SendMessage)
	}
}
