package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-system/config"
	"social-system/internal/handler"
	"social-system/internal/model"
	"social-system/internal/repository"
	"social-system/internal/service"
	dbPkg "social-system/pkg/db"
	"social-system/pkg/jwt"
	"social-system/pkg/limiter"
	"social-system/pkg/logger"
	"social-system/pkg/metrics"
	"social-system/pkg/redis"
	"social-system/pkg/response"
	"social-system/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "配置文件路径")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfigFrom(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== 社交系统启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	gdb, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(model.All()...); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3.2 Redis（可选）：不可用时在线状态、好友缓存与离线通知降级
	if err := redis.InitRedis(cfg.Redis); err != nil {
		log.Warn("Redis不可用，缓存与离线通知已禁用", zap.Error(err))
	} else {
		defer func() {
			if err := redis.Close(); err != nil {
				log.Error("关闭Redis连接失败", zap.Error(err))
			}
		}()
		log.Info("Redis连接成功")
		go cleanPresenceLoop(rootCtx)
	}

	// 3.3 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	wsManager := websocket.NewManager()

	userRepo := repository.NewUserRepository(gdb)
	friendRepo := repository.NewFriendRepository(gdb)
	postRepo := repository.NewPostRepository(gdb)
	roomRepo := repository.NewRoomRepository(gdb)

	friendSvc := service.NewFriendService(friendRepo, wsManager, cfg.Cache.FriendTTL)
	userSvc := service.NewUserService(userRepo, friendSvc, jwtSvc)
	postSvc := service.NewPostService(postRepo, friendSvc)
	roomSvc := service.NewRoomService(roomRepo, userRepo, wsManager)

	lim := limiter.New(cfg.RateLimit)
	wsHandler := websocket.NewHandler(wsManager, jwtSvc, cfg.WebSocket, userSvc,
		func(ctx context.Context, senderID, roomID uint, text string) (interface{}, error) {
			msg, err := roomSvc.SendMessage(ctx, senderID, roomID, text)
			if err != nil {
				return nil, err
			}
			return response.FilterMessageInfo(msg), nil
		}, lim)

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()
	router.Use(logger.RequestIDMiddleware())   // 请求ID
	router.Use(logger.RequestLogger())         // 请求日志
	router.Use(logger.ErrorLoggerMiddleware()) // panic 恢复与错误日志

	// 6. 设置基础路由
	setupBasicRoutes(router, wsManager)

	// 6.1 业务路由
	handler.RegisterRoutes(router, handler.Handlers{
		User:   handler.NewUserHandler(userSvc),
		Friend: handler.NewFriendHandler(friendSvc),
		Post:   handler.NewPostHandler(postSvc),
		Room:   handler.NewRoomHandler(roomSvc),
	}, jwtSvc.AuthMiddleware(), lim.Middleware())

	// WebSocket路由
	router.GET("/ws", wsHandler.Serve)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")
	stop()

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 关闭HTTP服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine, wsManager *websocket.Manager) {
	// 健康检查
	// 完整url为：http://localhost:8080/health
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := dbPkg.HealthCheck(); err != nil {
			status = "db-down"
		}
		redisStatus := "disabled"
		if redis.Enabled() {
			redisStatus = "ok"
			if err := redis.HealthCheck(); err != nil {
				redisStatus = "down"
			}
		}
		response.Success(c, gin.H{
			"status":     status,
			"redis":      redisStatus,
			"ws_clients": wsManager.OnlineCount(),
			"message":    "社交系统运行状态",
			"time":       time.Now().Format(time.RFC3339),
		})
	})

	// Prometheus 指标
	// 完整url为：http://localhost:8080/metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// 根路径
	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "欢迎使用社交系统",
			"version": "1.0.0",
		})
	})
}

// cleanPresenceLoop 定期清理超时未心跳的在线用户
func cleanPresenceLoop(ctx context.Context) {
	ticker := time.NewTicker(redis.PresenceTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := redis.CleanExpiredPresence()
			if err != nil {
				logger.Warn("清理在线状态失败", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("已清理过期在线状态", zap.Int64("count", n))
			}
		}
	}
}
