// server/server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelac/internal/logger"
)

// Server 包装 http.Server 的启动和优雅停机
type Server struct {
	router *gin.Engine
	srv    *http.Server
}

func New(router *gin.Engine) *Server {
	return &Server{router: router}
}

// Start 阻塞监听,正常停机时返回 nil
func (s *Server) Start(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	logger.Info("HTTP 服务监听 %s", addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅停机,等待在途请求完成或上下文超时
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
