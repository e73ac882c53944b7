package http

import (
	"github.com/gin-gonic/gin"
)

// Server is the engine's HTTP surface: a gin engine with the mastery and
// ranking routes mounted.
type Server struct {
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg)}
}

// Run blocks serving on address until the listener fails.
func (s *Server) Run(address string) error {
	return s.Engine.Run(address)
}
