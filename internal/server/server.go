package server

import (
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/TableAdmin-lab/productloaderV2/internal/catalog"
	"github.com/TableAdmin-lab/productloaderV2/internal/config"
	"github.com/TableAdmin-lab/productloaderV2/internal/ingest"
	"github.com/TableAdmin-lab/productloaderV2/internal/storage"
)

// Server exposes the catalog builder over HTTP: menu extraction, the form
// session, product and modifier management and the spreadsheet export. One
// session, guarded by a mutex, is shared by all requests.
type Server struct {
	db      *storage.DB
	cfg     config.Config
	ingest  *ingest.Service
	mu      sync.Mutex
	session *catalog.Session
}

func New(db *storage.DB, cfg config.Config) (*Server, error) {
	session, err := catalog.Load(db)
	if err != nil {
		return nil, err
	}
	return &Server{
		db:      db,
		cfg:     cfg,
		ingest:  ingest.NewService(cfg),
		session: session,
	}, nil
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.ServerCORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.POST("/menu/extract", s.extractMenu)
		api.GET("/menus", s.listMenus)
		api.GET("/menus/:id", s.getMenu)

		api.GET("/session", s.getSession)
		api.DELETE("/session", s.clearSession)
		api.POST("/session/defaults", s.setDefaults)
		api.POST("/session/remember", s.setRememberCategories)

		api.GET("/products", s.listProducts)
		api.POST("/products", s.addProduct)
		api.PUT("/products/:groupId", s.updateProduct)
		api.DELETE("/products/:groupId", s.removeProduct)
		api.GET("/products/:groupId/source", s.productSource)

		api.GET("/modifiers", s.listModifiers)
		api.POST("/modifiers", s.addModifier)
		api.PUT("/modifiers", s.replaceModifiers)
		api.DELETE("/modifiers/:name", s.removeModifier)

		api.GET("/export", s.exportWorkbook)
	}

	return r
}

func (s *Server) Run() error {
	return s.Router().Run(s.cfg.ServerAddr)
}
