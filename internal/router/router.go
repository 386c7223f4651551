package router

import (
	"time"

	"github.com/AssembleOrg/mistica-backend/internal/config"
	"github.com/AssembleOrg/mistica-backend/internal/handler"
	"github.com/AssembleOrg/mistica-backend/internal/infra"
	"github.com/AssembleOrg/mistica-backend/internal/middleware"
	"github.com/AssembleOrg/mistica-backend/internal/model"
	"github.com/AssembleOrg/mistica-backend/internal/repository"
	"github.com/AssembleOrg/mistica-backend/internal/service"
	"github.com/AssembleOrg/mistica-backend/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		log.Warn().Str("timezone", cfg.DefaultTimezone).Msg("unknown timezone, falling back to UTC")
		loc = time.UTC
	}

	// ── Infrastructure ───────────────────────────────────────────────────────
	renderer := infra.NewReceiptRenderer(cfg.BusinessName, cfg.PDFStoragePath)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	clientRepo := repository.NewClientRepository(db)
	prepaidRepo := repository.NewPrepaidRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	egressRepo := repository.NewEgressRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	userSvc := service.NewUserService(userRepo)
	productSvc := service.NewProductService(productRepo)
	clientSvc := service.NewClientService(clientRepo, prepaidRepo)
	prepaidSvc := service.NewPrepaidService(prepaidRepo, clientRepo)
	saleSvc := service.NewSaleService(saleRepo, productSvc, prepaidSvc, clientRepo, loc, dispatcher, renderer)
	egressSvc := service.NewEgressService(egressRepo, loc)
	employeeSvc := service.NewEmployeeService(employeeRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(userSvc, dispatcher)
	productsH := handler.NewProductsHandler(productSvc, dispatcher)
	clientsH := handler.NewClientsHandler(clientSvc, dispatcher)
	prepaidsH := handler.NewPrepaidsHandler(prepaidSvc, dispatcher)
	salesH := handler.NewSalesHandler(saleSvc, dispatcher)
	egressesH := handler.NewEgressesHandler(egressSvc, dispatcher)
	employeesH := handler.NewEmployeesHandler(employeeSvc, dispatcher)
	priceH := handler.NewPriceCheckHandler(productRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required
	r.GET("/v1/price/:barcode", priceH.GetByBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleEmployee)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/auth/me", authH.Me)

		// Products — everyone reads, only admins touch the catalog
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/low-stock", anyRole, productsH.LowStock)
		v1.GET("/products/category/:category", anyRole, productsH.ListByCategory)
		v1.GET("/products/:id", anyRole, productsH.Get)
		v1.POST("/products", adminOnly, productsH.Create)
		v1.PATCH("/products/:id", adminOnly, productsH.Update)
		v1.DELETE("/products/:id", adminOnly, productsH.Delete)
		v1.PATCH("/products/:id/stock", adminOnly, productsH.AdjustStock)

		// Clients and their prepaid credit
		clients := v1.Group("/clients", anyRole)
		{
			clients.POST("", clientsH.Create)
			clients.GET("", clientsH.List)
			clients.GET("/:id", clientsH.Get)
			clients.PATCH("/:id", clientsH.Update)
			clients.DELETE("/:id", clientsH.Delete)
			clients.POST("/:id/prepaids", prepaidsH.CreateForClient)
			clients.GET("/:id/prepaids", prepaidsH.ListByClient)
			clients.GET("/:id/prepaids/balance", prepaidsH.Balance)
		}

		v1.GET("/prepaids", anyRole, prepaidsH.List)
		v1.GET("/prepaids/:id", anyRole, prepaidsH.Get)
		v1.PATCH("/prepaids/:id/status", adminOnly, prepaidsH.UpdateStatus)

		// Sales — cancellation and deletion restore stock and credit
		sales := v1.Group("/sales", anyRole)
		{
			sales.POST("", salesH.Create)
			sales.GET("", salesH.List)
			sales.GET("/daily", salesH.Daily)
			sales.GET("/:id", salesH.Get)
			sales.GET("/:id/receipt", salesH.Receipt)
			sales.PATCH("/:id", salesH.Update)
		}
		v1.DELETE("/sales/:id", adminOnly, salesH.Delete)

		// Egresses — terminal transitions are admin-only
		egresses := v1.Group("/egresses", anyRole)
		{
			egresses.POST("", egressesH.Create)
			egresses.GET("", egressesH.List)
			egresses.GET("/totals", egressesH.Totals)
			egresses.GET("/:id", egressesH.Get)
			egresses.PATCH("/:id", egressesH.Update)
		}
		v1.POST("/egresses/:id/complete", adminOnly, egressesH.Complete)
		v1.POST("/egresses/:id/cancel", adminOnly, egressesH.Cancel)
		v1.DELETE("/egresses/:id", adminOnly, egressesH.Delete)

		// Employees and users — admin-only
		employees := v1.Group("/employees", adminOnly)
		{
			employees.POST("", employeesH.Create)
			employees.GET("", employeesH.List)
			employees.GET("/:id", employeesH.Get)
			employees.PATCH("/:id", employeesH.Update)
			employees.DELETE("/:id", employeesH.Delete)
		}

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.GET("/:id", usersH.Get)
			users.PATCH("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Delete)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
