package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"library-api/internal/models"
	"library-api/internal/services"
)

const readinessTimeout = 3 * time.Second

// Services bundles everything the routes call into.
type Services struct {
	Users     services.UserService
	Books     services.BookService
	Borrows   services.BorrowService
	Companies services.CompanyService
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterOptions struct {
	AllowOrigins []string
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(log zerolog.Logger, svc Services, db Pinger, opts RouterOptions) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(Metrics())
	r.Use(cors.New(corsConfig(opts.AllowOrigins)))
	r.Use(ErrorHandler(log))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "route not found"})
	})

	RegisterRoutes(r, svc, db)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func RegisterRoutes(r *gin.Engine, svc Services, db Pinger) {
	health := &healthHandler{db: db}
	r.GET("/", health.liveness)
	r.GET("/health/ready", health.readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := &userHandler{svc: svc.Users, borrows: svc.Borrows}
	users.register(r.Group("/users"), "")
	users.register(r.Group("/clients"), models.UserTypeClient)
	users.register(r.Group("/employees"), models.UserTypeEmployee)

	books := &bookHandler{svc: svc.Books}
	r.GET("/books", books.listBooks)
	r.POST("/books", books.createBook)
	r.GET("/books/:id", books.getBook)
	r.PUT("/books/:id", books.updateBook)
	r.PATCH("/books/:id", books.updateBook)
	r.DELETE("/books/:id", books.deleteBook)
	r.GET("/books/:id/copies", books.listCopiesOfBook)
	r.POST("/books/:id/copies", books.addBookCopy)

	r.GET("/copies", books.listCopies)
	r.POST("/copies", books.createCopy)
	r.GET("/copies/:id", books.getCopy)
	r.PUT("/copies/:id", books.updateCopy)
	r.PATCH("/copies/:id", books.updateCopy)
	r.DELETE("/copies/:id", books.deleteCopy)

	borrows := &borrowHandler{svc: svc.Borrows}
	r.GET("/borrows", borrows.list)
	r.POST("/borrows", borrows.create)
	r.GET("/borrows/:id", borrows.get)
	r.PUT("/borrows/:id", borrows.update)
	r.PATCH("/borrows/:id", borrows.update)
	r.DELETE("/borrows/:id", borrows.delete)

	companies := &companyHandler{svc: svc.Companies}
	r.GET("/companies", companies.list)
	r.POST("/companies", companies.create)
	r.GET("/companies/cnpj/:cnpj", companies.getByCNPJ)
	r.GET("/companies/:id", companies.get)
	r.PUT("/companies/:id", companies.update)
	r.PATCH("/companies/:id", companies.update)
	r.DELETE("/companies/:id", companies.delete)
}

type healthHandler struct {
	db Pinger
}

// liveness never touches the database.
func (h *healthHandler) liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "online"})
}

func (h *healthHandler) readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
