package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/tasks"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	registerValidators()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(SecurityHeadersMiddleware())
	if cfg.ReadOnly {
		router.Use(ReadOnlyMiddleware())
	}
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
	}

	tmpl, err := LoadTemplates(cfg.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	health := NewHealthController(cfg.Database, cfg.Version)
	if p, ok := cfg.TaskQueue.(Pinger); ok {
		health.AddCheck("task_queue", p.Ping)
	}
	schools := NewSchoolsController(cfg.Schools, cfg.Audit)
	subjects := NewSubjectsController(cfg.Subjects, cfg.Audit)
	publications := NewPublicationsController(cfg.Publications, cfg.Audit)
	bookNames := NewBookNamesController(cfg.BookNames, cfg.Audit)
	books := NewBooksController(cfg.Books, cfg.BookNames, cfg.Audit)
	lists := NewBooklistsController(cfg.Booklists, cfg.Audit, cfg.Metrics)
	ui := NewUIController(UIStores{
		Schools:      cfg.Schools,
		Subjects:     cfg.Subjects,
		Publications: cfg.Publications,
		BookNames:    cfg.BookNames,
		Books:        cfg.Books,
	}, cfg.ItemsPerPage, cfg.ReadOnly)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", cfg.Metrics.Handler())
	}

	api := router.Group("/api")

	api.GET("/schools", schools.ListSchools)
	api.POST("/schools", schools.CreateSchool)
	api.PUT("/schools", schools.UpdateSchool)
	api.DELETE("/schools", schools.DeleteSchool)
	api.GET("/schools/:schoolId/booklist", lists.ListSchoolBooklists)
	api.DELETE("/schools/:schoolId/booklist/:booklistId", lists.DeleteSchoolBooklist)

	api.GET("/subjects", subjects.ListSubjects)
	api.POST("/subjects", subjects.CreateSubject)
	api.PUT("/subjects", subjects.UpdateSubject)
	api.DELETE("/subjects", subjects.DeleteSubject)

	api.GET("/publications", publications.ListPublications)
	api.POST("/publications", publications.CreatePublication)
	api.PUT("/publications", publications.UpdatePublication)
	api.DELETE("/publications", publications.DeletePublication)

	api.GET("/booknames", bookNames.ListBookNames)
	api.POST("/booknames", bookNames.CreateBookName)
	api.PUT("/booknames", bookNames.UpdateBookName)
	api.DELETE("/booknames", bookNames.DeleteBookName)

	api.GET("/books", books.ListBooks)
	api.POST("/books", books.CreateBooks)
	api.PUT("/books", books.UpdateBook)
	api.DELETE("/books", books.DeleteBook)
	api.GET("/books/price", books.GetPrices)

	api.GET("/booklist", lists.GetOverview)
	api.POST("/booklist", lists.CreateBooklist)
	api.DELETE("/booklist", lists.DeleteBooklist)
	api.GET("/booklist/items", lists.GetItems)
	api.POST("/booklist/items", lists.AddItem)
	api.POST("/booklist/commit", lists.Commit)

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		api.GET("/audit", auditController.GetAuditEvents)
	}

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, tasks.Config{
			GracePeriod:        cfg.CleanupGracePeriod,
			AuditRetentionDays: cfg.AuditRetentionDays,
		})
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	// UI routes. Every page form posts back with a CSRF token when a secret
	// is configured.
	site := router.Group("")
	if len(cfg.CSRFSecret) > 0 {
		site.Use(CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	site.GET("/", ui.BooksPage)
	site.GET("/schools", ui.SchoolsPage)
	site.GET("/subjects", ui.SubjectsPage)
	site.GET("/publications", ui.PublicationsPage)
	site.GET("/booknames", ui.BookNamesPage)

	registerManageRoutes(site.Group("/manage"), manageControllers{
		schools:      schools,
		subjects:     subjects,
		publications: publications,
		bookNames:    bookNames,
		books:        books,
	})

	if cfg.Builders != nil {
		page := NewBooklistPageController(cfg.Booklists, cfg.Builders)
		pages := site.Group("/schools/:schoolId/booklist")
		pages.GET("", page.BooklistPage)
		builder := pages.Group("/builder")
		builder.POST("/filter", page.Filter)
		builder.POST("/stage", page.Stage)
		builder.POST("/remove", page.Remove)
		builder.POST("/save", page.Save)
		builder.POST("/cancel", page.Cancel)
	}

	return router, nil
}
